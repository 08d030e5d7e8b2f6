package model

type Tag struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	QuizCount int    `json:"quiz_count,omitempty"`
}
