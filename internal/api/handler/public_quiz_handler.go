package handler

import (
	"net/http"
	"tle_quiz/internal/api/middleware"
	"tle_quiz/internal/app/service"
	"tle_quiz/internal/common"

	"github.com/go-chi/chi/v5"
)

// PublicQuizHandler serves the end-user quiz pages. Authentication is
// optional and only adds the caller's status to each quiz.
type PublicQuizHandler struct {
	publicService *service.PublicQuizService
}

func NewPublicQuizHandler(ps *service.PublicQuizService) *PublicQuizHandler {
	return &PublicQuizHandler{publicService: ps}
}

func (h *PublicQuizHandler) RegisterRoutes(r chi.Router) {
	r.Get("/quiz/tags", h.listTags)
	r.Get("/pickone", h.pickOne)
	r.Get("/quiz", h.getQuiz)
	r.Get("/contest/quiz", h.getContestQuiz)
}

func (h *PublicQuizHandler) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.publicService.Tags(r.Context(), r.URL.Query().Get("keyword"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, tags)
}

func (h *PublicQuizHandler) pickOne(w http.ResponseWriter, r *http.Request) {
	displayID, err := h.publicService.PickOne(r.Context())
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, displayID)
}

func (h *PublicQuizHandler) getQuiz(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetPrincipalFromContext(r.Context())
	q := r.URL.Query()

	if displayID := q.Get("quiz_id"); displayID != "" {
		quiz, err := h.publicService.Get(r.Context(), viewer, displayID)
		if err != nil {
			common.RespondWithErr(w, err)
			return
		}
		common.RespondWithData(w, http.StatusOK, quiz)
		return
	}

	page, err := h.publicService.List(r.Context(), viewer, service.PublicListParams{
		Keyword:    q.Get("keyword"),
		Tag:        q.Get("tag"),
		Difficulty: q.Get("difficulty"),
		Limit:      min(queryInt(r, "limit", 0), maxPageSize),
		Offset:     max(queryInt(r, "offset", 0), 0),
	})
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, page)
}

func (h *PublicQuizHandler) getContestQuiz(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetPrincipalFromContext(r.Context())
	q := r.URL.Query()
	contestID := q.Get("contest_id")

	if displayID := q.Get("quiz_id"); displayID != "" {
		quiz, err := h.publicService.GetContestQuiz(r.Context(), viewer, contestID, displayID)
		if err != nil {
			common.RespondWithErr(w, err)
			return
		}
		common.RespondWithData(w, http.StatusOK, quiz)
		return
	}

	quizzes, err := h.publicService.ListContestQuizzes(r.Context(), viewer, contestID)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, quizzes)
}
