package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"tle_quiz/internal/domain/model"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// SetTags replaces the tags of quizID with names, creating missing tags.
func (r *sqlQuizRepository) SetTags(ctx context.Context, tx *sql.Tx, quizID string, names []string) error {
	c := r.conn(tx)
	if _, err := c.ExecContext(ctx, `DELETE FROM quiz_tag_links WHERE quiz_id = $1`, quizID); err != nil {
		return fmt.Errorf("sqlQuizRepository.SetTags clear: %w", err)
	}

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		tagID, err := r.findOrCreateTag(ctx, tx, name)
		if err != nil {
			return err
		}
		_, err = c.ExecContext(ctx,
			`INSERT INTO quiz_tag_links (quiz_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, quizID, tagID)
		if err != nil {
			return fmt.Errorf("sqlQuizRepository.SetTags link %q: %w", name, err)
		}
	}
	return nil
}

func (r *sqlQuizRepository) findOrCreateTag(ctx context.Context, tx *sql.Tx, name string) (string, error) {
	c := r.conn(tx)
	var id string
	err := c.QueryRowContext(ctx, `SELECT id FROM quiz_tags WHERE name = $1`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("sqlQuizRepository.findOrCreateTag %q: %w", name, err)
	}

	id = uuid.NewString()
	_, err = c.ExecContext(ctx, `INSERT INTO quiz_tags (id, name, slug) VALUES ($1, $2, $3)`, id, name, slug.Make(name))
	if err != nil {
		return "", fmt.Errorf("sqlQuizRepository.findOrCreateTag create %q: %w", name, err)
	}
	return id, nil
}

// GetTagsByQuizIDs returns tag names per quiz, sorted by name.
func (r *sqlQuizRepository) GetTagsByQuizIDs(ctx context.Context, quizIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(quizIDs))
	if len(quizIDs) == 0 {
		return out, nil
	}

	placeholders := make([]string, len(quizIDs))
	args := make([]any, len(quizIDs))
	for i, id := range quizIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := `SELECT l.quiz_id, t.name FROM quiz_tag_links l
	          JOIN quiz_tags t ON t.id = l.tag_id
	          WHERE l.quiz_id IN (` + strings.Join(placeholders, ", ") + `)
	          ORDER BY t.name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlQuizRepository.GetTagsByQuizIDs query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var quizID, name string
		if err := rows.Scan(&quizID, &name); err != nil {
			return nil, fmt.Errorf("sqlQuizRepository.GetTagsByQuizIDs scan: %w", err)
		}
		out[quizID] = append(out[quizID], name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlQuizRepository.GetTagsByQuizIDs rows.Err: %w", err)
	}
	return out, nil
}

// ListTagsInUse returns tags attached to at least one quiz, optionally
// filtered by a case-insensitive name fragment.
func (r *sqlQuizRepository) ListTagsInUse(ctx context.Context, keyword string) ([]model.Tag, error) {
	var (
		where string
		args  []any
	)
	if kw := strings.TrimSpace(keyword); kw != "" {
		where = ` WHERE LOWER(t.name) LIKE $1` + likeEscape
		args = append(args, containsPattern(kw))
	}
	query := `SELECT t.id, t.name, t.slug, COUNT(l.quiz_id) FROM quiz_tags t
	          JOIN quiz_tag_links l ON l.tag_id = t.id` + where + `
	          GROUP BY t.id, t.name, t.slug
	          ORDER BY t.name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlQuizRepository.ListTagsInUse query: %w", err)
	}
	defer rows.Close()

	tags := []model.Tag{}
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.QuizCount); err != nil {
			return nil, fmt.Errorf("sqlQuizRepository.ListTagsInUse scan: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlQuizRepository.ListTagsInUse rows.Err: %w", err)
	}
	return tags, nil
}
