package handler

import (
	"net/http"
	"tle_quiz/internal/api/middleware"
	"tle_quiz/internal/app/service"
	"tle_quiz/internal/common"

	"github.com/go-chi/chi/v5"
)

// QuizAdminHandler serves /admin/quiz for global quizzes.
type QuizAdminHandler struct {
	quizService *service.QuizService
}

func NewQuizAdminHandler(qs *service.QuizService) *QuizAdminHandler {
	return &QuizAdminHandler{quizService: qs}
}

func (h *QuizAdminHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(quizRouter chi.Router) {
		quizRouter.Use(middleware.QuizPermissionRequired)
		quizRouter.Post("/quiz", h.createQuiz)
		quizRouter.Get("/quiz", h.getQuiz)
		quizRouter.Put("/quiz", h.updateQuiz)
		quizRouter.Delete("/quiz", h.deleteQuiz)
	})
}

func (h *QuizAdminHandler) createQuiz(w http.ResponseWriter, r *http.Request) {
	var req service.QuizInput
	if !decodeJSON(w, r, &req) {
		return
	}
	p := middleware.GetPrincipalFromContext(r.Context())

	quiz, err := h.quizService.Create(r.Context(), p, req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, quiz)
}

// getQuiz returns one quiz when ?id= is given, a page of quizzes otherwise.
func (h *QuizAdminHandler) getQuiz(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipalFromContext(r.Context())
	q := r.URL.Query()

	if id := q.Get("id"); id != "" {
		quiz, err := h.quizService.Get(r.Context(), p, id)
		if err != nil {
			common.RespondWithErr(w, err)
			return
		}
		common.RespondWithData(w, http.StatusOK, quiz)
		return
	}

	limit, offset := paging(r)
	page, err := h.quizService.List(r.Context(), p, service.ListQuizzesParams{
		RuleType: q.Get("rule_type"),
		Keyword:  q.Get("keyword"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, page)
}

func (h *QuizAdminHandler) updateQuiz(w http.ResponseWriter, r *http.Request) {
	var req service.EditQuizRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p := middleware.GetPrincipalFromContext(r.Context())

	quiz, err := h.quizService.Update(r.Context(), p, req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, quiz)
}

func (h *QuizAdminHandler) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipalFromContext(r.Context())
	if err := h.quizService.Delete(r.Context(), p, r.URL.Query().Get("id")); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, nil)
}
