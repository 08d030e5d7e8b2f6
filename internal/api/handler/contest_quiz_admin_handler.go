package handler

import (
	"net/http"
	"tle_quiz/internal/api/middleware"
	"tle_quiz/internal/app/service"
	"tle_quiz/internal/common"

	"github.com/go-chi/chi/v5"
)

// ContestQuizAdminHandler serves the contest quiz admin endpoints and the
// copies between contests and the global pool.
type ContestQuizAdminHandler struct {
	contestQuizService *service.ContestQuizService
}

func NewContestQuizAdminHandler(cs *service.ContestQuizService) *ContestQuizAdminHandler {
	return &ContestQuizAdminHandler{contestQuizService: cs}
}

func (h *ContestQuizAdminHandler) RegisterRoutes(r chi.Router) {
	r.Post("/contest/quiz", h.createQuiz)
	r.Get("/contest/quiz", h.getQuiz)
	r.Put("/contest/quiz", h.updateQuiz)
	r.Delete("/contest/quiz", h.deleteQuiz)
	r.Post("/contest/add_quiz_from_public", h.addFromPublic)

	r.With(middleware.QuizPermissionRequired).Post("/contest_quiz/make_public", h.makePublic)
}

func (h *ContestQuizAdminHandler) createQuiz(w http.ResponseWriter, r *http.Request) {
	var req service.CreateContestQuizRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p := middleware.GetPrincipalFromContext(r.Context())

	quiz, err := h.contestQuizService.Create(r.Context(), p, req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, quiz)
}

func (h *ContestQuizAdminHandler) getQuiz(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipalFromContext(r.Context())
	q := r.URL.Query()

	if id := q.Get("id"); id != "" {
		quiz, err := h.contestQuizService.Get(r.Context(), p, id)
		if err != nil {
			common.RespondWithErr(w, err)
			return
		}
		common.RespondWithData(w, http.StatusOK, quiz)
		return
	}

	limit, offset := paging(r)
	page, err := h.contestQuizService.List(r.Context(), p, service.ListContestQuizzesParams{
		ContestID: q.Get("contest_id"),
		Keyword:   q.Get("keyword"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, page)
}

func (h *ContestQuizAdminHandler) updateQuiz(w http.ResponseWriter, r *http.Request) {
	var req service.EditContestQuizRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p := middleware.GetPrincipalFromContext(r.Context())

	quiz, err := h.contestQuizService.Update(r.Context(), p, req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, quiz)
}

func (h *ContestQuizAdminHandler) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipalFromContext(r.Context())
	if err := h.contestQuizService.Delete(r.Context(), p, r.URL.Query().Get("id")); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, nil)
}

func (h *ContestQuizAdminHandler) makePublic(w http.ResponseWriter, r *http.Request) {
	var req service.MakePublicRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p := middleware.GetPrincipalFromContext(r.Context())

	quiz, err := h.contestQuizService.MakePublic(r.Context(), p, req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, quiz)
}

func (h *ContestQuizAdminHandler) addFromPublic(w http.ResponseWriter, r *http.Request) {
	var req service.AddFromPublicRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p := middleware.GetPrincipalFromContext(r.Context())

	quiz, err := h.contestQuizService.AddFromPublic(r.Context(), p, req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, quiz)
}
