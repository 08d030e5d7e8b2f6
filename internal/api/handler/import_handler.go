package handler

import (
	"net/http"
	"tle_quiz/internal/api/middleware"
	"tle_quiz/internal/app/service"
	"tle_quiz/internal/common"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

const msgParseUpload = "Parse upload file error"

type ImportHandler struct {
	importService  *service.ImportService
	maxUploadBytes int64
}

func NewImportHandler(is *service.ImportService, maxUploadMB int) *ImportHandler {
	return &ImportHandler{importService: is, maxUploadBytes: int64(maxUploadMB) << 20}
}

func (h *ImportHandler) RegisterRoutes(r chi.Router) {
	r.With(middleware.QuizPermissionRequired).Post("/import_fps", h.importFPS)
}

// importFPS takes a multipart upload whose "file" part is an FPS document.
func (h *ImportHandler) importFPS(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		log.WithError(err).Debug("multipart parse failed")
		common.RespondWithError(w, http.StatusBadRequest, msgParseUpload)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("file")
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, msgParseUpload)
		return
	}
	defer file.Close()

	p := middleware.GetPrincipalFromContext(r.Context())
	n, err := h.importService.ImportFPS(r.Context(), p, file)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, map[string]int{"import_count": n})
}
