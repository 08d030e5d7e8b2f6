package api

import (
	"net/http"
	"time"
	"tle_quiz/internal/api/handler"
	"tle_quiz/internal/api/middleware"
	"tle_quiz/internal/app/service"
	"tle_quiz/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
)

type Options struct {
	CORSOrigins []string
	MaxUploadMB int
}

func NewRouter(
	quizService *service.QuizService,
	contestQuizService *service.ContestQuizService,
	publicService *service.PublicQuizService,
	importService *service.ImportService,
	opts Options,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.StripSlashes)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Verifies "Authorization: Bearer T" when present; Authenticator turns the
	// claims into the request principal.
	r.Use(jwtauth.Verifier(security.TokenAuth))
	r.Use(middleware.Authenticator)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(api chi.Router) {
		handler.NewPublicQuizHandler(publicService).RegisterRoutes(api)

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(middleware.AdminOnly)
			handler.NewQuizAdminHandler(quizService).RegisterRoutes(admin)
			handler.NewContestQuizAdminHandler(contestQuizService).RegisterRoutes(admin)
			handler.NewImportHandler(importService, opts.MaxUploadMB).RegisterRoutes(admin)
		})
	})

	return r
}
