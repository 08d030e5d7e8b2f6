package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"tle_quiz/internal/api"
	"tle_quiz/internal/app/service"
	"tle_quiz/internal/common/security"
	"tle_quiz/internal/domain/repository"
	"tle_quiz/internal/platform/config"
	"tle_quiz/internal/platform/database"
	"tle_quiz/internal/platform/kv"
	"tle_quiz/internal/platform/logging"
	"tle_quiz/internal/platform/options"
	"tle_quiz/internal/platform/testcase"

	log "github.com/sirupsen/logrus"
)

func main() {
	ctx := context.Background()

	// 1. Load Configuration
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT(cfg.JWTKey)
	log.Info("JWT initialized.")

	// 3. Initialize Database
	if err := database.Connect(ctx, cfg.DBDriver, cfg.DBConnStr); err != nil {
		log.WithError(err).Fatal("Could not connect to database")
	}
	defer database.Close()

	if err := database.Migrate(ctx, database.DB, cfg.DBDriver); err != nil {
		log.WithError(err).Fatal("Could not migrate quiz tables")
	}
	if cfg.BootstrapCollaboratorTables {
		if err := database.MigrateCollaborators(ctx, database.DB, cfg.DBDriver); err != nil {
			log.WithError(err).Fatal("Could not create collaborator tables")
		}
	}

	// 4. Initialize Redis (optional, options fall back to the database)
	var optionCache options.Getter
	if err := kv.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
		log.WithError(err).Warn("Redis unavailable, reading options from the database")
	} else {
		optionCache = kv.RDB
		defer kv.Close()
	}

	// 5. Initialize Repositories and Stores
	quizRepo := repository.NewQuizRepository(database.DB)
	contestRepo := repository.NewContestRepository(database.DB)
	submissionRepo := repository.NewSubmissionRepository(database.DB)
	profileRepo := repository.NewProfileRepository(database.DB)

	optionStore := options.NewStore(optionCache, database.DB, cfg.DefaultLanguages)
	testCaseStore := testcase.NewStore(cfg.TestCaseDir)

	// 6. Initialize Services
	quizService := service.NewQuizService(quizRepo, database.DB)
	contestQuizService := service.NewContestQuizService(quizRepo, contestRepo, submissionRepo, database.DB)
	publicService := service.NewPublicQuizService(quizRepo, contestRepo, profileRepo)
	importService := service.NewImportService(quizRepo, optionStore, testCaseStore, cfg.UploadDir, cfg.UploadPrefix, database.DB)

	// 7. Initialize Router & HTTP Server
	router := api.NewRouter(quizService, contestQuizService, publicService, importService, api.Options{
		CORSOrigins: cfg.CORSOrigins,
		MaxUploadMB: cfg.MaxUploadMB,
	})

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second, // FPS imports write many files
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Infof("Server starting on port %s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Could not listen on %s: %v", cfg.APIPort, err)
		}
	}()

	<-stop

	log.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("Server shutdown failed")
	}
	log.Info("Server stopped gracefully.")
}
