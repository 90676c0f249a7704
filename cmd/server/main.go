package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/examtrainer/backend/internal/api"
	"github.com/examtrainer/backend/internal/auth"
	"github.com/examtrainer/backend/internal/infrastructure/config"
	"github.com/examtrainer/backend/internal/store"

	_ "github.com/examtrainer/backend/docs" // generated swagger docs
)

// @title           Exam Trainer API
// @version         1.0
// @description     Self-hosted multiple-choice quiz trainer: shared question bank, per-user progress sync behind bearer tokens.

// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization

// @host      localhost:8080
// @BasePath  /

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// ── Dependencies ────────────────────────────────────────────────
	db, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	users := make(map[string]string, len(cfg.Users))
	for _, c := range cfg.Users {
		users[c.Username] = c.Password
	}
	authSvc := auth.NewService(cfg.JWTSecret, cfg.TokenTTL, users)

	handler := api.NewHandler(db, authSvc, logger)

	// ── Routes ──────────────────────────────────────────────────────
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	})

	api.RegisterRoutes(mux, handler, authSvc)

	// Swagger UI served at /swagger/
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// Web client, when the directory exists
	if _, err := os.Stat(cfg.StaticDir); err == nil {
		mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	// ── Middleware chain: Logging → CORS → mux ──────────────────────
	withCORS := cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	})
	logged := api.Logging(logger)(withCORS(mux))

	// ── Server ──────────────────────────────────────────────────────
	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           logged,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		logger.Info("shutting down server")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server forced to shutdown", "error", err)
		}
	}()

	logger.Info("starting server", "address", cfg.ServerAddress)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed to start", "error", err)
		os.Exit(1)
	}
}
