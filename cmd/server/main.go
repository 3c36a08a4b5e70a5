package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhandler "sitewise/internal/auth/handler"
	authservice "sitewise/internal/auth/service"
	authstore "sitewise/internal/auth/store"
	capahandler "sitewise/internal/capa/handler"
	capaservice "sitewise/internal/capa/service"
	capastore "sitewise/internal/capa/store"
	cataloghandler "sitewise/internal/catalog/handler"
	catalogservice "sitewise/internal/catalog/service"
	catalogstore "sitewise/internal/catalog/store"
	"sitewise/internal/enrichment"
	"sitewise/internal/feedback"
	jwttoken "sitewise/internal/jwt_token"
	"sitewise/internal/platform/config"
	"sitewise/internal/platform/httpserver"
	"sitewise/internal/platform/logger"
	"sitewise/internal/platform/metrics"
	"sitewise/internal/platform/middleware"
	"sitewise/internal/platform/postgres"
	reporthandler "sitewise/internal/report/handler"
	reportservice "sitewise/internal/report/service"
	reportstore "sitewise/internal/report/store"
	"sitewise/internal/stats"
	"sitewise/internal/upload"
	"sitewise/pkg/platform/httputil"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	db, err := postgres.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err.Error())
		os.Exit(1)
	}
	defer db.Close()

	tokens := jwttoken.NewService(cfg.JWTSigningKey, "sitewise", cfg.TokenTTL)
	verifier := jwttoken.NewVerifierAdapter(tokens)

	authHandler := authhandler.New(
		authservice.NewService(authstore.NewPostgres(db), tokens),
		log,
	)

	catalogHandler := cataloghandler.New(
		catalogservice.NewService(catalogstore.NewPostgres(db)),
		log, verifier,
	)

	reportHandler := reporthandler.New(
		reportservice.NewService(reportstore.NewPostgres(db), newReportPostgresTx(db), log, m),
		log, verifier,
	)

	capaHandler := capahandler.New(
		capaservice.NewService(capastore.NewPostgres(db), capaservice.AllowAll, log, m),
		log, verifier,
	)

	statsHandler := stats.NewHandler(stats.NewService(stats.NewPostgresStore(db)), log)

	aiClient := enrichment.NewClient(cfg.AIBaseURL, cfg.AITimeout, log, m)
	chatHandler := enrichment.NewHandler(aiClient, log, verifier)

	uploadStore, err := upload.NewDiskStore(cfg.UploadDir, cfg.PublicBaseURL)
	if err != nil {
		log.Error("failed to prepare upload directory", "error", err.Error())
		os.Exit(1)
	}
	uploadHandler := upload.NewHandler(uploadStore, aiClient, log)

	recorder := feedback.NewRecorder(256, log)
	feedbackHandler := feedback.NewHandler(recorder, log, verifier)
	worker := feedback.NewWorker(feedback.NewPostgresStore(db), recorder, log)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	go func() {
		if err := worker.Run(workerCtx); err != nil && err != context.Canceled {
			log.Error("feedback worker stopped", "error", err.Error())
		}
	}()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.Latency(m))

	router.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		ai := "ok"
		if aiClient.Degraded() {
			ai = "degraded"
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{
			"status":       "ok",
			"ai_assistant": ai,
		})
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	authHandler.Register(router)
	catalogHandler.Register(router)
	reportHandler.Register(router)
	capaHandler.Register(router)
	chatHandler.Register(router)
	uploadHandler.Register(router)
	feedbackHandler.Register(router)
	statsHandler.Register(router)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting sitewise on " + cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
	}
	// Stop the worker only after the listener is down so requests acked
	// during shutdown still reach the feedback table.
	stopWorker()
}
