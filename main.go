package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"meetingSummarize/config"
	"meetingSummarize/core"
	"meetingSummarize/logger"
	"meetingSummarize/processors"
	"meetingSummarize/server"
	"meetingSummarize/storage"
	"meetingSummarize/tasks"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()
	log.WithField("service", "meetingSummarize").Info("starting service")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		config.PrintConfigInstructions()
		log.WithError(err).Fatal("invalid config")
	}

	if err := os.MkdirAll(core.RecordingsRoot(), 0755); err != nil {
		log.WithError(err).Fatal("failed to create recordings dir")
	}

	// Postgres when configured, memory store as fallback.
	var openStore storage.Opener
	if cfg.DatabaseURL != "" {
		if err := storage.EnsureSchema(context.Background(), cfg.DatabaseURL); err != nil {
			log.WithError(err).Fatal("failed to ensure schema")
		}
		openStore = storage.NewPgOpener(cfg.DatabaseURL)
		log.Info("storage initialized: postgres")
	} else {
		openStore = storage.NewMemoryGateway().Opener()
		log.Warn("DATABASE_URL not set, using in-memory storage")
	}

	tracker := tasks.NewTracker(cfg.TaskTTL())
	defer tracker.Close()

	pipeline := &processors.Pipeline{
		Tracker:    tracker,
		OpenStore:  openStore,
		Audio:      storage.NewAudioStore(core.RecordingsRoot()),
		ASR:        processors.PickASRProvider(cfg),
		Summarizer: processors.PickSummarizer(cfg),
		Log:        log.WithField("component", "pipeline"),
	}

	srv := &server.Server{
		Pipeline:  pipeline,
		Tracker:   tracker,
		OpenStore: openStore,
		Log:       log,
	}

	mux := http.NewServeMux()
	srv.Routes(mux)

	addr := fmt.Sprintf(":%s", envOr("PORT", "8080"))
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
