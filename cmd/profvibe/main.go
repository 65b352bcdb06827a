package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akozyrev/profvibe/internal/config"
	"github.com/akozyrev/profvibe/internal/dialogue"
	"github.com/akozyrev/profvibe/internal/httpapi"
	"github.com/akozyrev/profvibe/internal/imagegen"
	"github.com/akozyrev/profvibe/internal/llmgen"
	"github.com/akozyrev/profvibe/internal/observability"
	"github.com/akozyrev/profvibe/internal/profile"
	"github.com/akozyrev/profvibe/internal/vacancies"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	gen, err := llmgen.NewGenerator(ctx, llmgen.Config{
		Provider:     cfg.GenerationProvider,
		OllamaURL:    cfg.OllamaURL,
		OllamaModel:  cfg.OllamaModel,
		Timeout:      cfg.GenerationTimeout,
		GeminiAPIKey: cfg.GeminiAPIKey,
		GeminiModel:  cfg.GeminiModel,
	})
	if err != nil {
		log.Fatalf("generator init failed: %v", err)
	}
	if c, ok := gen.(interface{ Close() error }); ok {
		defer c.Close()
	}
	provider := resolvedProvider(cfg)
	gen = llmgen.Instrument(gen, provider, metrics)
	log.Printf("generation provider: %s", provider)

	var (
		sessionStore dialogue.Store
		vacancyStore vacancies.Store
		storeMode    string
	)
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres connect failed: %v", err)
		}
		pgSessions, err := dialogue.NewPostgresStoreWithPool(ctx, pool)
		if err != nil {
			log.Fatalf("session store init failed: %v", err)
		}
		pgVacancies, err := vacancies.NewPostgresStoreWithPool(ctx, pool)
		if err != nil {
			log.Fatalf("vacancy store init failed: %v", err)
		}
		sessionStore = pgSessions
		vacancyStore = pgVacancies
		storeMode = "postgres"
	} else {
		sessionStore = dialogue.NewMemoryStore()
		vacancyStore = vacancies.NewMemoryStore()
		storeMode = "in-memory"
	}
	defer sessionStore.Close()
	defer vacancyStore.Close()
	log.Printf("store mode: %s", storeMode)

	var images imagegen.Client
	if strings.TrimSpace(cfg.RunwareAPIKey) != "" {
		images = imagegen.NewRunwareClient(cfg.RunwareWSURL, cfg.RunwareAPIKey, cfg.RunwareModel, cfg.RunwarePositivePrefix)
		log.Printf("image provider: runware")
	} else {
		images = imagegen.NewMockClient()
		log.Printf("image provider: mock (no runware key)")
	}

	synth := profile.NewSynthesizer(gen, cfg.ProgressInterval)
	hub := dialogue.NewProgressHub()
	machine := dialogue.NewMachine(sessionStore, synth, hub, metrics, cfg.MaxDetailQuestions)
	collector := vacancies.NewCollector(cfg.HHBaseURL, cfg.HHAreaID, cfg.HHVacanciesPerRole, float64(cfg.HHRequestsPerSec))

	api := httpapi.New(cfg, machine, hub, gen, images, vacancyStore, collector, metrics, provider, storeMode)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}

func resolvedProvider(cfg config.Config) string {
	provider := strings.ToLower(strings.TrimSpace(cfg.GenerationProvider))
	if provider != "auto" && provider != "" {
		return provider
	}
	if strings.TrimSpace(cfg.GeminiAPIKey) != "" {
		return "gemini"
	}
	if strings.TrimSpace(cfg.OllamaURL) != "" {
		return "ollama"
	}
	return "mock"
}
