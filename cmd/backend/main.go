package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	configloader "github.com/foxseedlab/voicecap/external/config"
	llmimpl "github.com/foxseedlab/voicecap/external/llm"
	repositoryimpl "github.com/foxseedlab/voicecap/external/repository"
	transcriberimpl "github.com/foxseedlab/voicecap/external/transcriber"
	webhookimpl "github.com/foxseedlab/voicecap/external/webhook"
	"github.com/foxseedlab/voicecap/internal/api"
	"github.com/foxseedlab/voicecap/internal/config"
	"github.com/foxseedlab/voicecap/internal/pipeline"
	"github.com/foxseedlab/voicecap/internal/repository"
	"github.com/samber/do/v2"
)

const shutdownTimeout = 20 * time.Second

func main() {
	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env, "transcriber", cfg.TranscriberProvider, "database", cfg.DatabaseDriver)

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg)

	slog.Info("startup: launching http server")
	runServer(cfg, injector)
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	repositoryimpl.RegisterDI(injector)
	transcriberimpl.RegisterDI(injector)
	llmimpl.RegisterDI(injector)
	webhookimpl.RegisterDI(injector)
	pipeline.RegisterDI(injector)

	return injector
}

func runServer(cfg *config.Config, injector do.Injector) {
	p, err := do.Invoke[*pipeline.Pipeline](injector)
	if err != nil {
		slog.Error("failed to resolve pipeline", "error", err)
		os.Exit(1)
	}
	repo := do.MustInvoke[repository.Repository](injector)
	defer repo.Close()

	router := api.NewRouter(api.NewCaptureHandler(p, cfg.MaxUploadBytes, cfg.DefaultTimezone))
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Uploads are read in full before the pipeline runs, so the write
		// deadline has to cover the whole pipeline.
		WriteTimeout: cfg.PipelineTimeout + 30*time.Second,
	}

	done := make(chan struct{})
	go func() {
		slog.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
		}
		close(done)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		slog.Info("shutting down")
	case <-done:
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("http server shutdown failed", "error", err)
	}
}
