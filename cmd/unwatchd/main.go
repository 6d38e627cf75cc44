// Command unwatchd serves the transcription pipeline over HTTP: submit a
// video URL, poll job status, and download the result as markdown, PDF, or
// an HTML preview.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/x26prakhar/unwatch"
)

func main() {
	if err := run(); err != nil {
		slog.Error("unwatchd failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments set environment variables directly.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		logger.Info("maxprocs", "detail", fmt.Sprintf(format, args...))
	}))

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cache, err := unwatch.OpenResultCache(cfg.Cache.File)
	if err != nil {
		return err
	}
	logger.Info("result cache opened", "file", cfg.Cache.File, "entries", cache.Len())

	stages := unwatch.Stages{
		Metadata:   unwatch.NewOEmbedResolver(nil),
		Transcript: unwatch.NewYTDLPExtractor(cfg.Extractor.Binary, cfg.Extractor.Proxy),
	}

	if key := cfg.APIKey(); key != "" {
		cleaner, err := unwatch.NewGeminiCleaner(context.Background(), key, cfg.Gemini.Model)
		if err != nil {
			return err
		}
		stages.Cleaner = cleaner
		stages.Highlights = cleaner
	} else {
		logger.Warn("GOOGLE_API_KEY not set; submissions will be rejected")
	}

	orch := unwatch.NewOrchestrator(cache, stages, unwatch.WithLogger(logger))

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: newRouter(routerDeps{
			jobs:     orch,
			renderer: unwatch.NewRenderer(unwatch.WithImageTimeout(cfg.ImageTimeout())),
			preview:  unwatch.NewPreviewRenderer(),
			logger:   logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	// Let in-flight pipelines finish so their results reach the cache.
	orch.Wait()
	return nil
}

// loadConfig resolves configuration from an optional file plus environment.
func loadConfig() (*unwatch.Config, error) {
	path := os.Getenv("UNWATCH_CONFIG")
	if path == "" {
		cfg := unwatch.DefaultConfig()
		cfg.ApplyEnv()
		return cfg, nil
	}
	cfg, err := unwatch.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}
