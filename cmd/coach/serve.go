package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/coach/internal/metrics"
	chiTransport "github.com/kailas-cloud/coach/internal/transport/chi"
	assessmentuc "github.com/kailas-cloud/coach/internal/usecase/assessment"
	healthuc "github.com/kailas-cloud/coach/internal/usecase/health"
	lessonuc "github.com/kailas-cloud/coach/internal/usecase/lesson"
	mentoruc "github.com/kailas-cloud/coach/internal/usecase/mentor"
	usageuc "github.com/kailas-cloud/coach/internal/usecase/usage"
	"github.com/kailas-cloud/coach/internal/usecase/warmup"
	"github.com/kailas-cloud/coach/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting coach API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
	)

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	metrics.RegisterHTTPMetrics()

	kbs := cfg.KnowledgeBases
	lessons := lessonuc.New(a.retrieval, a.generator, kbs.Default, logger)
	mentor := mentoruc.New(a.retrieval, a.generator, kbs.Mentor, logger)
	assessor := assessmentuc.New(a.retrieval, a.generator, kbs.Assessment, logger)

	// typed nil pointers must not reach the usage service
	var budgetReader usageuc.BudgetReader
	if a.budget != nil {
		budgetReader = a.budget
	}

	server := chiTransport.NewServer(chiTransport.Deps{
		Lessons:  lessons,
		Mentor:   mentor,
		Assessor: assessor,
		Contexts: a.retrieval,
		Usage:    usageuc.New(budgetReader),
		Health:   healthuc.New(a.store, a.provider, a.retrieval),
	}, logger)

	scheduler := warmup.New(a.retrieval, warmup.Config{
		Schedule:       cfg.Warmup.Schedule,
		RunOnStart:     cfg.Warmup.RunOnStart,
		KnowledgeBases: kbs.All(),
	}, logger)
	switch err := scheduler.Start(ctx); {
	case errors.Is(err, warmup.ErrDisabled):
		logger.Info("Warmup disabled")
	case err != nil:
		return fmt.Errorf("start warmup: %w", err)
	}

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           chiTransport.NewRouter(server, cfg.Auth.APIKeys, logger),
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	scheduler.Stop(shutdownCtx)

	logger.Info("Server stopped gracefully")
	return nil
}
