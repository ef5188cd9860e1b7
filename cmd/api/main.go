package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/statement-editor/internal/api/handlers"
	"github.com/dvloznov/statement-editor/internal/api/middleware"
	"github.com/dvloznov/statement-editor/internal/config"
	"github.com/dvloznov/statement-editor/internal/extract"
	"github.com/dvloznov/statement-editor/internal/gcs"
	"github.com/dvloznov/statement-editor/internal/jobs"
	"github.com/dvloznov/statement-editor/internal/jobs/inmemory"
	"github.com/dvloznov/statement-editor/internal/logger"
	"github.com/dvloznov/statement-editor/internal/process"
	"github.com/dvloznov/statement-editor/internal/store"
)

func main() {
	// Initialize logger
	log := logger.New()

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	var archiver gcs.Archiver
	if cfg.GCSBucket != "" {
		archiver = gcs.NewClient(cfg.GCSBucket)
	} else {
		log.Warn().Msg("No GCS bucket configured - archiving is disabled")
	}

	ctx := context.Background()

	// Initialize core services
	statementStore := store.NewMemory()
	extractService := extract.NewService(cfg, log)

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	// Start worker in background to process jobs
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	// Create job handler for processing extraction jobs
	jobHandler := func(ctx context.Context, job jobs.Job) error {
		extractJob, ok := job.(*jobs.ExtractStatementJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", extractJob.JobID).
			Msg("Processing extraction job")

		st, source := extractService.ExtractStatement(ctx, extractJob.RawText)
		process.Recalculate(st)

		rec, err := statementStore.Create(ctx, st, source)
		if err != nil {
			log.Error().
				Err(err).
				Str("job_id", extractJob.JobID).
				Msg("Failed to register extracted statement")
			return err
		}

		extractJob.StatementID = rec.ID
		extractJob.Source = source

		log.Info().
			Str("job_id", extractJob.JobID).
			Str("statement_id", rec.ID).
			Str("source", source).
			Msg("Extraction job completed")

		return nil
	}

	// Start job consumer in background
	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	// Initialize handlers and routes
	statementsHandler := handlers.NewStatementsHandler(statementStore, extractService, jobQueue, archiver, cfg.AuditLogDir, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)
	mux := handlers.NewMux(statementsHandler, jobsHandler)

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("provider", string(cfg.LLMProvider)).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Cancel worker context
	cancelWorker()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
