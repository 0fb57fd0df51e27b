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

	"github.com/healthtrack/prescription-extractor/internal/common"
	"github.com/healthtrack/prescription-extractor/internal/documents"
	"github.com/healthtrack/prescription-extractor/internal/export"
	"github.com/healthtrack/prescription-extractor/internal/llm"
	"github.com/healthtrack/prescription-extractor/internal/llm/gemini"
	"github.com/healthtrack/prescription-extractor/internal/ocr"
	"github.com/healthtrack/prescription-extractor/internal/pipeline"
	"github.com/healthtrack/prescription-extractor/internal/repository"
	"github.com/healthtrack/prescription-extractor/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("config invalid", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, repository.Config{DSN: cfg.Vault.DSN, DialTimeout: 5 * time.Second}, logger)
	if err != nil {
		logger.Error("opening document store", "error", err)
		os.Exit(1)
	}
	defer repository.Close(db, logger)

	repo := repository.NewDocumentRepository(db)
	vault := documents.NewService(repo, cfg.Vault.UploadsDir, logger)
	exporter := export.NewService(repo, logger)

	engine := ocr.NewSharedEngine(ocr.Config{
		Language:    cfg.OCR.Language,
		TessdataDir: cfg.OCR.TessdataDir,
	}, logger)
	defer func() {
		if err := engine.Close(); err != nil {
			logger.Error("closing ocr engine", "error", err)
		}
	}()
	extractor := ocr.NewExtractor(engine, logger)

	// The vision path is optional; without a key the analyzer only ever runs
	// the OCR+heuristic strategy.
	var vision llm.SummaryExtractor
	if cfg.Vision.APIKey != "" {
		client, err := gemini.NewClient(ctx, gemini.Config{
			Model:   cfg.Vision.Model,
			APIKey:  cfg.Vision.APIKey,
			Timeout: cfg.Vision.Timeout,
		}, logger)
		if err != nil {
			logger.Error("creating vision client", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := client.Close(); err != nil {
				logger.Error("closing vision client", "error", err)
			}
		}()
		vision = client
		logger.Info("vision path enabled", "model", cfg.Vision.Model)
	} else {
		logger.Info("vision path disabled, using ocr only")
	}

	analyzer := pipeline.NewAnalyzer(vision, extractor, logger)
	srv := server.New(cfg.Server, analyzer, vault, exporter, logger)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Router(),
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	logger.Info("stopped")
}
