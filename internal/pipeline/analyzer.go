// Package pipeline coordinates the extraction strategies: vision model first
// when eligible, then recognition plus heuristic parsing as the terminal
// fallback. The strategy that produced a result is logged but never exposed.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/healthtrack/prescription-extractor/constants"
	"github.com/healthtrack/prescription-extractor/internal/common"
	"github.com/healthtrack/prescription-extractor/internal/extract"
	"github.com/healthtrack/prescription-extractor/internal/llm"
	"github.com/healthtrack/prescription-extractor/internal/parse"
)

// TextExtractor is the recognition seam (see internal/ocr).
type TextExtractor interface {
	ExtractText(ctx context.Context, fileBytes []byte, mediaType string) (string, error)
}

// strategy is one entry in the ordered extraction chain. skip returns a
// reason when the strategy does not apply to the file; terminal marks the
// last resort whose failure ends the request.
type strategy struct {
	name     string
	terminal bool
	skip     func(file extract.UploadedFile) string
	run      func(ctx context.Context, file extract.UploadedFile) (*extract.ExtractionSummary, error)
}

type Analyzer struct {
	vision     llm.SummaryExtractor // nil when no model is configured
	ocr        TextExtractor
	logger     *slog.Logger
	strategies []strategy
}

// NewAnalyzer wires the strategy chain. The OCR engine handle arrives through
// the TextExtractor; there is no ambient shared state here.
func NewAnalyzer(vision llm.SummaryExtractor, ocr TextExtractor, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Analyzer{vision: vision, ocr: ocr, logger: logger}
	a.strategies = []strategy{
		{
			name: "vision",
			skip: a.visionSkipReason,
			run:  a.runVision,
		},
		{
			name:     "ocr-heuristic",
			terminal: true,
			skip:     func(extract.UploadedFile) string { return "" },
			run:      a.runOCRHeuristic,
		},
	}
	return a
}

// Analyze runs the chain and always returns either a normalized summary or a
// single generic failure. Provider errors never reach the caller.
func (a *Analyzer) Analyze(ctx context.Context, file extract.UploadedFile) (extract.ExtractionSummary, error) {
	start := time.Now()
	reqID := common.RequestIDFromContext(ctx)

	for _, s := range a.strategies {
		if reason := s.skip(file); reason != "" {
			a.logger.Debug("pipeline.strategy.skipped", "req_id", reqID, "strategy", s.name, "reason", reason)
			continue
		}
		summary, err := s.run(ctx, file)
		if err != nil {
			if s.terminal {
				a.logger.Error("pipeline.strategy.failed",
					"req_id", reqID,
					"strategy", s.name,
					"elapsed_ms", time.Since(start).Milliseconds(),
					"error", err,
				)
				return extract.ExtractionSummary{}, common.NewAppError(
					"EXTRACTION_FAILED", "could not analyze document", common.ErrExtractionFailed)
			}
			a.logger.Warn("pipeline.strategy.fallback", "req_id", reqID, "strategy", s.name, "error", err)
			continue
		}
		if summary == nil {
			a.logger.Warn("pipeline.strategy.no_result", "req_id", reqID, "strategy", s.name)
			continue
		}
		a.logger.Info("pipeline.analyze.ok",
			"req_id", reqID,
			"strategy", s.name,
			"medicines", len(summary.Medicines),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return *summary, nil
	}

	// The terminal strategy always runs, so this is unreachable; kept for the
	// compiler and as a guard against future strategy edits.
	return extract.ExtractionSummary{}, common.NewAppError(
		"EXTRACTION_FAILED", "could not analyze document", common.ErrExtractionFailed)
}

func (a *Analyzer) visionSkipReason(file extract.UploadedFile) string {
	if a.vision == nil {
		return "no vision model configured"
	}
	if !constants.IsImage(file.MediaType) {
		return "media type is not an image"
	}
	return ""
}

func (a *Analyzer) runVision(ctx context.Context, file extract.UploadedFile) (*extract.ExtractionSummary, error) {
	return a.vision.ExtractSummary(ctx, file.Data)
}

func (a *Analyzer) runOCRHeuristic(ctx context.Context, file extract.UploadedFile) (*extract.ExtractionSummary, error) {
	text, err := a.ocr.ExtractText(ctx, file.Data, file.MediaType)
	if err != nil {
		return nil, err
	}
	summary := parse.Summarize(text)
	return &summary, nil
}
