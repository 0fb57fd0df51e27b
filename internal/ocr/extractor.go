// Package ocr turns uploaded file bytes into raw text, preferring a PDF's
// embedded text layer and otherwise running the recognition engine over a
// preprocessed image with competing page-segmentation modes.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/healthtrack/prescription-extractor/constants"
	"github.com/healthtrack/prescription-extractor/internal/common"
	"github.com/healthtrack/prescription-extractor/internal/extract"
	"github.com/healthtrack/prescription-extractor/internal/preprocess"
)

// Recognizer is the engine seam the extractor depends on.
type Recognizer interface {
	Recognize(ctx context.Context, pngBytes []byte, mode Mode) (extract.OcrAttempt, error)
}

// modes are tried in order; ties on confidence keep the earlier one.
var modes = []Mode{ModeSingleBlock, ModeSparseText}

type Extractor struct {
	engine  Recognizer
	logger  *slog.Logger
	pdfText func([]byte) (string, error)
}

func NewExtractor(engine Recognizer, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		engine:  engine,
		logger:  logger,
		pdfText: extractPDFText,
	}
}

// ExtractText returns raw text for the uploaded bytes. A PDF with a non-empty
// embedded text layer short-circuits recognition entirely; a failed text
// layer read silently falls through to the image path.
func (e *Extractor) ExtractText(ctx context.Context, fileBytes []byte, mediaType string) (string, error) {
	start := time.Now()
	reqID := common.RequestIDFromContext(ctx)

	if constants.IsPDF(mediaType) {
		text, err := e.pdfText(fileBytes)
		if err == nil && strings.TrimSpace(text) != "" {
			e.logger.Info("ocr.pdf_text.ok",
				"req_id", reqID,
				"chars", len(text),
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return text, nil
		}
		if err != nil {
			e.logger.Warn("ocr.pdf_text.fallthrough", "req_id", reqID, "error", err)
		}
	}

	png := preprocess.ForRecognition(fileBytes)

	best := extract.OcrAttempt{Confidence: -1}
	var lastErr error
	succeeded := false
	for _, mode := range modes {
		attempt, err := e.engine.Recognize(ctx, png, mode)
		if err != nil {
			e.logger.Warn("ocr.pass.failed", "req_id", reqID, "mode", mode.String(), "error", err)
			lastErr = err
			continue
		}
		e.logger.Debug("ocr.pass.ok",
			"req_id", reqID,
			"mode", mode.String(),
			"confidence", attempt.Confidence,
			"chars", len(attempt.Text),
		)
		// Strictly greater, so equal confidence keeps the earlier mode.
		if !succeeded || attempt.Confidence > best.Confidence {
			best = attempt
		}
		succeeded = true
	}
	if !succeeded {
		cause := common.ErrExtractionFailed
		if lastErr != nil {
			cause = fmt.Errorf("%w: %w", common.ErrExtractionFailed, lastErr)
		}
		return "", common.NewAppError("OCR_FAILED", "all recognition passes failed", cause)
	}

	e.logger.Info("ocr.image.ok",
		"req_id", reqID,
		"confidence", best.Confidence,
		"chars", len(best.Text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return best.Text, nil
}
