package llm

import (
	"context"

	"github.com/healthtrack/prescription-extractor/internal/extract"
)

// SummaryExtractor is the vision-model seam the pipeline depends on.
// A nil summary with a nil error means the model produced nothing usable and
// the caller should fall back; errors carry the same meaning but are logged
// with their cause.
type SummaryExtractor interface {
	ExtractSummary(ctx context.Context, imageBytes []byte) (*extract.ExtractionSummary, error)
}
