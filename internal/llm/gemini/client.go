// Package gemini implements the vision extraction seam against Google's
// multimodal models. Everything here is best-effort: transport failures,
// timeouts and unusable responses all surface as fallback signals, never as
// user-visible errors.
package gemini

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/healthtrack/prescription-extractor/internal/common"
	"github.com/healthtrack/prescription-extractor/internal/extract"
	"github.com/healthtrack/prescription-extractor/internal/llm"
	"github.com/healthtrack/prescription-extractor/internal/preprocess"
)

type Config struct {
	Model   string        // e.g. "models/gemini-2.5-flash"
	APIKey  string
	Timeout time.Duration // bound on the provider call, default 15s
}

type Client struct {
	cfg    Config
	client *genai.Client
	model  *genai.GenerativeModel
	logger *slog.Logger
}

// NewClient dials the provider. Returns ErrModelUnavailable when no API key
// is configured, which callers treat as "vision path disabled".
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.APIKey == "" {
		return nil, common.ErrModelUnavailable
	}
	if cfg.Model == "" {
		cfg.Model = "models/gemini-2.5-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	gc, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, common.NewAppError("VISION_DIAL", "creating vision client", err)
	}
	return &Client{
		cfg:    cfg,
		client: gc,
		model:  gc.GenerativeModel(cfg.Model),
		logger: logger,
	}, nil
}

// ExtractSummary sends the preprocessed image with the extraction prompt and
// normalizes whatever comes back. A nil summary tells the caller to fall back.
func (c *Client) ExtractSummary(ctx context.Context, imageBytes []byte) (*extract.ExtractionSummary, error) {
	start := time.Now()
	requestID := common.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	png := preprocess.ForVision(imageBytes)
	prompt := llm.BuildPrompt(requestID)

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.model.GenerateContent(ctx,
		genai.Text(prompt),
		genai.Blob{MIMEType: "image/png", Data: png},
	)
	if err != nil {
		c.logger.Warn("vision.call.failed",
			"req_id", requestID,
			"model", c.cfg.Model,
			"elapsed_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return nil, common.NewAppError("VISION_CALL", "vision model call failed", common.ErrModelUnavailable)
	}

	text := collectText(resp)
	parsed, err := llm.ParseSummaryPayload(text)
	if err != nil {
		c.logger.Warn("vision.response.unparseable",
			"req_id", requestID,
			"model", c.cfg.Model,
			"chars", len(text),
			"error", err,
		)
		return nil, err
	}

	summary := extract.EnsureShape(parsed)
	c.logger.Info("vision.extract.ok",
		"req_id", requestID,
		"model", c.cfg.Model,
		"medicines", len(summary.Medicines),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &summary, nil
}

// Close releases the underlying transport.
func (c *Client) Close() error {
	return c.client.Close()
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var out string
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				out += string(t)
			}
		}
	}
	return out
}
