package ocr

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
	"golang.org/x/sync/semaphore"

	"github.com/healthtrack/prescription-extractor/internal/common"
	"github.com/healthtrack/prescription-extractor/internal/extract"
)

// Mode is the page-segmentation assumption handed to the engine for one pass.
type Mode int

const (
	// ModeSingleBlock assumes one uniform block of text.
	ModeSingleBlock Mode = iota
	// ModeSparseText assumes scattered text, finding as much as possible.
	ModeSparseText
)

func (m Mode) String() string {
	switch m {
	case ModeSingleBlock:
		return "single-block"
	case ModeSparseText:
		return "sparse-text"
	default:
		return "unknown"
	}
}

// Config holds engine construction parameters.
type Config struct {
	Language    string // default "eng"
	TessdataDir string // optional override for the model data directory
}

// Engine runs a single recognition pass. Implementations are not required to
// be safe for concurrent use; SharedEngine serializes calls.
type Engine interface {
	Recognize(ctx context.Context, pngBytes []byte, mode Mode) (extract.OcrAttempt, error)
	Close() error
}

type tesseractEngine struct {
	client *gosseract.Client
}

func newTesseractEngine(cfg Config) (Engine, error) {
	client := gosseract.NewClient()
	if cfg.TessdataDir != "" {
		if err := client.SetTessdataPrefix(cfg.TessdataDir); err != nil {
			_ = client.Close()
			return nil, common.WrapError(err, "ocr: set tessdata prefix")
		}
	}
	lang := cfg.Language
	if lang == "" {
		lang = "eng"
	}
	if err := client.SetLanguage(lang); err != nil {
		_ = client.Close()
		return nil, common.WrapError(err, "ocr: set language")
	}
	return &tesseractEngine{client: client}, nil
}

func (e *tesseractEngine) Recognize(_ context.Context, pngBytes []byte, mode Mode) (extract.OcrAttempt, error) {
	psm := gosseract.PSM_SINGLE_BLOCK
	if mode == ModeSparseText {
		psm = gosseract.PSM_SPARSE_TEXT
	}
	if err := e.client.SetPageSegMode(psm); err != nil {
		return extract.OcrAttempt{}, common.WrapError(err, "ocr: set page seg mode")
	}
	if err := e.client.SetImageFromBytes(pngBytes); err != nil {
		return extract.OcrAttempt{}, common.WrapError(err, "ocr: set image")
	}
	text, err := e.client.Text()
	if err != nil {
		return extract.OcrAttempt{}, common.WrapError(err, "ocr: recognize")
	}
	return extract.OcrAttempt{
		Text:       strings.TrimSpace(text),
		Confidence: e.meanWordConfidence(),
	}, nil
}

// meanWordConfidence averages per-word confidences on a 0-100 scale. A page
// with no recognized words scores zero.
func (e *tesseractEngine) meanWordConfidence() float64 {
	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence
	}
	return sum / float64(len(boxes))
}

func (e *tesseractEngine) Close() error {
	return e.client.Close()
}

// SharedEngine is the process-lifetime engine handle. Construction is
// expensive (loads a recognition model), so it happens at most once, on first
// use, with concurrent first users coalesced onto the same initialization.
// Recognition calls are serialized through a FIFO semaphore because the
// underlying client keeps per-call state.
type SharedEngine struct {
	cfg    Config
	logger *slog.Logger

	once    sync.Once
	engine  Engine
	initErr error

	sem *semaphore.Weighted

	// newEngine lets tests substitute the engine constructor.
	newEngine func(Config) (Engine, error)
}

func NewSharedEngine(cfg Config, logger *slog.Logger) *SharedEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &SharedEngine{
		cfg:       cfg,
		logger:    logger,
		sem:       semaphore.NewWeighted(1),
		newEngine: newTesseractEngine,
	}
}

// Recognize initializes the engine if needed and runs one serialized pass.
func (s *SharedEngine) Recognize(ctx context.Context, pngBytes []byte, mode Mode) (extract.OcrAttempt, error) {
	s.once.Do(func() {
		s.engine, s.initErr = s.newEngine(s.cfg)
		if s.initErr != nil {
			s.logger.Error("ocr.engine.init_failed", "error", s.initErr)
		} else {
			s.logger.Info("ocr.engine.ready", "language", s.cfg.Language)
		}
	})
	if s.initErr != nil {
		return extract.OcrAttempt{}, common.NewAppError("OCR_ENGINE", "engine initialization failed", s.initErr)
	}
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return extract.OcrAttempt{}, common.WrapError(err, "ocr: acquire engine")
	}
	defer s.sem.Release(1)
	return s.engine.Recognize(ctx, pngBytes, mode)
}

// Close releases the engine if it was ever constructed.
func (s *SharedEngine) Close() error {
	if s.engine != nil {
		return s.engine.Close()
	}
	return nil
}
