// Package server exposes the extraction pipeline and the document vault over
// HTTP. Responses never reveal provider errors or which extraction strategy
// ran.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/healthtrack/prescription-extractor/internal/common"
	"github.com/healthtrack/prescription-extractor/internal/documents"
	"github.com/healthtrack/prescription-extractor/internal/export"
	"github.com/healthtrack/prescription-extractor/internal/extract"
)

// Analyzer is the pipeline seam.
type Analyzer interface {
	Analyze(ctx context.Context, file extract.UploadedFile) (extract.ExtractionSummary, error)
}

type Server struct {
	cfg      common.ServerConfig
	analyzer Analyzer
	vault    *documents.Service
	exporter *export.Service
	logger   *slog.Logger
}

func New(cfg common.ServerConfig, analyzer Analyzer, vault *documents.Service, exporter *export.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{cfg: cfg, analyzer: analyzer, vault: vault, exporter: exporter, logger: logger}
}

// Router assembles the gin engine with middleware and routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(BodyLimit(s.cfg.MaxUploadBytes + 1<<20)) // upload cap plus multipart overhead
	r.Use(RateLimit(s.cfg.RatePerSecond, s.cfg.RateBurst))

	api := r.Group("/api")
	{
		api.GET("/health-check", s.handleHealthCheck)
		docs := api.Group("/documents")
		{
			docs.POST("/analyze", s.handleAnalyze)
			docs.POST("/upload", s.handleUpload)
			docs.GET("", s.handleList)
			docs.GET("/export", s.handleExport)
			docs.DELETE("/:id", s.handleDelete)
		}
	}
	return r
}

func (s *Server) handleHealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError maps internal errors onto the uniform JSON envelope. Causes
// stay in the logs.
func (s *Server) respondError(c *gin.Context, err error) {
	reqID := common.RequestIDFromContext(c.Request.Context())
	switch {
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "document not found"})
	case errors.Is(err, common.ErrUnsupportedMediaType):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"message": "only jpeg, png and pdf uploads are supported"})
	case errors.Is(err, common.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": "file exceeds the upload limit"})
	case errors.Is(err, common.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
	default:
		s.logger.Error("server.request.failed", "req_id", reqID, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to process document"})
	}
}
