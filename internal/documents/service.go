// Package documents implements the vault flow: uploads persisted to disk with
// an index row in the store. It shares nothing with the in-memory analysis
// flow except the upload validation rules.
package documents

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/healthtrack/prescription-extractor/constants"
	"github.com/healthtrack/prescription-extractor/internal/common"
	"github.com/healthtrack/prescription-extractor/internal/extract"
	"github.com/healthtrack/prescription-extractor/internal/repository"
)

type Service struct {
	repo       repository.DocumentRepository
	uploadsDir string
	logger     *slog.Logger
}

func NewService(repo repository.DocumentRepository, uploadsDir string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, uploadsDir: uploadsDir, logger: logger}
}

// Store writes the upload under the uploads directory and records it.
func (s *Service) Store(ctx context.Context, file extract.UploadedFile, documentType, notes string) (*repository.Document, error) {
	if documentType == "" {
		documentType = constants.DefaultDocumentType
	}
	v := common.NewValidator()
	v.Field("documentType", documentType, common.DocumentType)
	v.Field("fileName", file.Filename, common.Required)
	if v.HasErrors() {
		return nil, common.NewAppError("INVALID_DOCUMENT", v.ErrorMessage(), common.ErrInvalidInput)
	}

	if err := os.MkdirAll(s.uploadsDir, 0o755); err != nil {
		return nil, common.NewAppError("STORE_FAILED", "creating uploads directory", err)
	}

	storedName := storedFileName(file.Filename)
	storedPath := filepath.Join(s.uploadsDir, storedName)
	if err := os.WriteFile(storedPath, file.Data, 0o644); err != nil {
		return nil, common.NewAppError("STORE_FAILED", "writing upload", err)
	}

	doc := &repository.Document{
		DocumentType: documentType,
		FileName:     file.Filename,
		StoredPath:   storedPath,
		FileSize:     int64(len(file.Data)),
		Notes:        notes,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		// Keep disk and index consistent.
		_ = os.Remove(storedPath)
		return nil, err
	}

	s.logger.Info("documents.store.ok",
		"req_id", common.RequestIDFromContext(ctx),
		"document_id", doc.ID.String(),
		"document_type", doc.DocumentType,
		"bytes", doc.FileSize,
	)
	return doc, nil
}

// List returns vault entries newest first, optionally filtered by type.
func (s *Service) List(ctx context.Context, documentType string) ([]repository.Document, error) {
	if documentType != "" && !constants.IsDocumentType(documentType) {
		return nil, common.NewAppError("INVALID_DOCUMENT", "unknown document type", common.ErrInvalidInput)
	}
	return s.repo.List(ctx, documentType)
}

// Delete removes the index row and then the file. A missing file is not an
// error; the index is authoritative.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := os.Remove(doc.StoredPath); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("documents.delete.file_cleanup_failed",
			"document_id", id.String(),
			"path", doc.StoredPath,
			"error", err,
		)
	}
	s.logger.Info("documents.delete.ok", "document_id", id.String())
	return nil
}

// storedFileName mirrors the original upload naming: doc-<millis>-<rand><ext>.
func storedFileName(original string) string {
	ext := filepath.Ext(original)
	return fmt.Sprintf("doc-%d-%09d%s", time.Now().UnixMilli(), rand.Intn(1_000_000_000), ext)
}
