package server

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/healthtrack/prescription-extractor/constants"
	"github.com/healthtrack/prescription-extractor/internal/common"
	"github.com/healthtrack/prescription-extractor/internal/extract"
)

// readUpload pulls the "file" part into memory and enforces the boundary
// rules: size cap and media-type allow list. The pipeline is never invoked
// with input that fails these checks.
func (s *Server) readUpload(c *gin.Context) (extract.UploadedFile, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return extract.UploadedFile{}, common.NewAppError("UPLOAD_MISSING", "missing file field", common.ErrInvalidInput)
	}
	if header.Size > s.cfg.MaxUploadBytes {
		return extract.UploadedFile{}, common.NewAppError("UPLOAD_TOO_LARGE", "upload exceeds cap", common.ErrFileTooLarge)
	}

	ext := constants.NormalizeExt(filepath.Ext(header.Filename))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return extract.UploadedFile{}, common.NewAppError("UPLOAD_TYPE", "extension not allowed", common.ErrUnsupportedMediaType)
	}

	mediaType := header.Header.Get("Content-Type")
	if mediaType == "" {
		mediaType = mime.TypeByExtension("." + ext)
	}
	if _, ok := constants.AllowedMediaTypes[mediaType]; !ok {
		return extract.UploadedFile{}, common.NewAppError("UPLOAD_TYPE", "media type not allowed", common.ErrUnsupportedMediaType)
	}

	f, err := header.Open()
	if err != nil {
		return extract.UploadedFile{}, common.NewAppError("UPLOAD_READ", "opening upload", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return extract.UploadedFile{}, common.NewAppError("UPLOAD_READ", "reading upload", err)
	}

	return extract.UploadedFile{Data: data, MediaType: mediaType, Filename: header.Filename}, nil
}

// handleAnalyze is the in-memory analysis flow: nothing is persisted.
func (s *Server) handleAnalyze(c *gin.Context) {
	file, err := s.readUpload(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	summary, err := s.analyzer.Analyze(c.Request.Context(), file)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// handleUpload is the vault flow: file to disk, index row to the store.
func (s *Server) handleUpload(c *gin.Context) {
	file, err := s.readUpload(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	doc, err := s.vault.Store(c.Request.Context(), file, c.PostForm("documentType"), c.PostForm("notes"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (s *Server) handleList(c *gin.Context) {
	docs, err := s.vault.List(c.Request.Context(), c.Query("documentType"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs, "total": len(docs)})
}

func (s *Server) handleDelete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		s.respondError(c, common.NewAppError("INVALID_ID", "malformed document id", common.ErrInvalidInput))
		return
	}
	if err := s.vault.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleExport(c *gin.Context) {
	data, err := s.exporter.ExportDocumentsXLSX(c.Request.Context(), c.Query("documentType"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	filename := "documents-" + time.Now().UTC().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
