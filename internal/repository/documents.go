package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/healthtrack/prescription-extractor/internal/common"
)

// Document is one stored vault entry. The file itself lives on disk at
// StoredPath; this row is the index.
type Document struct {
	ID           uuid.UUID `json:"id"`
	DocumentType string    `json:"documentType"`
	FileName     string    `json:"fileName"`
	StoredPath   string    `json:"-"`
	FileSize     int64     `json:"fileSize"`
	Notes        string    `json:"notes"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

type DocumentRepository interface {
	Create(ctx context.Context, doc *Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*Document, error)
	// List returns documents newest first, optionally filtered by type.
	List(ctx context.Context, documentType string) ([]Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type sqliteDocuments struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) DocumentRepository {
	return &sqliteDocuments{db: db}
}

func (r *sqliteDocuments) Create(ctx context.Context, doc *Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO medical_documents (id, document_type, file_name, stored_path, file_size, notes, uploaded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		doc.ID.String(), doc.DocumentType, doc.FileName, doc.StoredPath, doc.FileSize, doc.Notes, doc.UploadedAt,
	)
	if err != nil {
		return common.NewAppError("DB_INSERT", "inserting document", err)
	}
	return nil
}

func (r *sqliteDocuments) GetByID(ctx context.Context, id uuid.UUID) (*Document, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, document_type, file_name, stored_path, file_size, notes, uploaded_at
		 FROM medical_documents WHERE id = ?`, id.String())
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.NewAppError("DB_QUERY", "loading document", err)
	}
	return doc, nil
}

func (r *sqliteDocuments) List(ctx context.Context, documentType string) ([]Document, error) {
	query := `SELECT id, document_type, file_name, stored_path, file_size, notes, uploaded_at
		 FROM medical_documents`
	args := []any{}
	if documentType != "" {
		query += ` WHERE document_type = ?`
		args = append(args, documentType)
	}
	query += ` ORDER BY uploaded_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewAppError("DB_QUERY", "listing documents", err)
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, common.NewAppError("DB_SCAN", "scanning document row", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError("DB_QUERY", "iterating documents", err)
	}
	return docs, nil
}

func (r *sqliteDocuments) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM medical_documents WHERE id = ?`, id.String())
	if err != nil {
		return common.NewAppError("DB_DELETE", "deleting document", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(s rowScanner) (*Document, error) {
	var doc Document
	var id string
	if err := s.Scan(&id, &doc.DocumentType, &doc.FileName, &doc.StoredPath, &doc.FileSize, &doc.Notes, &doc.UploadedAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	doc.ID = parsed
	return &doc, nil
}
