package documents

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/healthtrack/prescription-extractor/internal/common"
	"github.com/healthtrack/prescription-extractor/internal/extract"
	"github.com/healthtrack/prescription-extractor/internal/repository"
)

func testService(t *testing.T) (*Service, string) {
	t.Helper()
	db, err := repository.Open(context.Background(), repository.Config{DSN: ":memory:", DialTimeout: time.Second}, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { repository.Close(db, nil) })
	dir := t.TempDir()
	return NewService(repository.NewDocumentRepository(db), dir, nil), dir
}

func TestStoreWritesFileAndIndex(t *testing.T) {
	svc, dir := testService(t)
	file := extract.UploadedFile{Data: []byte("%PDF-1.4 data"), MediaType: "application/pdf", Filename: "report.pdf"}

	doc, err := svc.Store(context.Background(), file, "lab_report", "fasting panel")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if doc.DocumentType != "lab_report" || doc.FileName != "report.pdf" || doc.FileSize != int64(len(file.Data)) {
		t.Errorf("doc = %+v", doc)
	}
	base := filepath.Base(doc.StoredPath)
	if !strings.HasPrefix(base, "doc-") || !strings.HasSuffix(base, ".pdf") {
		t.Errorf("stored name = %q", base)
	}
	data, err := os.ReadFile(doc.StoredPath)
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "%PDF-1.4 data" {
		t.Errorf("stored content mismatch")
	}
	if filepath.Dir(doc.StoredPath) != dir {
		t.Errorf("stored outside uploads dir: %q", doc.StoredPath)
	}
}

func TestStoreDefaultsDocumentType(t *testing.T) {
	svc, _ := testService(t)
	doc, err := svc.Store(context.Background(), extract.UploadedFile{Data: []byte("x"), Filename: "a.jpg"}, "", "")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if doc.DocumentType != "other" {
		t.Errorf("DocumentType = %q", doc.DocumentType)
	}
}

func TestStoreRejectsUnknownType(t *testing.T) {
	svc, _ := testService(t)
	_, err := svc.Store(context.Background(), extract.UploadedFile{Data: []byte("x"), Filename: "a.jpg"}, "selfie", "")
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestDeleteRemovesFile(t *testing.T) {
	svc, _ := testService(t)
	doc, err := svc.Store(context.Background(), extract.UploadedFile{Data: []byte("x"), Filename: "a.png"}, "scan", "")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := svc.Delete(context.Background(), doc.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(doc.StoredPath); !os.IsNotExist(err) {
		t.Errorf("stored file still present after delete")
	}
	if _, err := svc.List(context.Background(), ""); err != nil {
		t.Fatalf("List: %v", err)
	}
}
