package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/healthtrack/prescription-extractor/internal/common"
)

func testRepo(t *testing.T) DocumentRepository {
	t.Helper()
	db, err := Open(context.Background(), Config{DSN: ":memory:", DialTimeout: time.Second}, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { Close(db, nil) })
	return NewDocumentRepository(db)
}

func TestDocumentRoundTrip(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	doc := &Document{
		DocumentType: "prescription",
		FileName:     "rx.jpg",
		StoredPath:   "/tmp/uploads/doc-1-1.jpg",
		FileSize:     1234,
		Notes:        "post surgery",
	}
	if err := repo.Create(ctx, doc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if doc.ID == uuid.Nil {
		t.Fatal("Create must assign an id")
	}

	got, err := repo.GetByID(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.FileName != "rx.jpg" || got.DocumentType != "prescription" || got.FileSize != 1234 {
		t.Errorf("got %+v", got)
	}

	if err := repo.Delete(ctx, doc.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, doc.ID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetByID after delete: err = %v, want ErrNotFound", err)
	}
}

func TestDocumentListFilterAndOrder(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	older := &Document{DocumentType: "prescription", FileName: "a.pdf", StoredPath: "a", UploadedAt: time.Now().UTC().Add(-time.Hour)}
	newer := &Document{DocumentType: "prescription", FileName: "b.pdf", StoredPath: "b", UploadedAt: time.Now().UTC()}
	other := &Document{DocumentType: "lab_report", FileName: "c.pdf", StoredPath: "c", UploadedAt: time.Now().UTC().Add(-time.Minute)}
	for _, d := range []*Document{older, newer, other} {
		if err := repo.Create(ctx, d); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	all, err := repo.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d", len(all))
	}
	if all[0].FileName != "b.pdf" {
		t.Errorf("newest first, got %q", all[0].FileName)
	}

	rx, err := repo.List(ctx, "prescription")
	if err != nil {
		t.Fatalf("List filtered: %v", err)
	}
	if len(rx) != 2 {
		t.Errorf("len(rx) = %d, want 2", len(rx))
	}
}

func TestDocumentDeleteMissing(t *testing.T) {
	repo := testRepo(t)
	if err := repo.Delete(context.Background(), uuid.New()); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
