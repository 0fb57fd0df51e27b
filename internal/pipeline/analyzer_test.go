package pipeline

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/healthtrack/prescription-extractor/internal/common"
	"github.com/healthtrack/prescription-extractor/internal/extract"
)

type stubVision struct {
	summary *extract.ExtractionSummary
	err     error
	calls   int
}

func (s *stubVision) ExtractSummary(context.Context, []byte) (*extract.ExtractionSummary, error) {
	s.calls++
	return s.summary, s.err
}

type stubOCR struct {
	text  string
	err   error
	calls int
}

func (s *stubOCR) ExtractText(context.Context, []byte, string) (string, error) {
	s.calls++
	return s.text, s.err
}

func imageFile() extract.UploadedFile {
	return extract.UploadedFile{Data: []byte("img"), MediaType: "image/jpeg", Filename: "rx.jpg"}
}

func TestAnalyzeVisionSuccessSkipsOCR(t *testing.T) {
	want := extract.EnsureShape(extract.ExtractionSummary{PatientName: "Ravi"})
	vision := &stubVision{summary: &want}
	ocr := &stubOCR{text: "should never be used"}

	got, err := NewAnalyzer(vision, ocr, nil).Analyze(context.Background(), imageFile())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.PatientName != "Ravi" {
		t.Errorf("PatientName = %q", got.PatientName)
	}
	if ocr.calls != 0 {
		t.Errorf("OCR invoked %d times, want 0", ocr.calls)
	}
}

func TestAnalyzeVisionFailureFallsBack(t *testing.T) {
	vision := &stubVision{err: common.ErrModelResponseUnparseable}
	ocr := &stubOCR{text: "City Hospital\nDr. Rao\nTab Paracetamol 500mg BD x 5 days\n"}

	got, err := NewAnalyzer(vision, ocr, nil).Analyze(context.Background(), imageFile())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if vision.calls != 1 {
		t.Errorf("vision calls = %d, want 1", vision.calls)
	}
	if ocr.calls != 1 {
		t.Errorf("ocr calls = %d, want 1", ocr.calls)
	}
	if len(got.Medicines) != 1 {
		t.Errorf("Medicines = %+v", got.Medicines)
	}
}

func TestAnalyzeVisionNilResultFallsBack(t *testing.T) {
	vision := &stubVision{} // nil summary, nil error
	ocr := &stubOCR{text: "Dr. Mehta MD\n"}

	got, err := NewAnalyzer(vision, ocr, nil).Analyze(context.Background(), imageFile())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.DoctorName == extract.NotFound {
		t.Errorf("DoctorName = %q, want the doctor line", got.DoctorName)
	}
}

func TestAnalyzeUnconfiguredVisionNeverCalled(t *testing.T) {
	ocr := &stubOCR{text: "no structure here"}
	got, err := NewAnalyzer(nil, ocr, nil).Analyze(context.Background(), imageFile())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if ocr.calls != 1 {
		t.Errorf("ocr calls = %d, want 1", ocr.calls)
	}
	if got.PatientName != extract.NotFound {
		t.Errorf("PatientName = %q, want sentinel", got.PatientName)
	}
	if len(got.Medicines) != 0 {
		t.Errorf("Medicines = %+v, want none", got.Medicines)
	}
}

func TestAnalyzePDFSkipsVision(t *testing.T) {
	vision := &stubVision{summary: &extract.ExtractionSummary{PatientName: "never"}}
	ocr := &stubOCR{text: "Dr. Sharma\nCity Hospital\n"}
	file := extract.UploadedFile{Data: []byte("%PDF"), MediaType: "application/pdf", Filename: "rx.pdf"}

	_, err := NewAnalyzer(vision, ocr, nil).Analyze(context.Background(), file)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if vision.calls != 0 {
		t.Errorf("vision invoked %d times for a PDF, want 0", vision.calls)
	}
}

func TestAnalyzeOCRFailureIsGeneric(t *testing.T) {
	ocr := &stubOCR{err: errors.New("tesseract blew up with internal detail")}
	_, err := NewAnalyzer(nil, ocr, nil).Analyze(context.Background(), imageFile())
	if err == nil {
		t.Fatal("want terminal failure")
	}
	if !errors.Is(err, common.ErrExtractionFailed) {
		t.Errorf("err = %v, want ErrExtractionFailed", err)
	}
	var appErr *common.AppError
	if errors.As(err, &appErr) && appErr.Cause != nil {
		if appErr.Cause.Error() != common.ErrExtractionFailed.Error() {
			t.Errorf("cause leaks provider detail: %v", appErr.Cause)
		}
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	ocr := &stubOCR{text: "City Hospital\nDr. Rao\nTab Cetirizine 10mg HS x 7 days\n"}
	a := NewAnalyzer(nil, ocr, nil)
	first, err := a.Analyze(context.Background(), imageFile())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	second, err := a.Analyze(context.Background(), imageFile())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ:\n%+v\n%+v", first, second)
	}
}
