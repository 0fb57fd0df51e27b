package parse

import (
	"strings"
	"testing"

	"github.com/healthtrack/prescription-extractor/internal/extract"
)

func TestSummarizeCleanPrescription(t *testing.T) {
	raw := "City Hospital\n" +
		"Dr. Sharma MBBS\n" +
		"Patient Name: Ravi Kumar\n" +
		"Dx: Viral fever\n" +
		"Tab Paracetamol 500mg BD x 5 days\n" +
		"Syrup Ambroxol 5ml TID 3 days\n"

	s := Summarize(raw)

	if !strings.Contains(s.HospitalName, "City Hospital") {
		t.Errorf("HospitalName = %q", s.HospitalName)
	}
	if !strings.Contains(s.DoctorName, "Dr. Sharma") {
		t.Errorf("DoctorName = %q", s.DoctorName)
	}
	if s.PatientName != "Ravi Kumar" {
		t.Errorf("PatientName = %q", s.PatientName)
	}
	if !strings.Contains(s.Reason, "Viral fever") {
		t.Errorf("Reason = %q", s.Reason)
	}
	if len(s.Medicines) != 2 {
		t.Fatalf("Medicines = %+v, want 2 rows", s.Medicines)
	}
	first := s.Medicines[0]
	if !strings.Contains(first.MedicineName, "Paracetamol") {
		t.Errorf("MedicineName = %q", first.MedicineName)
	}
	if !strings.Contains(first.Dosage, "500mg") || !strings.Contains(first.Dosage, "BD") {
		t.Errorf("Dosage = %q", first.Dosage)
	}
	if first.Days != "5" {
		t.Errorf("Days = %q", first.Days)
	}
	second := s.Medicines[1]
	if !strings.Contains(second.MedicineName, "Ambroxol") {
		t.Errorf("MedicineName = %q", second.MedicineName)
	}
	if second.Days != "3" {
		t.Errorf("Days = %q", second.Days)
	}
}

func TestSummarizeNoMedicines(t *testing.T) {
	raw := "Sunrise Clinic\nDr. Mehta MD\nFollow up visit notes\nRest advised\n"
	s := Summarize(raw)
	if len(s.Medicines) != 0 {
		t.Errorf("Medicines = %+v, want none", s.Medicines)
	}
	if s.HospitalName == extract.NotFound {
		t.Errorf("HospitalName should match the clinic line")
	}
	if s.PatientName != extract.NotFound {
		t.Errorf("PatientName = %q, want sentinel", s.PatientName)
	}
}

func TestSummarizeHeaderLinesNotMedicines(t *testing.T) {
	// The hospital line contains "medical" and "centre"; it must not be
	// promoted to a medicine row even though "ml" appears inside a word.
	raw := "Apollo Medical Centre Pharmacy\nTab Azithromycin 250mg OD\n"
	s := Summarize(raw)
	if len(s.Medicines) != 1 {
		t.Fatalf("Medicines = %+v, want 1", s.Medicines)
	}
	if !strings.Contains(s.Medicines[0].MedicineName, "Azithromycin") {
		t.Errorf("MedicineName = %q", s.Medicines[0].MedicineName)
	}
}

func TestSummarizePatientCourtesyTitle(t *testing.T) {
	raw := "General Hospital\nMr Arjun Rao\nCap Amoxicillin 500mg TID\n"
	s := Summarize(raw)
	if !strings.Contains(s.PatientName, "Arjun Rao") {
		t.Errorf("PatientName = %q", s.PatientName)
	}
}

func TestSummarizePatientCrossContaminationGuard(t *testing.T) {
	// A labeled line that still reads like a doctor line must not win.
	raw := "Name: Dr Gupta MBBS\n"
	s := Summarize(raw)
	if s.PatientName != extract.NotFound {
		t.Errorf("PatientName = %q, want sentinel", s.PatientName)
	}
}

func TestSummarizeWeeksKeepNumberOnly(t *testing.T) {
	raw := "Tab Metformin 500mg BD x 2 weeks\n"
	s := Summarize(raw)
	if len(s.Medicines) != 1 {
		t.Fatalf("Medicines = %+v", s.Medicines)
	}
	if s.Medicines[0].Days != "2" {
		t.Errorf("Days = %q, want unit stripped", s.Medicines[0].Days)
	}
}

func TestSummarizeTriSlotDosage(t *testing.T) {
	raw := "Tab Amlodipine 1-0-1\n"
	s := Summarize(raw)
	if len(s.Medicines) != 1 {
		t.Fatalf("Medicines = %+v", s.Medicines)
	}
	if !strings.Contains(s.Medicines[0].Dosage, "1-0-1") {
		t.Errorf("Dosage = %q", s.Medicines[0].Dosage)
	}
}

func TestSummarizeCapsAtTwelveRows(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		b.WriteString("Tab Medicine")
		b.WriteByte(byte('A' + i))
		b.WriteString(" 100mg OD\n")
	}
	s := Summarize(b.String())
	if len(s.Medicines) != extract.MaxMedicineRows {
		t.Errorf("len(Medicines) = %d, want %d", len(s.Medicines), extract.MaxMedicineRows)
	}
}

func TestSummarizeDeterministic(t *testing.T) {
	raw := "City Hospital\nDr. Rao\nTab Cetirizine 10mg HS x 7 days\n"
	a := Summarize(raw)
	b := Summarize(raw)
	if len(a.Medicines) != len(b.Medicines) || a.PatientName != b.PatientName ||
		a.DoctorName != b.DoctorName || a.HospitalName != b.HospitalName || a.Reason != b.Reason {
		t.Errorf("repeat runs differ: %+v vs %+v", a, b)
	}
	for i := range a.Medicines {
		if a.Medicines[i] != b.Medicines[i] {
			t.Errorf("row %d differs: %+v vs %+v", i, a.Medicines[i], b.Medicines[i])
		}
	}
}

func TestSummarizeLineCap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("noise line without patterns\n")
	}
	b.WriteString("Tab Paracetamol 500mg BD\n")
	s := Summarize(b.String())
	// The medicine line sits beyond the scan bound and must be ignored.
	if len(s.Medicines) != 0 {
		t.Errorf("Medicines = %+v, want none past the line cap", s.Medicines)
	}
}

func TestSummarizeEmptyInput(t *testing.T) {
	s := Summarize("")
	if s.PatientName != extract.NotFound || s.DoctorName != extract.NotFound ||
		s.HospitalName != extract.NotFound || s.Reason != extract.NotFound {
		t.Errorf("got %+v, want all sentinels", s)
	}
	if len(s.Medicines) != 0 {
		t.Errorf("Medicines = %+v", s.Medicines)
	}
}
