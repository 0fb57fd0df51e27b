package extract

// NotFound is the uniform placeholder for a field that could not be determined.
// Downstream consumers render it directly, so it is never empty or null.
const NotFound = "Not found"

// MaxMedicineRows bounds the medicines table in the final output.
const MaxMedicineRows = 12

// UploadedFile is the request-scoped descriptor handed to the pipeline.
// The analysis flow keeps it in memory only; it is never written to disk.
type UploadedFile struct {
	Data      []byte
	MediaType string
	Filename  string
}

// MedicineRow is one row of the extracted medicines table. Days, when known,
// holds only the numeric count with unit words stripped.
type MedicineRow struct {
	MedicineName string `json:"medicineName"`
	Dosage       string `json:"dosage"`
	Days         string `json:"days"`
}

// ExtractionSummary is the canonical pipeline output. Every field is either
// meaningful text or the NotFound sentinel; medicines preserve the order they
// were discovered in the source.
type ExtractionSummary struct {
	PatientName  string        `json:"patientName"`
	DoctorName   string        `json:"doctorName"`
	HospitalName string        `json:"hospitalName"`
	Reason       string        `json:"reason"`
	Medicines    []MedicineRow `json:"medicines"`
}

// OcrAttempt is a single recognition pass; kept only long enough to pick the
// best of several passes.
type OcrAttempt struct {
	Text       string
	Confidence float64
}
