package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var reFirstNumber = regexp.MustCompile(`\d+`)

// NormalizeDays reduces a duration value to its bare numeric count.
// "5 days" -> "5", "2 weeks" -> "2", 7 -> "7". Anything without a digit
// collapses to the sentinel.
func NormalizeDays(value any) string {
	s := strings.TrimSpace(stringify(value))
	if s == "" {
		return NotFound
	}
	if m := reFirstNumber.FindString(s); m != "" {
		return m
	}
	return NotFound
}

// EnsureShape is the single source of truth for the output contract: sentinel
// defaults, trimmed fields, day normalization, row filtering and the row cap.
// It accepts both the loosely-typed decode of a model response and an
// already-typed summary, so every extraction path funnels through it.
func EnsureShape(value any) ExtractionSummary {
	switch v := value.(type) {
	case ExtractionSummary:
		return shapeTyped(v)
	case *ExtractionSummary:
		if v == nil {
			return shapeTyped(ExtractionSummary{})
		}
		return shapeTyped(*v)
	case map[string]any:
		return shapeLoose(v)
	default:
		return shapeTyped(ExtractionSummary{})
	}
}

func shapeTyped(s ExtractionSummary) ExtractionSummary {
	out := ExtractionSummary{
		PatientName:  fieldOrNotFound(s.PatientName),
		DoctorName:   fieldOrNotFound(s.DoctorName),
		HospitalName: fieldOrNotFound(s.HospitalName),
		Reason:       fieldOrNotFound(s.Reason),
		Medicines:    make([]MedicineRow, 0, len(s.Medicines)),
	}
	for _, m := range s.Medicines {
		row := MedicineRow{
			MedicineName: fieldOrNotFound(m.MedicineName),
			Dosage:       fieldOrNotFound(m.Dosage),
			Days:         NormalizeDays(m.Days),
		}
		if keepRow(row) {
			out.Medicines = append(out.Medicines, row)
		}
		if len(out.Medicines) == MaxMedicineRows {
			break
		}
	}
	return out
}

func shapeLoose(m map[string]any) ExtractionSummary {
	out := ExtractionSummary{
		PatientName:  fieldOrNotFound(stringify(m["patientName"])),
		DoctorName:   fieldOrNotFound(stringify(m["doctorName"])),
		HospitalName: fieldOrNotFound(stringify(m["hospitalName"])),
		Reason:       fieldOrNotFound(stringify(m["reason"])),
		Medicines:    []MedicineRow{},
	}
	rows, _ := m["medicines"].([]any)
	for _, r := range rows {
		rm, _ := r.(map[string]any)
		row := MedicineRow{
			MedicineName: fieldOrNotFound(stringify(rm["medicineName"])),
			Dosage:       fieldOrNotFound(stringify(rm["dosage"])),
			Days:         NormalizeDays(rm["days"]),
		}
		if keepRow(row) {
			out.Medicines = append(out.Medicines, row)
		}
		if len(out.Medicines) == MaxMedicineRows {
			break
		}
	}
	return out
}

// keepRow drops rows where every field is the sentinel.
func keepRow(r MedicineRow) bool {
	return r.MedicineName != NotFound || r.Dosage != NotFound || r.Days != NotFound
}

func fieldOrNotFound(s string) string {
	if t := strings.TrimSpace(s); t != "" {
		return t
	}
	return NotFound
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
