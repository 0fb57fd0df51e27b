// Package parse turns raw recognized text into a structured prescription
// summary using vocabulary and pattern heuristics. It is the fallback when no
// vision model is available; it never performs I/O.
package parse

import (
	"regexp"
	"strings"

	"github.com/healthtrack/prescription-extractor/internal/extract"
)

const (
	// maxLines bounds line scanning against pathological recognition output.
	maxLines = 80
	// headerLines is the region where hospital/doctor/patient identification
	// is most likely to appear.
	headerLines = 12
	// maxNameTokens caps the cleaned medicine name length.
	maxNameTokens = 5
)

var (
	reWhitespace = regexp.MustCompile(`\s+`)

	reHospitalVocab = regexp.MustCompile(`(?i)\b(hospital|clinic|medical|centre|center|pharmacy|dispensary)\b`)
	reDoctorVocab   = regexp.MustCompile(`(?i)\bdr\.?\b|\b(doctor|mbbs|md|ms|bds)\b`)

	rePatientLabel  = regexp.MustCompile(`(?i)^\s*(patient\s*name|patient|name)\s*[:\-]\s*`)
	rePatientVocab  = regexp.MustCompile(`(?i)\b(patient|pt)\b`)
	reCourtesyTitle = regexp.MustCompile(`(?i)\b(mr|mrs|ms|miss|master)\.?\s+\S`)

	reReasonLabel = regexp.MustCompile(`(?i)\b(chief\s+complaint|c/o|dx|diagnosis|diag|complaint|indication|for)\b`)

	reFrequency = regexp.MustCompile(`(?i)\b(od|bd|tid|qid|hs|sos|stat)\b`)
	reTriSlot   = regexp.MustCompile(`\b\d+\s*-\s*\d+\s*-\s*\d+\b`)
	reStrength  = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s*(?:mg|ml)\b`)
	reMedWord   = regexp.MustCompile(`(?i)\b(tab|tablet|cap|capsule|syrup|inj|injection|mg|ml)\b`)

	reDuration   = regexp.MustCompile(`(?i)(?:x\s*)?(\d+)\s*(?:days?|weeks?|months?)\b`)
	reNoiseToken = regexp.MustCompile(`(?i)\b(rx|prescription|diagnosis|dx|sig|take|daily|morning|night)\b`)

	reNamePunct     = regexp.MustCompile(`[^a-zA-Z0-9\s.]`)
	reMedicinePunct = regexp.MustCompile(`[^a-zA-Z0-9\s.+\-]`)
)

// Summarize applies the heuristic rules to raw text and returns a normalized
// summary. Deterministic for identical input; the raw text itself never
// appears in the result.
func Summarize(rawText string) extract.ExtractionSummary {
	lines := splitLines(rawText)

	reasonIdx := -1
	summary := extract.ExtractionSummary{
		HospitalName: findHospital(lines),
		DoctorName:   findDoctor(lines),
		Reason:       extract.NotFound,
	}
	if reason, idx := findReason(lines); idx >= 0 {
		summary.Reason = reason
		reasonIdx = idx
	}
	summary.PatientName = findPatient(lines)
	summary.Medicines = collectMedicines(lines, rawText, reasonIdx)

	return extract.EnsureShape(summary)
}

// splitLines yields trimmed, non-empty lines capped at maxLines.
func splitLines(raw string) []string {
	var lines []string
	for _, l := range strings.Split(raw, "\n") {
		l = strings.TrimSpace(reWhitespace.ReplaceAllString(l, " "))
		if l == "" {
			continue
		}
		lines = append(lines, l)
		if len(lines) == maxLines {
			break
		}
	}
	return lines
}

func headerRegion(lines []string) []string {
	if len(lines) > headerLines {
		return lines[:headerLines]
	}
	return lines
}

func findHospital(lines []string) string {
	for _, l := range headerRegion(lines) {
		if reHospitalVocab.MatchString(l) {
			return l
		}
	}
	return extract.NotFound
}

func findDoctor(lines []string) string {
	for _, l := range headerRegion(lines) {
		if reDoctorVocab.MatchString(l) {
			return l
		}
	}
	return extract.NotFound
}

// findPatient tries labeled lines first, then patient vocabulary, then
// courtesy titles. Results still matching doctor or hospital vocabulary are
// rejected so header lines cannot leak in as a name.
func findPatient(lines []string) string {
	header := headerRegion(lines)

	for _, l := range lines {
		if rePatientLabel.MatchString(l) {
			if name := cleanPatientName(rePatientLabel.ReplaceAllString(l, "")); name != "" {
				return name
			}
		}
	}
	for _, l := range header {
		if rePatientVocab.MatchString(l) && !reDoctorVocab.MatchString(l) && !reHospitalVocab.MatchString(l) {
			if name := cleanPatientName(rePatientVocab.ReplaceAllString(l, "")); name != "" {
				return name
			}
		}
	}
	for _, l := range lines {
		if reCourtesyTitle.MatchString(l) && !reDoctorVocab.MatchString(l) && !reHospitalVocab.MatchString(l) {
			if name := cleanPatientName(l); name != "" {
				return name
			}
		}
	}
	return extract.NotFound
}

// cleanPatientName strips punctuation and re-checks for cross-contamination.
// Returns "" when the candidate is unusable.
func cleanPatientName(s string) string {
	s = reNamePunct.ReplaceAllString(s, " ")
	s = strings.TrimSpace(reWhitespace.ReplaceAllString(s, " "))
	if len(s) < 3 {
		return ""
	}
	if reDoctorVocab.MatchString(s) || reHospitalVocab.MatchString(s) {
		return ""
	}
	return s
}

func findReason(lines []string) (string, int) {
	for i, l := range lines {
		loc := reReasonLabel.FindStringIndex(l)
		if loc == nil {
			continue
		}
		rest := l[loc[1]:]
		rest = strings.TrimLeft(rest, " :.-")
		rest = reNamePunct.ReplaceAllString(rest, " ")
		rest = strings.TrimSpace(reWhitespace.ReplaceAllString(rest, " "))
		if rest == "" {
			continue
		}
		return rest, i
	}
	return extract.NotFound, -1
}

// hasDosagePattern reports a frequency code or a N-N-N slot pattern.
func hasDosagePattern(l string) bool {
	return reFrequency.MatchString(l) || reTriSlot.MatchString(l)
}

// hasMedicineHint reports medicine vocabulary or an attached strength like
// "500mg" that the word-boundary vocabulary match would miss.
func hasMedicineHint(l string) bool {
	return reMedWord.MatchString(l) || reStrength.MatchString(l)
}

func isHeaderLike(l string) bool {
	return reHospitalVocab.MatchString(l) ||
		reDoctorVocab.MatchString(l) ||
		rePatientLabel.MatchString(l) ||
		rePatientVocab.MatchString(l)
}

func collectMedicines(lines []string, rawText string, reasonIdx int) []extract.MedicineRow {
	var rows []extract.MedicineRow
	for i, l := range lines {
		if !hasDosagePattern(l) && !hasMedicineHint(l) {
			continue
		}
		if isHeaderLike(l) {
			continue
		}
		if i == reasonIdx && !hasMedicineHint(l) {
			continue
		}
		row := deriveRow(l, rawText)
		if row.MedicineName == extract.NotFound {
			continue
		}
		rows = append(rows, row)
		if len(rows) == extract.MaxMedicineRows {
			break
		}
	}
	return rows
}

// deriveRow extracts days, dosage and a cleaned medicine name from one
// candidate line.
func deriveRow(line, rawText string) extract.MedicineRow {
	row := extract.MedicineRow{
		MedicineName: extract.NotFound,
		Dosage:       extract.NotFound,
		Days:         extract.NotFound,
	}

	// Duration: the line first, then the whole text as a fallback.
	if m := reDuration.FindStringSubmatch(line); m != nil {
		row.Days = m[1]
	} else if m := reDuration.FindStringSubmatch(rawText); m != nil {
		row.Days = m[1]
	}

	// Dosage: strength then frequency/slot pattern, space-joined.
	var dosageParts []string
	if m := reStrength.FindString(line); m != "" {
		dosageParts = append(dosageParts, strings.TrimSpace(m))
	}
	if m := reFrequency.FindString(line); m != "" {
		dosageParts = append(dosageParts, strings.TrimSpace(m))
	} else if m := reTriSlot.FindString(line); m != "" {
		dosageParts = append(dosageParts, strings.TrimSpace(m))
	}
	if len(dosageParts) > 0 {
		row.Dosage = strings.Join(dosageParts, " ")
	}

	if name := cleanMedicineName(line); name != "" {
		row.MedicineName = name
	}
	return row
}

// cleanMedicineName removes everything already consumed by the other fields
// plus known noise, then keeps the first few remaining tokens.
func cleanMedicineName(line string) string {
	s := reNoiseToken.ReplaceAllString(line, " ")
	s = reDuration.ReplaceAllString(s, " ")
	s = reStrength.ReplaceAllString(s, " ")
	s = reTriSlot.ReplaceAllString(s, " ")
	s = reFrequency.ReplaceAllString(s, " ")
	s = reMedicinePunct.ReplaceAllString(s, " ")
	s = strings.TrimSpace(reWhitespace.ReplaceAllString(s, " "))
	if s == "" {
		return ""
	}
	tokens := strings.Fields(s)
	if len(tokens) > maxNameTokens {
		tokens = tokens[:maxNameTokens]
	}
	return strings.Join(tokens, " ")
}
