package llm

import "strings"

// BuildPrompt composes the extraction instruction sent with the image. The
// request id is embedded for tracing and dedup in provider logs; the schema is
// enumerated inline so the model returns the exact field names we decode.
func BuildPrompt(requestID string) string {
	lines := []string{
		"RequestId: " + requestID,
		"You are a medical prescription extractor.",
		"The prescription may be handwritten.",
		"Return ONLY valid JSON. No markdown, no extra text.",
		"JSON schema:",
		"{",
		`  "patientName": string,`,
		`  "doctorName": string,`,
		`  "hospitalName": string,`,
		`  "reason": string,`,
		`  "medicines": [`,
		`    { "medicineName": string, "dosage": string, "days": string|number }`,
		"  ]",
		"}",
		"Rules:",
		`- Use "Not found" if unknown.`,
		"- medicines must be row-wise and correctly mapped.",
		`- dosage examples: "1-0-1", "OD", "BD", "TID", "500mg BD".`,
		"- days must be just the count of days (number) if possible.",
	}
	return strings.Join(lines, "\n")
}
