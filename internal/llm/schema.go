package llm

// BuildSummaryJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. Validation is deliberately loose: the model response only has
// to look like a summary object; sentinel defaults and row filtering happen in
// the shared shape normalization afterwards.
func BuildSummaryJSONSchema() map[string]any {
	stringish := map[string]any{"type": []string{"string", "number"}}
	row := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"medicineName": map[string]any{"type": "string"},
			"dosage":       stringish,
			"days":         stringish,
		},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"patientName":  map[string]any{"type": "string"},
			"doctorName":   map[string]any{"type": "string"},
			"hospitalName": map[string]any{"type": "string"},
			"reason":       map[string]any{"type": "string"},
			"medicines": map[string]any{
				"type":  "array",
				"items": row,
			},
		},
	}
}
