package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/healthtrack/prescription-extractor/internal/common"
)

var reCodeFence = regexp.MustCompile("(?is)^```(?:json)?\\s*(.*?)\\s*```$")

// StripCodeFences unwraps a Markdown-fenced payload; anything else is
// returned trimmed.
func StripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if m := reCodeFence.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}
	return trimmed
}

// ParseSummaryPayload decodes the model's raw text into a loosely-typed map
// and checks it against the summary schema. Any failure means the response is
// unusable and the caller should fall back.
func ParseSummaryPayload(text string) (map[string]any, error) {
	payload := StripCodeFences(text)
	if payload == "" {
		return nil, common.WrapError(common.ErrModelResponseUnparseable, "empty response")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrModelResponseUnparseable, err)
	}
	if err := ValidateJSONAgainstSchema(BuildSummaryJSONSchema(), []byte(payload)); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrModelResponseUnparseable, err)
	}
	return m, nil
}
