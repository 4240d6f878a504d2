package scam_detector

import (
	"encoding/json"
	"strings"
)

// UnmarshalJSON supports string or object payloads from the OpenAI API.
func (t *TextContent) UnmarshalJSON(data []byte) error {
	*t = TextContent{}

	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.Value = s
		return nil
	}

	var obj struct {
		Value  string          `json:"value,omitempty"`
		Text   string          `json:"text,omitempty"`
		Parsed json.RawMessage `json:"parsed,omitempty"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	if obj.Value != "" {
		t.Value = obj.Value
	} else {
		t.Value = obj.Text
	}
	t.Parsed = obj.Parsed
	return nil
}

// stripCodeFence removes a surrounding ```json ... ``` block that models like to add.
func stripCodeFence(raw string) string {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```JSON")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}

// extractJSONObject strips code fences and, when the reply has text around
// the object, keeps the span from the first '{' to the last '}'.
func extractJSONObject(raw string) string {
	clean := stripCodeFence(raw)
	if strings.HasPrefix(clean, "{") || strings.HasPrefix(clean, "[") {
		return clean
	}
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start == -1 || end <= start {
		return clean
	}
	return clean[start : end+1]
}
