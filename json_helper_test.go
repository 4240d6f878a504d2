package scam_detector

import (
	"encoding/json"
	"testing"
)

func TestTextContentUnmarshalString(t *testing.T) {
	var tc TextContent
	if err := json.Unmarshal([]byte(`"hello world"`), &tc); err != nil {
		t.Fatalf("json.Unmarshal returned error: %v", err)
	}

	if tc.Value != "hello world" {
		t.Fatalf("Value = %q, want %q", tc.Value, "hello world")
	}
	if tc.Parsed != nil {
		t.Fatalf("Parsed = %v, want nil", tc.Parsed)
	}
}

func TestTextContentUnmarshalObject(t *testing.T) {
	raw := `{"text":"hey there","parsed":{"label":"Scam"}}`

	var tc TextContent
	if err := json.Unmarshal([]byte(raw), &tc); err != nil {
		t.Fatalf("json.Unmarshal returned error: %v", err)
	}

	if tc.Value != "hey there" {
		t.Fatalf("Value = %q, want %q", tc.Value, "hey there")
	}

	var parsed map[string]string
	if err := json.Unmarshal(tc.Parsed, &parsed); err != nil {
		t.Fatalf("failed to unmarshal Parsed: %v", err)
	}
	if parsed["label"] != "Scam" {
		t.Fatalf("parsed label = %q, want %q", parsed["label"], "Scam")
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{raw: "```\n{\"a\":1}```", want: `{"a":1}`},
		{raw: "  {\"a\":1}  ", want: `{"a":1}`},
	}

	for _, tt := range tests {
		if got := stripCodeFence(tt.raw); got != tt.want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "bare object", raw: ` {"a":1} `, want: `{"a":1}`},
		{name: "fenced", raw: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "preamble and fence", raw: "Here you go: ```json\n{\"a\":{\"b\":2}}\n```", want: `{"a":{"b":2}}`},
		{name: "trailing prose", raw: `Verdict: {"a":1} Hope this helps.`, want: `{"a":1}`},
		{name: "array is left alone", raw: `[{"a":1}]`, want: `[{"a":1}]`},
		{name: "no object", raw: "I think this is a scam.", want: "I think this is a scam."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSONObject(tt.raw); got != tt.want {
				t.Errorf("extractJSONObject(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
