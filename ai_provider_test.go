package scam_detector

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
)

func TestParseModelSpec(t *testing.T) {
	tests := []struct {
		name            string
		raw             string
		defaultProvider string
		want            ModelSpec
	}{
		{
			name:            "bare model uses default provider",
			raw:             "gemini-2.0-flash",
			defaultProvider: "gemini",
			want:            ModelSpec{Provider: "gemini", Model: "gemini-2.0-flash"},
		},
		{
			name:            "provider prefix is trimmed and lowercased",
			raw:             " OpenAI : gpt-4o ",
			defaultProvider: "gemini",
			want:            ModelSpec{Provider: "openai", Model: "gpt-4o"},
		},
		{
			name:            "empty model falls back to provider default",
			raw:             "",
			defaultProvider: "openai",
			want:            ModelSpec{Provider: "openai", Model: defaultOpenAIModel},
		},
		{
			name:            "nothing configured",
			raw:             "",
			defaultProvider: "",
			want:            ModelSpec{Provider: "gemini", Model: defaultGeminiModel},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseModelSpec(tt.raw, tt.defaultProvider)
			if got != tt.want {
				t.Fatalf("parseModelSpec(%q, %q) = %+v, want %+v", tt.raw, tt.defaultProvider, got, tt.want)
			}
		})
	}
}

func TestNewGenerator(t *testing.T) {
	t.Run("gemini from well-known env var", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "g-key")

		gen, spec, err := NewGenerator(Config{Provider: "gemini"})
		if err != nil {
			t.Fatalf("NewGenerator returned error: %v", err)
		}
		gemini, ok := gen.(*GeminiGenerator)
		if !ok {
			t.Fatalf("expected *GeminiGenerator, got %T", gen)
		}
		if gemini.apiKey != "g-key" || spec.String() != "gemini:"+defaultGeminiModel {
			t.Fatalf("unexpected generator %+v / %s", gemini, spec)
		}
	})

	t.Run("model prefix selects openai", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")

		gen, spec, err := NewGenerator(Config{Provider: "gemini", Model: "openai:gpt-4o", APIKey: "explicit", BaseURL: "http://localhost/v1/responses"})
		if err != nil {
			t.Fatalf("NewGenerator returned error: %v", err)
		}
		openAI, ok := gen.(*OpenAIGenerator)
		if !ok {
			t.Fatalf("expected *OpenAIGenerator, got %T", gen)
		}
		if openAI.apiKey != "explicit" || openAI.model != "gpt-4o" || openAI.baseURL != "http://localhost/v1/responses" {
			t.Fatalf("unexpected generator %+v", openAI)
		}
		if spec.Provider != "openai" {
			t.Fatalf("spec = %+v", spec)
		}
	})

	t.Run("missing api key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")

		_, _, err := NewGenerator(Config{Provider: "openai"})
		if !errors.Is(err, ErrMissingAPIKey) {
			t.Fatalf("expected ErrMissingAPIKey, got %v", err)
		}
	})

	t.Run("unsupported provider", func(t *testing.T) {
		_, _, err := NewGenerator(Config{Provider: "anthropic"})
		if err == nil {
			t.Fatal("expected error for unsupported provider")
		}
	})
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "network error", err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}, want: true},
		{name: "timeout status", err: &APIError{StatusCode: 408}, want: true},
		{name: "wrapped 502", err: fmt.Errorf("call: %w", &APIError{StatusCode: 502}), want: true},
		{name: "forbidden", err: &APIError{StatusCode: 403}, want: false},
		{name: "schema failure", err: &SchemaError{Fields: []string{"label"}, Err: errors.New("label: field required")}, want: false},
		{name: "cancelled", err: fmt.Errorf("request: %w", context.Canceled), want: false},
		{name: "empty message", err: ErrEmptyMessage, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTransient(tt.err); got != tt.want {
				t.Fatalf("isTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
