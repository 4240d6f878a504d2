package scam_detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultGeminiModel   = "gemini-2.5-flash"
	geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
)

// GeminiGenerator calls the Gemini generateContent endpoint with a response schema.
type GeminiGenerator struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewGeminiGenerator(apiKey, model string, timeout time.Duration) *GeminiGenerator {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &GeminiGenerator{
		apiKey:  apiKey,
		model:   model,
		baseURL: geminiDefaultBaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func newGeminiFromConfig(cfg Config, model string) (Generator, error) {
	apiKey := cfg.apiKeyFor(providerGemini)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: %w (GEMINI_API_KEY)", ErrMissingAPIKey)
	}
	gen := NewGeminiGenerator(apiKey, model, cfg.RequestTimeout)
	if cfg.BaseURL != "" {
		gen.baseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	return gen, nil
}

// geminiResponseSchema mirrors ScamDetectionOutput in the OpenAPI subset Gemini accepts.
var geminiResponseSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"label": map[string]any{
			"type": "STRING",
			"enum": []string{string(LabelScam), string(LabelNotScam), string(LabelUncertain)},
		},
		"reasoning": map[string]any{"type": "STRING"},
		"intent":    map[string]any{"type": "STRING"},
		"risk_factors": map[string]any{
			"type":  "ARRAY",
			"items": map[string]any{"type": "STRING"},
		},
	},
	"required":         []string{"label", "reasoning", "intent", "risk_factors"},
	"propertyOrdering": []string{"label", "reasoning", "intent", "risk_factors"},
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("gemini: %w", ErrMissingAPIKey)
	}

	requestBody := map[string]any{
		"contents": []map[string]any{
			{
				"role":  "user",
				"parts": []map[string]string{{"text": prompt}},
			},
		},
		"generationConfig": map[string]any{
			"responseMimeType": "application/json",
			"responseSchema":   geminiResponseSchema,
		},
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("x-goog-api-key", g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return "", &APIError{Provider: "Gemini", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var geminiResp GeminiResponse
	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return "", fmt.Errorf("failed to parse Gemini response: %w", err)
	}

	if geminiResp.PromptFeedback != nil && geminiResp.PromptFeedback.BlockReason != "" {
		return "", &APIError{Provider: "Gemini", StatusCode: http.StatusBadRequest, Body: "prompt blocked: " + geminiResp.PromptFeedback.BlockReason}
	}

	var buf []string
	for _, candidate := range geminiResp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				buf = append(buf, part.Text)
			}
		}
		if len(buf) > 0 {
			break
		}
	}

	if len(buf) == 0 {
		return "", fmt.Errorf("gemini: %w", errEmptyResponse)
	}

	return strings.Join(buf, ""), nil
}
