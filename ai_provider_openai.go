package scam_detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultOpenAIModel = "gpt-5-mini"
	openAIResponsesURL = "https://api.openai.com/v1/responses"
)

// OpenAIGenerator calls the OpenAI Responses API with a strict JSON schema.
type OpenAIGenerator struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewOpenAIGenerator(apiKey, model string, timeout time.Duration) *OpenAIGenerator {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OpenAIGenerator{
		apiKey:  apiKey,
		model:   model,
		baseURL: openAIResponsesURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func newOpenAIFromConfig(cfg Config, model string) (Generator, error) {
	apiKey := cfg.apiKeyFor(providerOpenAI)
	if apiKey == "" {
		return nil, fmt.Errorf("openai: %w (OPENAI_API_KEY)", ErrMissingAPIKey)
	}
	gen := NewOpenAIGenerator(apiKey, model, cfg.RequestTimeout)
	if cfg.BaseURL != "" {
		gen.baseURL = cfg.BaseURL
	}
	return gen, nil
}

func (o *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if o.apiKey == "" {
		return "", fmt.Errorf("openai: %w", ErrMissingAPIKey)
	}

	requestBody := map[string]interface{}{
		"model": o.model,
		"input": prompt,
		"text": map[string]interface{}{
			"format": map[string]interface{}{
				"type":   "json_schema",
				"name":   "ScamDetectionOutput",
				"strict": true,
				"schema": map[string]interface{}{
					"type":     "object",
					"required": []string{"label", "reasoning", "intent", "risk_factors"},
					"properties": map[string]interface{}{
						"label": map[string]interface{}{
							"type": "string",
							"enum": []string{string(LabelScam), string(LabelNotScam), string(LabelUncertain)},
						},
						"reasoning": map[string]interface{}{
							"type": "string",
						},
						"intent": map[string]interface{}{
							"type": "string",
						},
						"risk_factors": map[string]interface{}{
							"type":  "array",
							"items": map[string]interface{}{"type": "string"},
						},
					},
					"additionalProperties": false,
				},
			},
		},
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return "", &APIError{Provider: "OpenAI", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var openAIResp OpenAIResponse
	if err := json.Unmarshal(respBody, &openAIResp); err != nil {
		return "", fmt.Errorf("failed to parse OpenAI response: %w", err)
	}

	return openAIOutputText(openAIResp)
}

// openAIOutputText collects the answer from output_text, message parts or the
// parsed payload, in that order.
func openAIOutputText(openAIResp OpenAIResponse) (string, error) {
	text := openAIResp.OutputText

	if text == "" && len(openAIResp.Output) > 0 {
		var buf []string
		for _, item := range openAIResp.Output {
			if item.Type == "message" {
				for _, c := range item.Content {
					if c.Type == "output_text" && c.Text.Value != "" {
						buf = append(buf, c.Text.Value)
					}
				}
			}
		}
		text = strings.Join(buf, "\n")
	}

	if text == "" {
		for _, item := range openAIResp.Output {
			for _, c := range item.Content {
				if len(c.Text.Parsed) > 0 {
					return string(c.Text.Parsed), nil
				}
			}
		}
	}

	if text == "" {
		return "", fmt.Errorf("openai: %w", errEmptyResponse)
	}

	return text, nil
}
