package scam_detector

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Generator sends a prompt to a remote text-generation endpoint and returns
// the raw response text. Implementations make exactly one attempt; retries
// belong to the Executor.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrMissingAPIKey is returned when a provider has no API key configured.
var ErrMissingAPIKey = errors.New("API key not set")

// errEmptyResponse is returned when the provider answered without any text.
var errEmptyResponse = errors.New("no text found in model response")

// APIError is a non-2xx answer from a provider.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Transient reports whether repeating the same request may succeed.
func (e *APIError) Transient() bool {
	return e.StatusCode == 408 || e.StatusCode == 429 || e.StatusCode >= 500
}

// isTransient decides whether the executor may retry err. Call failures are
// retried unless they are known to be permanent.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Transient()
	}
	switch {
	case errors.Is(err, ErrMissingAPIKey),
		errors.Is(err, ErrSchemaValidation),
		errors.Is(err, ErrUnsupportedStrategy),
		errors.Is(err, ErrEmptyMessage),
		errors.Is(err, context.Canceled):
		return false
	}
	return true
}

type generatorFactory func(cfg Config, model string) (Generator, error)

var providerFactories = map[string]generatorFactory{
	providerGemini: newGeminiFromConfig,
	providerOpenAI: newOpenAIFromConfig,
}

const (
	providerGemini = "gemini"
	providerOpenAI = "openai"
)

// ModelSpec identifies a provider and one of its models.
type ModelSpec struct {
	Provider string
	Model    string
}

func (m ModelSpec) String() string {
	return m.Provider + ":" + m.Model
}

// parseModelSpec reads "provider:model". A bare model uses defaultProvider.
func parseModelSpec(raw, defaultProvider string) ModelSpec {
	raw = strings.TrimSpace(raw)
	provider := strings.ToLower(strings.TrimSpace(defaultProvider))
	model := raw
	if idx := strings.Index(raw, ":"); idx != -1 {
		provider = strings.ToLower(strings.TrimSpace(raw[:idx]))
		model = strings.TrimSpace(raw[idx+1:])
	}

	if provider == "" {
		provider = providerGemini
	}
	if model == "" {
		model = defaultModelFor(provider)
	}

	return ModelSpec{Provider: provider, Model: model}
}

func defaultModelFor(provider string) string {
	if provider == providerOpenAI {
		return defaultOpenAIModel
	}
	return defaultGeminiModel
}

// NewGenerator builds the generator for cfg.Provider / cfg.Model.
func NewGenerator(cfg Config) (Generator, ModelSpec, error) {
	spec := parseModelSpec(cfg.Model, cfg.Provider)
	factory, ok := providerFactories[spec.Provider]
	if !ok {
		return nil, spec, fmt.Errorf("unsupported provider %s", spec.Provider)
	}
	gen, err := factory(cfg, spec.Model)
	if err != nil {
		return nil, spec, err
	}
	return gen, spec, nil
}
