package scam_detector

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	StrategyReact      = "react"
	StrategyFewShot    = "fewshot"
	StrategyStrictJSON = "strict_json"
	StrategySimplified = "simplified"

	defaultStrategy = StrategyReact

	// userMessageSeparator sits between the template and the message.
	userMessageSeparator = "\n\nUser Message:\n"
)

// ErrUnsupportedStrategy is returned for strategy names without a template.
var ErrUnsupportedStrategy = errors.New("unsupported strategy")

//go:embed prompts/*.md
var embeddedPrompts embed.FS

var supportedStrategies = []string{StrategyReact, StrategyFewShot, StrategyStrictJSON, StrategySimplified}

// PromptBuilder merges a strategy template with the message under analysis.
// Templates are read from dir when it contains <strategy>.md, otherwise the
// embedded copies are used.
type PromptBuilder struct {
	dir string
}

func NewPromptBuilder(dir string) *PromptBuilder {
	return &PromptBuilder{dir: strings.TrimSpace(dir)}
}

// Build returns the prompt for message using the given strategy.
// An empty strategy selects the ReAct template.
func (b *PromptBuilder) Build(message, strategy string) (string, error) {
	template, err := b.template(strategy)
	if err != nil {
		return "", err
	}
	return template + userMessageSeparator + strings.TrimSpace(message), nil
}

func (b *PromptBuilder) template(strategy string) (string, error) {
	strategy = strings.ToLower(strings.TrimSpace(strategy))
	if strategy == "" {
		strategy = defaultStrategy
	}
	if !isSupportedStrategy(strategy) {
		return "", fmt.Errorf("%w: %q is not supported yet", ErrUnsupportedStrategy, strategy)
	}

	name := strategy + ".md"
	if b != nil && b.dir != "" {
		data, err := os.ReadFile(filepath.Join(b.dir, name))
		if err == nil {
			return strings.TrimSpace(string(data)), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to read prompt template %s: %w", name, err)
		}
	}

	data, err := embeddedPrompts.ReadFile("prompts/" + name)
	if err != nil {
		return "", fmt.Errorf("failed to read embedded prompt template %s: %w", name, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// BuildPrompt builds a prompt from the embedded templates.
func BuildPrompt(message, strategy string) (string, error) {
	return NewPromptBuilder("").Build(message, strategy)
}

// SupportedStrategies lists the strategy names accepted by Build.
func SupportedStrategies() []string {
	return append([]string{}, supportedStrategies...)
}

func isSupportedStrategy(strategy string) bool {
	for _, s := range supportedStrategies {
		if s == strategy {
			return true
		}
	}
	return false
}
