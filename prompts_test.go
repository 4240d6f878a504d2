package scam_detector

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildPromptContainsTemplateAndTrimmedInput(t *testing.T) {
	for _, strategy := range SupportedStrategies() {
		t.Run(strategy, func(t *testing.T) {
			template, err := NewPromptBuilder("").template(strategy)
			if err != nil {
				t.Fatalf("template(%q) returned error: %v", strategy, err)
			}
			if template == "" {
				t.Fatalf("template for %q is empty", strategy)
			}

			prompt, err := BuildPrompt("  \n Click here to claim your prize!  \t", strategy)
			if err != nil {
				t.Fatalf("BuildPrompt returned error: %v", err)
			}

			if !strings.HasPrefix(prompt, template) {
				t.Fatalf("prompt does not start with the %s template", strategy)
			}
			if !strings.HasSuffix(prompt, "\n\nUser Message:\nClick here to claim your prize!") {
				t.Fatalf("prompt does not end with the trimmed message: %q", prompt[len(template):])
			}
		})
	}
}

func TestBuildPromptDefaultsToReact(t *testing.T) {
	withDefault, err := BuildPrompt("hello", "")
	if err != nil {
		t.Fatalf("BuildPrompt returned error: %v", err)
	}
	withReact, err := BuildPrompt("hello", "ReAct")
	if err != nil {
		t.Fatalf("BuildPrompt returned error: %v", err)
	}
	if withDefault != withReact {
		t.Fatal("empty strategy should use the react template")
	}
}

func TestBuildPromptUnsupportedStrategy(t *testing.T) {
	_, err := BuildPrompt("hello", "chain_of_density")
	if !errors.Is(err, ErrUnsupportedStrategy) {
		t.Fatalf("expected ErrUnsupportedStrategy, got %v", err)
	}
	if !strings.Contains(err.Error(), "chain_of_density") {
		t.Fatalf("error %q does not name the strategy", err.Error())
	}
}

func TestPromptBuilderPrefersTemplatesFromDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "simplified.md"), []byte("Custom template.\n"), 0o644); err != nil {
		t.Fatalf("failed to write template: %v", err)
	}

	builder := NewPromptBuilder(dir)

	prompt, err := builder.Build("hi", StrategySimplified)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if prompt != "Custom template.\n\nUser Message:\nhi" {
		t.Fatalf("unexpected prompt: %q", prompt)
	}

	// strategies without an override still use the embedded copy
	react, err := builder.Build("hi", StrategyReact)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if !strings.Contains(react, "risk_factors") {
		t.Fatalf("expected embedded react template, got %q", react)
	}
}
