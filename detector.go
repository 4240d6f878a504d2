package scam_detector

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// ErrEmptyMessage is returned when there is no text to classify.
var ErrEmptyMessage = errors.New("message is empty")

// Detector builds the prompt, runs it through the executor and validates the answer.
type Detector struct {
	builder  *PromptBuilder
	executor *Executor
	strategy string
	model    string
	logger   *zap.Logger
}

func NewDetector(builder *PromptBuilder, executor *Executor, strategy, model string, logger *zap.Logger) *Detector {
	if builder == nil {
		builder = NewPromptBuilder("")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{
		builder:  builder,
		executor: executor,
		strategy: strategy,
		model:    model,
		logger:   logger,
	}
}

// NewDetectorFromConfig wires the generator, executor and prompt builder described by cfg.
func NewDetectorFromConfig(cfg *Config, logger *zap.Logger) (*Detector, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	gen, spec, err := NewGenerator(*cfg)
	if err != nil {
		return nil, err
	}

	logger = logger.With(zap.String("model", spec.String()))
	executor := NewExecutor(gen, cfg.MaxRetries, cfg.RetryDelay, logger)

	return NewDetector(NewPromptBuilder(cfg.PromptsDir), executor, cfg.Strategy, spec.String(), logger), nil
}

// Model reports the provider:model pair used by the detector.
func (d *Detector) Model() string {
	return d.model
}

// Detect classifies message. An empty strategy falls back to the configured one.
// Schema validation failures are returned as is and never retried.
func (d *Detector) Detect(ctx context.Context, message, strategy string) (*ScamDetectionOutput, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}
	if strings.TrimSpace(strategy) == "" {
		strategy = d.strategy
	}

	prompt, err := d.builder.Build(message, strategy)
	if err != nil {
		return nil, err
	}

	raw, err := d.executor.Execute(ctx, prompt)
	if err != nil {
		return nil, err
	}

	output, err := ParseOutput(raw)
	if err != nil {
		d.logger.Error("model output rejected", zap.Error(err))
		return nil, err
	}

	d.logger.Info("message classified",
		zap.String("label", string(output.Label)),
		zap.Int("risk_factors", len(output.RiskFactors)))

	return output, nil
}
