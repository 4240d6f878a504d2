package scam_detector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	defaultMaxRetries = 3
	defaultRetryDelay = 2 * time.Second
)

// ErrRetriesExhausted wraps the last failure once every attempt has failed.
var ErrRetriesExhausted = errors.New("LLM call failed after all retries")

// Executor sends prompts through a Generator, retrying transient failures a
// fixed number of times with a fixed delay between attempts.
type Executor struct {
	gen        Generator
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewExecutor returns an Executor making at most maxRetries attempts.
func NewExecutor(gen Generator, maxRetries int, retryDelay time.Duration, logger *zap.Logger) *Executor {
	if maxRetries < 1 {
		maxRetries = 1
	}
	if retryDelay < 0 {
		retryDelay = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		gen:        gen,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		logger:     logger,
		sleep:      sleepContext,
	}
}

// Execute returns the raw model response for prompt.
func (e *Executor) Execute(ctx context.Context, prompt string) (string, error) {
	e.logger.Info("executing LLM", zap.Int("prompt_length", len(prompt)), zap.Int("max_attempts", e.maxRetries))

	var lastErr error
	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		response, err := e.gen.Generate(ctx, prompt)
		if err == nil {
			e.logger.Info("LLM execution successful",
				zap.Int("attempt", attempt),
				zap.Int("response_length", len(response)))
			return response, nil
		}
		lastErr = err

		if ctxErr := ctx.Err(); ctxErr != nil {
			e.logger.Error("LLM execution cancelled", zap.Int("attempt", attempt), zap.Error(err))
			return "", fmt.Errorf("LLM execution cancelled: %w", ctxErr)
		}

		if !isTransient(err) {
			e.logger.Error("LLM execution failed", zap.Int("attempt", attempt), zap.Error(err))
			return "", err
		}

		e.logger.Warn("LLM call failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", e.maxRetries),
			zap.Error(err))

		if attempt < e.maxRetries {
			if err := e.sleep(ctx, e.retryDelay); err != nil {
				return "", fmt.Errorf("LLM execution cancelled: %w", err)
			}
		}
	}

	e.logger.Error("LLM execution failed", zap.Int("attempts", e.maxRetries), zap.Error(lastErr))
	return "", fmt.Errorf("%w (%d attempts): %w", ErrRetriesExhausted, e.maxRetries, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
