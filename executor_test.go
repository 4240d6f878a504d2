package scam_detector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

type stubResult struct {
	text string
	err  error
}

// stubGenerator replays results in order and repeats the last one.
type stubGenerator struct {
	results []stubResult
	calls   int
	prompts []string
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	r := s.results[len(s.results)-1]
	if s.calls <= len(s.results) {
		r = s.results[s.calls-1]
	}
	return r.text, r.err
}

func newTestExecutor(gen Generator, maxRetries int) (*Executor, *[]time.Duration) {
	var sleeps []time.Duration
	e := NewExecutor(gen, maxRetries, 2*time.Second, nil)
	e.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	return e, &sleeps
}

func TestExecutorReturnsFirstSuccess(t *testing.T) {
	gen := &stubGenerator{results: []stubResult{{text: `{"label":"Scam"}`}}}
	e, sleeps := newTestExecutor(gen, 3)

	got, err := e.Execute(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if got != `{"label":"Scam"}` {
		t.Fatalf("Execute() = %q", got)
	}
	if gen.calls != 1 || len(*sleeps) != 0 {
		t.Fatalf("calls=%d sleeps=%d, want 1 and 0", gen.calls, len(*sleeps))
	}
}

func TestExecutorRetriesExactlyMaxRetriesThenFails(t *testing.T) {
	for _, maxRetries := range []int{1, 3, 5} {
		t.Run(fmt.Sprintf("max_retries=%d", maxRetries), func(t *testing.T) {
			transient := errors.New("connection reset by peer")
			gen := &stubGenerator{results: []stubResult{{err: transient}}}
			e, sleeps := newTestExecutor(gen, maxRetries)

			_, err := e.Execute(context.Background(), "prompt")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrRetriesExhausted) {
				t.Fatalf("error %v does not match ErrRetriesExhausted", err)
			}
			if !errors.Is(err, transient) {
				t.Fatalf("error %v does not wrap the last failure", err)
			}
			if gen.calls != maxRetries {
				t.Fatalf("calls = %d, want %d", gen.calls, maxRetries)
			}
			if len(*sleeps) != maxRetries-1 {
				t.Fatalf("sleeps = %d, want %d", len(*sleeps), maxRetries-1)
			}
			for _, d := range *sleeps {
				if d != 2*time.Second {
					t.Fatalf("sleep = %v, want 2s", d)
				}
			}
		})
	}
}

func TestExecutorRecoversAfterTransientFailures(t *testing.T) {
	gen := &stubGenerator{results: []stubResult{
		{err: &APIError{Provider: "Gemini", StatusCode: http.StatusServiceUnavailable}},
		{err: &APIError{Provider: "Gemini", StatusCode: http.StatusTooManyRequests}},
		{text: "ok"},
	}}
	e, _ := newTestExecutor(gen, 3)

	got, err := e.Execute(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if got != "ok" || gen.calls != 3 {
		t.Fatalf("got %q after %d calls, want ok after 3", got, gen.calls)
	}
}

func TestExecutorDoesNotRetryPermanentFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "bad request", err: &APIError{Provider: "OpenAI", StatusCode: http.StatusBadRequest}},
		{name: "unauthorized", err: &APIError{Provider: "OpenAI", StatusCode: http.StatusUnauthorized}},
		{name: "missing api key", err: fmt.Errorf("gemini: %w", ErrMissingAPIKey)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{results: []stubResult{{err: tt.err}}}
			e, _ := newTestExecutor(gen, 3)

			_, err := e.Execute(context.Background(), "prompt")
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected %v, got %v", tt.err, err)
			}
			if errors.Is(err, ErrRetriesExhausted) {
				t.Fatalf("permanent failure should not be reported as exhausted retries")
			}
			if gen.calls != 1 {
				t.Fatalf("calls = %d, want 1", gen.calls)
			}
		})
	}
}

func TestExecutorStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := &stubGenerator{results: []stubResult{{err: errors.New("timeout")}}}
	e := NewExecutor(gen, 5, time.Hour, nil)
	e.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return sleepContext(ctx, d)
	}

	_, err := e.Execute(ctx, "prompt")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("calls = %d, want 1", gen.calls)
	}
}

func TestNewExecutorClampsMaxRetries(t *testing.T) {
	gen := &stubGenerator{results: []stubResult{{err: errors.New("boom")}}}
	e, _ := newTestExecutor(gen, 0)

	if _, err := e.Execute(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error, got nil")
	}
	if gen.calls != 1 {
		t.Fatalf("calls = %d, want 1", gen.calls)
	}
}
