package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type scriptedGateway struct {
	errs  []error
	calls int
}

func (s *scriptedGateway) Generate(ctx context.Context, req Request) (string, error) {
	idx := s.calls
	s.calls++
	if idx < len(s.errs) && s.errs[idx] != nil {
		return "", s.errs[idx]
	}
	return "ok", nil
}

func TestWithRetryZeroReturnsBase(t *testing.T) {
	base := &scriptedGateway{}
	if got := WithRetry(base, 0); got != Gateway(base) {
		t.Fatalf("expected base gateway when retries disabled")
	}
}

func TestRetryRecoversFromTransientError(t *testing.T) {
	base := &scriptedGateway{errs: []error{fmt.Errorf("openai http status 503: overloaded")}}
	g := retrying{base: base, maxRetries: 2, delay: time.Millisecond}

	out, err := g.Generate(context.Background(), Request{Operation: "analyze"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "ok" || base.calls != 2 {
		t.Fatalf("expected success on second call, got %q after %d calls", out, base.calls)
	}
}

func TestRetryStopsAtLimit(t *testing.T) {
	transient := errors.New("connection reset by peer")
	base := &scriptedGateway{errs: []error{transient, transient, transient, transient}}
	g := retrying{base: base, maxRetries: 2, delay: time.Millisecond}

	if _, err := g.Generate(context.Background(), Request{}); !errors.Is(err, transient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if base.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", base.calls)
	}
}

func TestRetrySkipsPermanentError(t *testing.T) {
	base := &scriptedGateway{errs: []error{errors.New("openai http status 400: bad request")}}
	g := retrying{base: base, maxRetries: 3, delay: time.Millisecond}

	if _, err := g.Generate(context.Background(), Request{}); err == nil {
		t.Fatalf("expected error")
	}
	if base.calls != 1 {
		t.Fatalf("expected a single call, got %d", base.calls)
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "deadline", err: fmt.Errorf("call: %w", context.DeadlineExceeded), want: true},
		{name: "canceled", err: context.Canceled, want: false},
		{name: "not configured", err: ErrNotConfigured, want: false},
		{name: "rate limited", err: errors.New("openai http status 429: slow down"), want: true},
		{name: "gemini exhausted", err: errors.New("Error 429, Status: RESOURCE_EXHAUSTED"), want: true},
		{name: "bad request", err: errors.New("openai http status 400"), want: false},
		{name: "eof", err: errors.New("unexpected EOF"), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldRetry(tt.err); got != tt.want {
				t.Fatalf("ShouldRetry(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
