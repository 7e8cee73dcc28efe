package llm

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"lexiguard-backend/internal/shared/telemetry"
)

const retryBaseDelay = 300 * time.Millisecond

type retrying struct {
	base       Gateway
	maxRetries int
	delay      time.Duration
}

// WithRetry retries transient provider failures up to maxRetries times with a
// linear back-off. maxRetries <= 0 returns base unchanged.
func WithRetry(base Gateway, maxRetries int) Gateway {
	if base == nil || maxRetries <= 0 {
		return base
	}
	return retrying{base: base, maxRetries: maxRetries, delay: retryBaseDelay}
}

func (r retrying) Generate(ctx context.Context, req Request) (string, error) {
	out, err := r.base.Generate(ctx, req)
	for attempt := 1; attempt <= r.maxRetries && err != nil && ShouldRetry(err); attempt++ {
		telemetry.Warn("llm.retry", map[string]any{
			"attempt":   attempt,
			"operation": req.Operation,
			"error":     err,
		})
		select {
		case <-time.After(time.Duration(attempt) * r.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
		out, err = r.base.Generate(ctx, req)
	}
	return out, err
}

// ShouldRetry reports whether err looks transient: timeouts, 5xx, 429 and dropped connections.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrNotConfigured) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "http status 5") || strings.Contains(msg, "http status 429") ||
		strings.Contains(msg, "server_error") || strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "unavailable") {
		return true
	}
	if strings.Contains(msg, "timeout") {
		return true
	}
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "eof")
}
