package llm

import (
	"context"
	"time"

	"lexiguard-backend/internal/shared/metrics"
	"lexiguard-backend/internal/shared/telemetry"
)

type observed struct {
	base     Gateway
	provider string
}

// WithMetrics records latency and outcome of every call under provider.
func WithMetrics(base Gateway, provider string) Gateway {
	if base == nil {
		return nil
	}
	return observed{base: base, provider: provider}
}

func (o observed) Generate(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	out, err := o.base.Generate(ctx, req)
	elapsed := time.Since(start)
	metrics.ObserveModelCall(o.provider, req.Operation, elapsed)

	fields := map[string]any{
		"provider":    o.provider,
		"operation":   req.Operation,
		"model":       req.Config.Model,
		"duration_ms": elapsed.Milliseconds(),
		"chars":       len(out),
	}
	if err != nil {
		fields["error"] = err
		telemetry.Warn("llm.response", fields)
		return "", err
	}
	telemetry.Info("llm.response", fields)
	return out, nil
}
