package llm

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Gateway is a hosted generative model: input parts plus generation settings in, text out.
type Gateway interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Request is one generation call.
type Request struct {
	// Operation labels the call for logs and metrics ("extract", "analyze", "chat", "repair").
	Operation string
	Parts     []Part
	Config    Config
}

// Part is either inline binary data with its media type, or plain text.
type Part struct {
	MIMEType string
	Data     []byte
	Text     string
}

// IsBinary reports whether the part carries inline data.
func (p Part) IsBinary() bool {
	return len(p.Data) > 0
}

// Text returns a text part.
func Text(s string) Part {
	return Part{Text: s}
}

// Blob returns an inline data part.
func Blob(mimeType string, data []byte) Part {
	return Part{MIMEType: mimeType, Data: data}
}

// Config holds per-call generation settings. Zero values leave the provider default.
type Config struct {
	Model            string
	Temperature      *float32
	TopP             *float32
	MaxOutputTokens  int32
	ResponseMIMEType string
}

// JSONResponse reports whether the caller asked for a JSON-only reply.
func (c Config) JSONResponse() bool {
	return strings.EqualFold(strings.TrimSpace(c.ResponseMIMEType), "application/json")
}

// Float32 returns a pointer to v.
func Float32(v float32) *float32 {
	return &v
}

var (
	// ErrNotConfigured is returned by Unconfigured.
	ErrNotConfigured = errors.New("model provider not configured")
	// ErrEmptyResponse is returned when a provider answers with no text.
	ErrEmptyResponse = errors.New("model returned empty response")
)

// Unconfigured is the gateway used when LLM_PROVIDER=none; every call fails.
type Unconfigured struct{}

// Generate returns ErrNotConfigured.
func (Unconfigured) Generate(ctx context.Context, req Request) (string, error) {
	return "", ErrNotConfigured
}

// JoinText concatenates the text parts of req, separated by blank lines.
func JoinText(parts []Part) string {
	var b strings.Builder
	for _, p := range parts {
		if p.IsBinary() || p.Text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(p.Text)
	}
	return b.String()
}

// GatewayFunc adapts a function to Gateway.
type GatewayFunc func(ctx context.Context, req Request) (string, error)

// Generate calls f.
func (f GatewayFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

type timed struct {
	base    Gateway
	timeout time.Duration
}

// WithTimeout bounds every call to d. d <= 0 returns base unchanged.
func WithTimeout(base Gateway, d time.Duration) Gateway {
	if base == nil || d <= 0 {
		return base
	}
	return timed{base: base, timeout: d}
}

func (t timed) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.base.Generate(ctx, req)
}
