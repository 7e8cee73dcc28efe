package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestJoinTextSkipsBinaryParts(t *testing.T) {
	parts := []Part{Blob("application/pdf", []byte("%PDF")), Text("first"), Text(""), Text("second")}
	if got := JoinText(parts); got != "first\n\nsecond" {
		t.Fatalf("unexpected join %q", got)
	}
}

func TestConfigJSONResponse(t *testing.T) {
	if !(Config{ResponseMIMEType: " Application/JSON "}).JSONResponse() {
		t.Fatalf("expected json response")
	}
	if (Config{}).JSONResponse() {
		t.Fatalf("expected plain response by default")
	}
}

func TestUnconfigured(t *testing.T) {
	if _, err := (Unconfigured{}).Generate(context.Background(), Request{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestWithMetricsPassesThrough(t *testing.T) {
	base := GatewayFunc(func(ctx context.Context, req Request) (string, error) {
		if req.Operation == "fail" {
			return "ignored", errors.New("boom")
		}
		return "text", nil
	})
	g := WithMetrics(base, "fake")

	out, err := g.Generate(context.Background(), Request{Operation: "chat"})
	if err != nil || out != "text" {
		t.Fatalf("unexpected result %q, %v", out, err)
	}
	out, err = g.Generate(context.Background(), Request{Operation: "fail"})
	if err == nil || out != "" {
		t.Fatalf("expected error and empty output, got %q, %v", out, err)
	}
}

func TestWithTimeoutSetsDeadline(t *testing.T) {
	base := GatewayFunc(func(ctx context.Context, req Request) (string, error) {
		if _, ok := ctx.Deadline(); !ok {
			return "", errors.New("no deadline")
		}
		<-ctx.Done()
		return "", ctx.Err()
	})
	_, err := WithTimeout(base, 10*time.Millisecond).Generate(context.Background(), Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if WithTimeout(base, 0) == nil {
		t.Fatalf("expected base gateway for zero timeout")
	}
}
