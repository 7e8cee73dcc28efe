package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	h, err := NewHS256("test-secret", "dev")
	if err != nil {
		t.Fatalf("NewHS256: %v", err)
	}
	token, err := h.Sign(Claims{Sub: "google:123", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	claims, err := h.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Sub != "google:123" || claims.Email != "a@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Exp == 0 || claims.Iat == 0 {
		t.Fatalf("expected iat/exp to be populated: %+v", claims)
	}
}

func TestVerifyRejects(t *testing.T) {
	h, _ := NewHS256("test-secret", "dev")
	other, _ := NewHS256("other-secret", "dev")
	foreign, err := other.Sign(Claims{Sub: "user-1"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	expired := &HS256{secret: []byte("test-secret"), ttl: time.Hour, now: func() time.Time {
		return time.Now().Add(-48 * time.Hour)
	}}
	stale, err := expired.Sign(Claims{Sub: "user-1"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	valid, _ := h.Sign(Claims{Sub: "user-1"})
	tampered := valid[:strings.LastIndex(valid, ".")] + ".AAAA"

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-token"},
		{name: "wrong secret", token: foreign},
		{name: "expired", token: stale},
		{name: "tampered signature", token: tampered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := h.Verify(context.Background(), tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestNewHS256RequiresSecretInProduction(t *testing.T) {
	if _, err := NewHS256("", "production"); err == nil {
		t.Fatal("expected error without secret in production")
	}
	if _, err := NewHS256("", "dev"); err != nil {
		t.Fatalf("expected dev fallback secret, got %v", err)
	}
}
