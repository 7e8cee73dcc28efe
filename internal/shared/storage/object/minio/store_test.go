package minio

import (
	"context"
	"testing"
)

func TestNewRequiresEndpointAndBucket(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		bucket   string
	}{
		{name: "no endpoint", bucket: "docs"},
		{name: "no bucket", endpoint: "localhost:9000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(context.Background(), tt.endpoint, "ak", "sk", tt.bucket, false); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
