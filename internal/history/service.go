package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"lexiguard-backend/internal/shared/telemetry"
)

// SaveInput is what a client submits to record an analysis.
type SaveInput struct {
	FileName     string          `json:"file_name"`
	AnalysisData json.RawMessage `json:"analysis_data"`
	Timestamp    string          `json:"timestamp"`
}

// Service validates and stores history records. Every store call is
// bounded by Timeout.
type Service struct {
	Repo    Repo
	Timeout time.Duration
	Now     func() time.Time
}

func NewService(repo Repo, timeout time.Duration) *Service {
	return &Service{Repo: repo, Timeout: timeout, Now: time.Now}
}

// Save appends a record for userID.
func (s *Service) Save(ctx context.Context, userID string, in SaveInput) (Record, error) {
	if strings.TrimSpace(userID) == "" {
		return Record{}, fmt.Errorf("%w: user is required", ErrInvalidRecord)
	}
	if strings.TrimSpace(in.FileName) == "" {
		return Record{}, fmt.Errorf("%w: file_name is required", ErrInvalidRecord)
	}
	data := bytes.TrimSpace(in.AnalysisData)
	if len(data) == 0 || data[0] != '{' || !json.Valid(data) {
		return Record{}, fmt.Errorf("%w: analysis_data must be a JSON object", ErrInvalidRecord)
	}

	now := s.now()
	rec := Record{
		ID:           uuid.NewString(),
		UserID:       userID,
		FileName:     in.FileName,
		AnalysisData: data,
		Timestamp:    strings.TrimSpace(in.Timestamp),
		CreatedAt:    now,
	}
	if rec.Timestamp == "" {
		rec.Timestamp = now.Format(time.RFC3339)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.repo().Append(ctx, rec); err != nil {
		telemetry.Error("history.save", map[string]any{"user_id": userID, "error": err})
		return Record{}, unavailable(err)
	}
	telemetry.Info("history.save", map[string]any{"user_id": userID, "record_id": rec.ID})
	return rec, nil
}

// List returns the user's records in insertion order, never nil.
func (s *Service) List(ctx context.Context, userID string) ([]Record, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	out, err := s.repo().ListByUser(ctx, userID)
	if err != nil {
		telemetry.Error("history.list", map[string]any{"user_id": userID, "error": err})
		return nil, unavailable(err)
	}
	if out == nil {
		out = []Record{}
	}
	return out, nil
}

func (s *Service) repo() Repo {
	if s.Repo == nil {
		return UnavailableRepo{}
	}
	return s.Repo
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.Timeout)
}

func unavailable(err error) error {
	if errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
