package history

import "context"

// UnavailableRepo backs HISTORY_STORE=none: every call fails.
type UnavailableRepo struct{}

func (UnavailableRepo) Append(ctx context.Context, rec Record) error {
	return ErrStoreUnavailable
}

func (UnavailableRepo) ListByUser(ctx context.Context, userID string) ([]Record, error) {
	return nil, ErrStoreUnavailable
}
