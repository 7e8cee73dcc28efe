package history

import "context"

// Repo persists history records per user.
type Repo interface {
	Append(ctx context.Context, rec Record) error
	// ListByUser returns records in insertion order.
	ListByUser(ctx context.Context, userID string) ([]Record, error)
}
