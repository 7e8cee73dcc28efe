package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLiteRepo implements Repo on SQLite. created_at is stored as RFC 3339 text.
type SQLiteRepo struct {
	DB *sql.DB
}

func (r *SQLiteRepo) Append(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO history_records (id, user_id, file_name, analysis_data, timestamp, created_at)
VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.DB.ExecContext(ctx, query,
		rec.ID,
		rec.UserID,
		rec.FileName,
		string(rec.AnalysisData),
		rec.Timestamp,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (r *SQLiteRepo) ListByUser(ctx context.Context, userID string) ([]Record, error) {
	const query = `
SELECT id, user_id, file_name, analysis_data, timestamp, created_at
FROM history_records
WHERE user_id = ?
ORDER BY seq ASC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var rec Record
		var data, createdAt string
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.FileName, &data, &rec.Timestamp, &createdAt); err != nil {
			return nil, err
		}
		rec.AnalysisData = []byte(data)
		rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("record %s: created_at: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
