package history

import (
	"context"
	"database/sql"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Append(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO history_records (id, user_id, file_name, analysis_data, timestamp, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.DB.ExecContext(ctx, query,
		rec.ID,
		rec.UserID,
		rec.FileName,
		string(rec.AnalysisData),
		rec.Timestamp,
		rec.CreatedAt,
	)
	return err
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Record, error) {
	const query = `
SELECT id, user_id, file_name, analysis_data, timestamp, created_at
FROM history_records
WHERE user_id = $1
ORDER BY seq ASC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var rec Record
		var data []byte
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.FileName, &data, &rec.Timestamp, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.AnalysisData = data
		out = append(out, rec)
	}
	return out, rows.Err()
}
