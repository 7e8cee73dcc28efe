package history

import (
	"encoding/json"
	"time"
)

// Record is one saved analysis. Records are append-only.
type Record struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	FileName     string          `json:"file_name"`
	AnalysisData json.RawMessage `json:"analysis_data"`
	Timestamp    string          `json:"timestamp"`
	CreatedAt    time.Time       `json:"created_at"`
}
