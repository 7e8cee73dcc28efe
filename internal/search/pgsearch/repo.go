package pgsearch

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"unicode"

	"lexiguard-backend/internal/search"
)

// Repo searches the legal_references table with Postgres full-text search.
type Repo struct {
	db *sql.DB
}

func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

const topReference = `
SELECT title, snippet
FROM legal_references
WHERE search_vector @@ to_tsquery('english', $1)
ORDER BY ts_rank(search_vector, to_tsquery('english', $1)) DESC, id
LIMIT 1`

// Search ORs the clause terms so a long clause still matches on shared words.
// The fixed lookup prefix is dropped first; its words would match any reference.
func (r *Repo) Search(ctx context.Context, query string) (*search.Result, error) {
	tsq := orQuery(query)
	if tsq == "" {
		return nil, nil
	}
	var res search.Result
	err := r.db.QueryRowContext(ctx, topReference, tsq).Scan(&res.Title, &res.Snippet)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func orQuery(query string) string {
	query = strings.TrimPrefix(strings.TrimSpace(query), search.ClausePrefix)
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool, len(fields))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 3 || seen[f] {
			continue
		}
		seen[f] = true
		terms = append(terms, f)
	}
	return strings.Join(terms, " | ")
}
