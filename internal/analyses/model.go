package analyses

import "strings"

// RiskLevel is the severity assigned to one clause.
type RiskLevel string

const (
	RiskNeutral   RiskLevel = "Neutral"
	RiskAttention RiskLevel = "Attention"
	RiskCritical  RiskLevel = "Critical"
)

// ParseRiskLevel matches raw case-insensitively and returns the canonical value.
func ParseRiskLevel(raw string) (RiskLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "neutral":
		return RiskNeutral, true
	case "attention":
		return RiskAttention, true
	case "critical":
		return RiskCritical, true
	default:
		return "", false
	}
}

// Clause is one provision of the document with its assessment. ClauseText and
// RiskLevel stay in English; Explanation is in the requested language.
type Clause struct {
	ClauseText  string    `json:"clause_text"`
	RiskLevel   RiskLevel `json:"risk_level"`
	Explanation string    `json:"explanation"`
	RAGWarning  string    `json:"rag_warning,omitempty"`
}

// Report is the result of one analysis. It is built once and handed to the caller.
type Report struct {
	Summary  string   `json:"summary"`
	Clauses  []Clause `json:"clauses"`
	FullText string   `json:"full_text"`
}

// CriticalCount returns the number of Critical clauses.
func (r Report) CriticalCount() int {
	n := 0
	for _, c := range r.Clauses {
		if c.RiskLevel == RiskCritical {
			n++
		}
	}
	return n
}
