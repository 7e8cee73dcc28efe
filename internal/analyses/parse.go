package analyses

import (
	"encoding/json"
	"fmt"
	"strings"
)

type rawReport struct {
	Summary *string      `json:"summary"`
	Clauses *[]rawClause `json:"clauses"`
}

type rawClause struct {
	ClauseText  string `json:"clause_text"`
	RiskLevel   string `json:"risk_level"`
	Explanation string `json:"explanation"`
}

// ParseReport decodes a model reply into a Report. Code fences around the JSON
// are tolerated; a missing key or an unknown risk level is an error wrapping
// ErrMalformedModelOutput. Any rag_warning the model produced is dropped.
func ParseReport(raw string) (Report, error) {
	body := stripCodeFence(raw)
	if body == "" {
		return Report{}, fmt.Errorf("%w: empty reply", ErrMalformedModelOutput)
	}

	var decoded rawReport
	if err := json.Unmarshal([]byte(body), &decoded); err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrMalformedModelOutput, err)
	}
	if decoded.Summary == nil {
		return Report{}, fmt.Errorf("%w: missing summary", ErrMalformedModelOutput)
	}
	if decoded.Clauses == nil {
		return Report{}, fmt.Errorf("%w: missing clauses", ErrMalformedModelOutput)
	}

	report := Report{
		Summary: *decoded.Summary,
		Clauses: make([]Clause, 0, len(*decoded.Clauses)),
	}
	for i, c := range *decoded.Clauses {
		level, ok := ParseRiskLevel(c.RiskLevel)
		if !ok {
			return Report{}, fmt.Errorf("%w: clause %d has risk_level %q", ErrMalformedModelOutput, i, c.RiskLevel)
		}
		report.Clauses = append(report.Clauses, Clause{
			ClauseText:  c.ClauseText,
			RiskLevel:   level,
			Explanation: c.Explanation,
		})
	}
	return report, nil
}

func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
