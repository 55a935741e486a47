package ai

import (
	"context"

	"github.com/spigell/intern-matcher/internal/matching"
)

// Explanation is a short narrative for a candidate's ranked postings.
type Explanation struct {
	CandidateID string   `json:"candidate_id"`
	Summary     string   `json:"summary"`
	Suggestions []string `json:"suggestions,omitempty"`
	Raw         string   `json:"-"`
}

// Explainer describes ranked results in prose. It never changes scores or order.
type Explainer interface {
	Explain(ctx context.Context, candidate matching.Candidate, results []matching.MatchResult) (*Explanation, error)
}
