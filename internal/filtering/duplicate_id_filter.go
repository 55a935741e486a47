package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/intern-matcher/internal/dataset"
)

type duplicateIDFilter struct {
	disabled bool
	reason   string
	logger   *zap.Logger
}

// NewDuplicateID creates a filter that keeps only the first record of every identifier.
func NewDuplicateID(logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &duplicateIDFilter{logger: logger}
}

func (f *duplicateIDFilter) Name() string { return "duplicate_id" }

func (f *duplicateIDFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *duplicateIDFilter) IsEnabled() bool { return !f.disabled }

func (f *duplicateIDFilter) Validate() error { return nil }

func (f *duplicateIDFilter) Apply(_ context.Context, t *dataset.Tables) (Step, error) {
	initial := size(t)

	var excludedCandidates, excludedPostings []string

	seen := make(map[string]bool, len(t.Candidates))
	candidates := t.Candidates[:0]
	for _, c := range t.Candidates {
		if seen[c.ID] {
			excludedCandidates = append(excludedCandidates, c.ID)
			continue
		}
		seen[c.ID] = true
		candidates = append(candidates, c)
	}
	t.Candidates = candidates

	seen = make(map[string]bool, len(t.Postings))
	postings := t.Postings[:0]
	for _, p := range t.Postings {
		if seen[p.ID] {
			excludedPostings = append(excludedPostings, p.ID)
			continue
		}
		seen[p.ID] = true
		postings = append(postings, p)
	}
	t.Postings = postings

	if len(excludedCandidates) > 0 || len(excludedPostings) > 0 {
		f.logger.Warn("excluding duplicated records, the first occurrence is kept",
			zap.Strings("candidates", excludedCandidates),
			zap.Strings("internships", excludedPostings),
		)
	}

	return newStep(initial, t), nil
}

func (f *duplicateIDFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}
