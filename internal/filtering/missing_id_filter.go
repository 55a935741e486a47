package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/intern-matcher/internal/dataset"
	"github.com/spigell/intern-matcher/internal/matching"
)

type missingIDFilter struct {
	logger *zap.Logger
}

// NewMissingID creates a filter that removes records without an identifier.
func NewMissingID(logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &missingIDFilter{logger: logger}
}

func (f *missingIDFilter) Name() string { return "missing_id" }

func (f *missingIDFilter) Disable(string) {}

func (f *missingIDFilter) IsEnabled() bool { return true }

func (f *missingIDFilter) Validate() error { return nil }

func (f *missingIDFilter) Apply(_ context.Context, t *dataset.Tables) (Step, error) {
	initial := size(t)

	candidates := t.Candidates[:0]
	for _, c := range t.Candidates {
		if strings.TrimSpace(c.ID) != "" {
			candidates = append(candidates, c)
		}
	}
	droppedCandidates := len(t.Candidates) - len(candidates)
	t.Candidates = candidates

	postings := t.Postings[:0]
	for _, p := range t.Postings {
		if strings.TrimSpace(p.ID) != "" {
			postings = append(postings, p)
		}
	}
	droppedPostings := len(t.Postings) - len(postings)
	t.Postings = postings

	if droppedCandidates > 0 || droppedPostings > 0 {
		f.logger.Warn("excluding malformed records",
			zap.NamedError("reason", matching.ErrMalformedRecord),
			zap.Int("candidates", droppedCandidates),
			zap.Int("internships", droppedPostings),
		)
	}

	return newStep(initial, t), nil
}
