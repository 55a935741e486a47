package filtering

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/intern-matcher/internal/dataset"
)

type excludeFileFilter struct {
	path   string
	logger *zap.Logger
}

// NewExcludeFile creates a filter that removes internships listed in an exclude file.
func NewExcludeFile(path string, logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &excludeFileFilter{
		path:   strings.TrimSpace(path),
		logger: logger,
	}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return true }

func (f *excludeFileFilter) Validate() error { return nil }

func (f *excludeFileFilter) Apply(_ context.Context, t *dataset.Tables) (Step, error) {
	initial := size(t)
	if f.path == "" {
		return newStep(initial, t), nil
	}

	excluded, err := GetExcludedPostingsFromFile(f.path)
	if err != nil {
		return Step{}, fmt.Errorf("getting excluded internships from file: %w", err)
	}

	ids := make(map[string]bool, len(excluded.Items))
	for _, id := range excluded.IDs() {
		ids[id] = true
	}

	var removed []string
	postings := t.Postings[:0]
	for _, p := range t.Postings {
		if ids[p.ID] {
			removed = append(removed, p.ID)
			continue
		}
		postings = append(postings, p)
	}
	t.Postings = postings

	if len(removed) > 0 {
		f.logger.Info("excluding internships based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_internships", removed),
			zap.Int("internships_left", len(t.Postings)),
		)
	}

	return newStep(initial, t), nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
