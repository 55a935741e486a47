package filtering

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/spigell/intern-matcher/internal/matching"
)

const (
	ExcludeActorUser = "user"
)

// ExcludedPostings is the content of an exclude file.
type ExcludedPostings struct {
	Items []*ExcludedPosting
}

type ExcludedPosting struct {
	ID         string
	Sector     string
	Location   string
	Actor      string
	Reason     string
	ExcludedAt time.Time
}

// GetExcludedPostingsFromFile reads an exclude file. A missing or empty file
// yields an empty list.
func GetExcludedPostingsFromFile(path string) (*ExcludedPostings, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return &ExcludedPostings{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedPostings{}, nil
	}

	var excluded ExcludedPostings
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

// NewExcludedFromResults converts ranked rows into exclude entries.
func NewExcludedFromResults(results []matching.MatchResult, actor, reason string) *ExcludedPostings {
	excluded := &ExcludedPostings{}
	now := time.Now().UTC()
	for _, r := range results {
		excluded.Items = append(excluded.Items, &ExcludedPosting{
			ID:         r.InternshipID,
			Sector:     r.Sector,
			Location:   r.Location,
			Actor:      actor,
			Reason:     reason,
			ExcludedAt: now,
		})
	}
	return excluded
}

// Append adds entries whose ID is not already listed.
func (e *ExcludedPostings) Append(s *ExcludedPostings) {
	seen := make(map[string]bool, len(e.Items))
	for _, item := range e.Items {
		seen[item.ID] = true
	}
	for _, item := range s.Items {
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		e.Items = append(e.Items, item)
	}
}

func (e *ExcludedPostings) IDs() []string {
	ids := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

func (e *ExcludedPostings) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
