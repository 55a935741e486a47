package dataset

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/intern-matcher/internal/matching"
)

const (
	TableCandidates  = "candidates"
	TableInternships = "internships"
)

type candidateRow struct {
	ID                string `mapstructure:"candidateid"`
	Skills            string `mapstructure:"skills"`
	Location          string `mapstructure:"location"`
	SectorInterest    string `mapstructure:"sectorinterest"`
	Category          string `mapstructure:"category"`
	PastParticipation string `mapstructure:"pastparticipation"`
	Qualification     string `mapstructure:"qualification"`
}

var candidateAliases = map[string]string{
	"id":     "candidateid",
	"sector": "sectorinterest",
}

type postingRow struct {
	ID                    string `mapstructure:"internshipid"`
	RequiredSkills        string `mapstructure:"requiredskills"`
	Location              string `mapstructure:"location"`
	Sector                string `mapstructure:"sector"`
	QualificationRequired string `mapstructure:"qualificationrequired"`
	Capacity              string `mapstructure:"capacity"`
}

var postingAliases = map[string]string{
	"id":            "internshipid",
	"skills":        "requiredskills",
	"qualification": "qualificationrequired",
}

// Tables is a parsed pair of input tables.
type Tables struct {
	Candidates []matching.Candidate
	Postings   []matching.Posting
	Reports    []Report
}

// ReadCandidates parses a candidates table.
func ReadCandidates(r io.Reader) ([]matching.Candidate, Report, error) {
	report := Report{Table: TableCandidates}

	_, rows, err := readTable(r, candidateAliases)
	if err != nil {
		return nil, report, fmt.Errorf("%s: %w", TableCandidates, err)
	}

	candidates := make([]matching.Candidate, 0, len(rows))
	for i, rw := range rows {
		var raw candidateRow
		unused, err := decodeRow(rw.values, &raw)
		if err != nil {
			return nil, report, fmt.Errorf("%s line %d: %w", TableCandidates, rw.line, err)
		}
		if i == 0 {
			report.UnknownColumns = unused
		}

		category, err := matching.ParseCategory(raw.Category)
		if err != nil {
			report.addIssue(rw.line, raw.ID, "category", err)
		}

		past, err := parseFlag(raw.PastParticipation)
		if err != nil {
			report.addIssue(rw.line, raw.ID, "past_participation", err)
		}

		candidates = append(candidates, matching.Candidate{
			ID:                raw.ID,
			Skills:            matching.ParseSkills(raw.Skills),
			Location:          raw.Location,
			SectorInterest:    raw.SectorInterest,
			Category:          category,
			PastParticipation: past,
			Qualification:     raw.Qualification,
		})
	}

	report.Rows = len(candidates)
	return candidates, report, nil
}

// ReadPostings parses an internships table. A missing Capacity column means
// every posting is unlimited.
func ReadPostings(r io.Reader) ([]matching.Posting, Report, error) {
	report := Report{Table: TableInternships}

	_, rows, err := readTable(r, postingAliases)
	if err != nil {
		return nil, report, fmt.Errorf("%s: %w", TableInternships, err)
	}

	postings := make([]matching.Posting, 0, len(rows))
	for i, rw := range rows {
		var raw postingRow
		unused, err := decodeRow(rw.values, &raw)
		if err != nil {
			return nil, report, fmt.Errorf("%s line %d: %w", TableInternships, rw.line, err)
		}
		if i == 0 {
			report.UnknownColumns = unused
		}

		capacity, err := matching.ParseCapacity(raw.Capacity)
		if err != nil {
			report.addIssue(rw.line, raw.ID, "capacity", err)
		}

		postings = append(postings, matching.Posting{
			ID:                    raw.ID,
			RequiredSkills:        matching.ParseSkills(raw.RequiredSkills),
			Location:              raw.Location,
			Sector:                raw.Sector,
			QualificationRequired: raw.QualificationRequired,
			Capacity:              capacity,
		})
	}

	report.Rows = len(postings)
	return postings, report, nil
}

// Load reads both tables from disk concurrently and logs degraded rows as
// warnings.
func Load(ctx context.Context, candidatesPath, internshipsPath string, logger *zap.Logger) (*Tables, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		candidates      []matching.Candidate
		postings        []matching.Posting
		candidateReport Report
		postingReport   Report
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		file, err := os.Open(candidatesPath)
		if err != nil {
			return fmt.Errorf("open candidates table: %w", err)
		}
		defer file.Close()

		candidates, candidateReport, err = ReadCandidates(file)
		return err
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		file, err := os.Open(internshipsPath)
		if err != nil {
			return fmt.Errorf("open internships table: %w", err)
		}
		defer file.Close()

		postings, postingReport, err = ReadPostings(file)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tables := &Tables{
		Candidates: candidates,
		Postings:   postings,
		Reports:    []Report{candidateReport, postingReport},
	}

	for _, r := range tables.Reports {
		if len(r.UnknownColumns) > 0 {
			logger.Warn("ignoring unknown columns",
				zap.String("table", r.Table),
				zap.Strings("columns", r.UnknownColumns),
			)
		}
		for _, issue := range r.Issues {
			logger.Warn("degraded row value",
				zap.String("table", issue.Table),
				zap.Int("line", issue.Line),
				zap.String("id", issue.ID),
				zap.String("field", issue.Field),
				zap.Error(issue.Err),
			)
		}
		logger.Info("table loaded", zap.String("table", r.Table), zap.Int("rows", r.Rows))
	}

	return tables, nil
}

// CandidateIDs returns the candidate identifiers in table order.
func (t *Tables) CandidateIDs() []string {
	ids := make([]string, 0, len(t.Candidates))
	for _, c := range t.Candidates {
		ids = append(ids, c.ID)
	}
	return ids
}

// FindCandidate returns the first candidate with the given id.
func (t *Tables) FindCandidate(id string) (matching.Candidate, bool) {
	for _, c := range t.Candidates {
		if c.ID == id {
			return c, true
		}
	}
	return matching.Candidate{}, false
}
