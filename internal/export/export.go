package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spigell/intern-matcher/internal/matching"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts csv, json and yaml (or yml) in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (csv, json, yaml)", s)
	}
}

// Columns is the fixed column order of every export.
var Columns = []string{
	"candidate_id",
	"internship_id",
	"rank",
	"sector",
	"location",
	"required_skills",
	"skills_points",
	"location_points",
	"sector_points",
	"qualification_points",
	"affirmative_action_points",
	"past_participation_points",
	"matched_skills",
	"score",
}

// Row is the flat export form of a match result.
type Row struct {
	CandidateID             string `json:"candidate_id" yaml:"candidate_id"`
	InternshipID            string `json:"internship_id" yaml:"internship_id"`
	Rank                    int    `json:"rank" yaml:"rank"`
	Sector                  string `json:"sector" yaml:"sector"`
	Location                string `json:"location" yaml:"location"`
	RequiredSkills          string `json:"required_skills" yaml:"required_skills"`
	SkillsPoints            string `json:"skills_points" yaml:"skills_points"`
	LocationPoints          string `json:"location_points" yaml:"location_points"`
	SectorPoints            string `json:"sector_points" yaml:"sector_points"`
	QualificationPoints     string `json:"qualification_points" yaml:"qualification_points"`
	AffirmativeActionPoints string `json:"affirmative_action_points" yaml:"affirmative_action_points"`
	PastParticipationPoints string `json:"past_participation_points" yaml:"past_participation_points"`
	MatchedSkills           string `json:"matched_skills" yaml:"matched_skills"`
	Score                   string `json:"score" yaml:"score"`
}

func formatNumber(v float64) string {
	if v == 0 {
		// avoid "-0" for a zero penalty
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func NewRow(r matching.MatchResult) Row {
	b := r.Breakdown
	return Row{
		CandidateID:             r.CandidateID,
		InternshipID:            r.InternshipID,
		Rank:                    r.Rank,
		Sector:                  r.Sector,
		Location:                r.Location,
		RequiredSkills:          r.RequiredSkills.String(),
		SkillsPoints:            formatNumber(b.Skills),
		LocationPoints:          formatNumber(b.Location),
		SectorPoints:            formatNumber(b.Sector),
		QualificationPoints:     formatNumber(b.Qualification),
		AffirmativeActionPoints: formatNumber(b.AffirmativeAction),
		PastParticipationPoints: formatNumber(b.PastParticipation),
		MatchedSkills:           strings.Join(b.MatchedSkills, ","),
		Score:                   formatNumber(r.Score),
	}
}

// Values returns the row cells in Columns order.
func (r Row) Values() []string {
	return []string{
		r.CandidateID,
		r.InternshipID,
		strconv.Itoa(r.Rank),
		r.Sector,
		r.Location,
		r.RequiredSkills,
		r.SkillsPoints,
		r.LocationPoints,
		r.SectorPoints,
		r.QualificationPoints,
		r.AffirmativeActionPoints,
		r.PastParticipationPoints,
		r.MatchedSkills,
		r.Score,
	}
}

func NewRows(results []matching.MatchResult) []Row {
	rows := make([]Row, 0, len(results))
	for _, r := range results {
		rows = append(rows, NewRow(r))
	}
	return rows
}

// Records returns the header followed by one record per result.
func Records(results []matching.MatchResult) [][]string {
	records := make([][]string, 0, len(results)+1)
	records = append(records, append([]string(nil), Columns...))
	for _, row := range NewRows(results) {
		records = append(records, row.Values())
	}
	return records
}

// Write serializes results to w. The header is written even for an empty table.
func Write(w io.Writer, format Format, results []matching.MatchResult) error {
	switch format {
	case FormatCSV, "":
		cw := csv.NewWriter(w)
		if err := cw.WriteAll(Records(results)); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(NewRows(results)); err != nil {
			return fmt.Errorf("write json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(NewRows(results)); err != nil {
			return fmt.Errorf("write yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("write yaml: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteFile serializes results to path, replacing any previous content.
func WriteFile(path string, format Format, results []matching.MatchResult) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Write(file, format, results); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// DumpToTmpFile writes results as JSON into a new temporary file and returns its name.
func DumpToTmpFile(results []matching.MatchResult) (string, error) {
	file, err := os.CreateTemp("", "internship_matches_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := Write(file, FormatJSON, results); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// Values returns the header and rows as cells for spreadsheet APIs.
func Values(results []matching.MatchResult) [][]any {
	records := Records(results)
	values := make([][]any, 0, len(records))
	for _, record := range records {
		row := make([]any, 0, len(record))
		for _, cell := range record {
			row = append(row, cell)
		}
		values = append(values, row)
	}
	return values
}
