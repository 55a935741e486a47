package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/spigell/intern-matcher/internal/matching"
)

func results() []matching.MatchResult {
	return []matching.MatchResult{
		{
			CandidateID:    "C1",
			InternshipID:   "I1",
			Rank:           1,
			Sector:         "IT",
			Location:       "Patna",
			RequiredSkills: matching.SkillSet{"python", "sql"},
			Score:          70,
			Breakdown: matching.Breakdown{
				Skills:            50,
				Location:          20,
				AffirmativeAction: 10,
				PastParticipation: -10,
				MatchedSkills:     []string{"python"},
			},
		},
		{
			CandidateID:  "C1",
			InternshipID: "I2",
			Rank:         2,
			Score:        0.5,
			Breakdown:    matching.Breakdown{Qualification: 0.5},
		},
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for in, expect := range map[string]Format{"": FormatCSV, "CSV": FormatCSV, "json": FormatJSON, "yml": FormatYAML, " yaml ": FormatYAML} {
		got, err := ParseFormat(in)
		if err != nil || got != expect {
			t.Fatalf("ParseFormat(%q) = %q, %v, want %q", in, got, err, expect)
		}
	}

	if _, err := ParseFormat("xlsx"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, FormatCSV, results()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(records))
	}
	if !reflect.DeepEqual(records[0], Columns) {
		t.Fatalf("unexpected header: %v", records[0])
	}

	expect := []string{"C1", "I1", "1", "IT", "Patna", "python,sql", "50", "20", "0", "0", "10", "-10", "python", "70"}
	if !reflect.DeepEqual(records[1], expect) {
		t.Fatalf("expected %v, got %v", expect, records[1])
	}
	if records[2][len(Columns)-1] != "0.5" {
		t.Fatalf("expected fractional score 0.5, got %q", records[2][len(Columns)-1])
	}
}

func TestWriteEmptyKeepsHeader(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, FormatCSV, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != strings.Join(Columns, ",") {
		t.Fatalf("expected header only, got %q", got)
	}
}

func TestWriteJSONAndYAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, results()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var fromJSON []Row
	if err := json.Unmarshal(buf.Bytes(), &fromJSON); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	buf.Reset()
	if err := Write(&buf, FormatYAML, results()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var fromYAML []Row
	if err := yaml.Unmarshal(buf.Bytes(), &fromYAML); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(fromJSON, NewRows(results())) || !reflect.DeepEqual(fromYAML, fromJSON) {
		t.Fatalf("expected json and yaml exports to carry the same rows")
	}
	if !strings.Contains(buf.String(), "internship_id: I2") {
		t.Fatalf("expected snake_case yaml keys, got:\n%s", buf.String())
	}
}

func TestWriteFileAndDump(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.csv")
	if err := WriteFile(path, FormatCSV, results()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := WriteFile(path, FormatCSV, results()[:1]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(string(data), "\n"); lines != 2 {
		t.Fatalf("expected rewritten file with 2 lines, got %d", lines)
	}

	name, err := DumpToTmpFile(results())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer os.Remove(name)
	if !strings.HasSuffix(name, ".json") {
		t.Fatalf("expected json temp file, got %s", name)
	}
}

func TestValues(t *testing.T) {
	t.Parallel()

	values := Values(results())
	if len(values) != 3 || len(values[0]) != len(Columns) {
		t.Fatalf("unexpected values shape: %d rows", len(values))
	}
	if values[1][1] != "I1" {
		t.Fatalf("expected internship id cell, got %v", values[1][1])
	}
}

func TestReportByPosting(t *testing.T) {
	t.Parallel()

	report := ReportByPosting(results())
	entries, ok := report["I1 (IT, Patna)"]
	if !ok || len(entries) != 1 {
		t.Fatalf("expected one entry for I1, got %v", report)
	}
	if entries[0]["score"] != "70" || entries[0]["matched skills"] != "python" {
		t.Fatalf("unexpected entry: %v", entries[0])
	}
}
