package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Issue is a per-row problem that was degraded instead of failing the load.
type Issue struct {
	Table string
	Line  int
	ID    string
	Field string
	Err   error
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s line %d (id %q) field %s: %v", i.Table, i.Line, i.ID, i.Field, i.Err)
}

// Report describes how a table was read.
type Report struct {
	Table          string
	Rows           int
	Issues         []Issue
	UnknownColumns []string
}

func (r *Report) addIssue(line int, id, field string, err error) {
	r.Issues = append(r.Issues, Issue{Table: r.Table, Line: line, ID: id, Field: field, Err: err})
}

// row is one CSV record keyed by normalized column name.
type row struct {
	line   int
	values map[string]any
}

// normalizeColumn folds a header name so that "Candidate ID", "candidate_id"
// and "CandidateID" are the same key.
func normalizeColumn(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(name)
}

// readTable reads a header and all records. Short records are padded with
// empty values, extra cells are ignored.
func readTable(r io.Reader, aliases map[string]string) ([]string, []row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, errors.New("table is empty: header row is required")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		key := normalizeColumn(h)
		if alias, ok := aliases[key]; ok {
			key = alias
		}
		columns[i] = key
	}

	var rows []row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read record: %w", err)
		}

		line, _ := reader.FieldPos(0)
		values := make(map[string]any, len(columns))
		for i, col := range columns {
			if col == "" {
				continue
			}
			if _, seen := values[col]; seen {
				continue
			}
			value := ""
			if i < len(record) {
				value = strings.TrimSpace(record[i])
			}
			values[col] = value
		}
		rows = append(rows, row{line: line, values: values})
	}

	return columns, rows, nil
}

// decodeRow fills out from the row values and returns the keys no field consumed.
func decodeRow(values map[string]any, out any) ([]string, error) {
	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata:         &md,
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(values); err != nil {
		return nil, err
	}

	sort.Strings(md.Unused)
	return md.Unused, nil
}

// parseFlag reads yes/no style cells. Unparsable values count as false.
func parseFlag(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "0.0", "false", "no", "n", "f":
		return false, nil
	case "1", "1.0", "true", "yes", "y", "t":
		return true, nil
	default:
		return false, fmt.Errorf("%q is not a yes/no value", s)
	}
}
