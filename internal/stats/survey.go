// Package stats runs association tests between categorical survey answers.
package stats

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jonathan/role-recommender/internal/artifacts"
)

// Survey is a table of categorical survey answers, one column per question.
type Survey struct {
	columns []string
	index   map[string]int
	rows    [][]string
	names   *artifacts.NameMap
}

// UnknownColumnError reports a column name that is not in the survey.
type UnknownColumnError struct {
	Column    string
	Available []string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column %q (available: %s)", e.Column, strings.Join(e.Available, ", "))
}

// NewSurvey builds a survey from a header and rows of equal width.
func NewSurvey(columns []string, rows [][]string, names *artifacts.NameMap) (*Survey, error) {
	s := &Survey{index: make(map[string]int, len(columns)), names: names}
	for i, c := range columns {
		c = names.Short(c)
		if _, dup := s.index[c]; dup {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		s.index[c] = i
		s.columns = append(s.columns, c)
	}
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, fmt.Errorf("row %d has %d cells for %d columns", i+1, len(r), len(columns))
		}
	}
	s.rows = rows
	return s, nil
}

// LoadSurvey reads a semicolon separated survey table with a header row.
func LoadSurvey(path string, names *artifacts.NameMap) (*Survey, error) {
	records, err := artifacts.ReadTable(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &artifacts.DataUnavailableError{Artifact: artifacts.ArtifactSurvey, Path: path, Message: "file not found", Cause: err}
		}
		return nil, &artifacts.DataUnavailableError{Artifact: artifacts.ArtifactSurvey, Path: path, Message: "failed to read file", Cause: err}
	}
	if len(records) < 2 {
		return nil, &artifacts.DataUnavailableError{Artifact: artifacts.ArtifactSurvey, Path: path, Message: "expected a header row and at least one answer row"}
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = artifacts.NormalizeName(h)
	}
	rows := make([][]string, 0, len(records)-1)
	for _, r := range records[1:] {
		row := make([]string, len(header))
		for i := range header {
			if i < len(r) {
				row[i] = strings.TrimSpace(r[i])
			}
		}
		rows = append(rows, row)
	}

	s, err := NewSurvey(header, rows, names)
	if err != nil {
		return nil, &artifacts.DataUnavailableError{Artifact: artifacts.ArtifactSurvey, Path: path, Message: "malformed table", Cause: err}
	}
	return s, nil
}

// Columns returns the column names in file order.
func (s *Survey) Columns() []string {
	return append([]string(nil), s.columns...)
}

// Len returns the number of answer rows.
func (s *Survey) Len() int {
	return len(s.rows)
}

// Column returns the answers of one column. The name may be a short name or a full question text.
func (s *Survey) Column(name string) ([]string, error) {
	idx, ok := s.index[artifacts.NormalizeName(name)]
	if !ok {
		idx, ok = s.index[s.names.Short(name)]
	}
	if !ok {
		return nil, &UnknownColumnError{Column: name, Available: s.Columns()}
	}
	out := make([]string, len(s.rows))
	for i, r := range s.rows {
		out[i] = r[idx]
	}
	return out, nil
}
