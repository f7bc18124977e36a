package artifacts

import (
	"errors"
	"os"
)

// NameMap maps verbose survey question texts to their short display names.
type NameMap struct {
	short map[string]string
}

// NewNameMap builds a NameMap from long→short pairs.
func NewNameMap(pairs map[string]string) *NameMap {
	m := &NameMap{short: make(map[string]string, len(pairs))}
	for long, short := range pairs {
		m.short[NormalizeName(long)] = NormalizeName(short)
	}
	return m
}

// LoadNameMap reads the question map file: no header, row 0 holds the long texts
// and row 1 the short texts, column by column. An empty path yields an identity map.
func LoadNameMap(path string) (*NameMap, error) {
	if path == "" {
		return NewNameMap(nil), nil
	}

	records, err := ReadTable(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, unavailable(ArtifactQuestionMap, path, "file not found", err)
		}
		return nil, unavailable(ArtifactQuestionMap, path, "failed to read file", err)
	}
	if len(records) < 2 {
		return nil, unavailable(ArtifactQuestionMap, path, "expected a row of long texts and a row of short texts", nil)
	}

	pairs := make(map[string]string)
	long, short := records[0], records[1]
	for i := range long {
		l, s := cell(long, i), cell(short, i)
		if l == "" || s == "" {
			continue
		}
		pairs[l] = s
	}
	return NewNameMap(pairs), nil
}

// Short returns the display name for a question; unmapped names pass through unchanged.
func (m *NameMap) Short(name string) string {
	n := NormalizeName(name)
	if m == nil {
		return n
	}
	if s, ok := m.short[n]; ok {
		return s
	}
	return n
}

// Len returns the number of mapped questions.
func (m *NameMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.short)
}
