package artifacts

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Separator is the field separator used by every tabular artifact of the training pipeline.
const Separator = ';'

// ReadTable reads a semicolon separated file into raw records. A leading UTF-8
// byte order mark is dropped, so files written with "utf-8-sig" load unchanged.
func ReadTable(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	r := csv.NewReader(transform.NewReader(f, decoder))
	r.Comma = Separator
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return records, nil
}

// NormalizeName canonicalizes a feature or question name for matching.
func NormalizeName(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}

// isIndexColumn reports whether a header cell is a pandas index column written alongside the data.
func isIndexColumn(header string) bool {
	return header == "" || strings.HasPrefix(header, "Unnamed:")
}

// cell returns the trimmed value at position i, or "" when the record is short.
func cell(record []string, i int) string {
	if i < len(record) {
		return strings.TrimSpace(record[i])
	}
	return ""
}
