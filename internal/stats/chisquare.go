package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrDegenerateTable is returned when a contingency table has fewer than two rows or columns.
var ErrDegenerateTable = errors.New("contingency table needs at least two rows and two columns")

// Contingency is a cross tabulation of two categorical columns. Rows hold the values of
// the ordinate column, columns the values of the abscissa column, both sorted.
type Contingency struct {
	RowLabels []string `json:"row_labels"`
	ColLabels []string `json:"col_labels"`
	Counts    [][]int  `json:"counts"`
	Total     int      `json:"total"`
}

// Crosstab counts co-occurrences of y (rows) and x (columns). Pairs where either value
// is blank are skipped.
func Crosstab(y, x []string) (*Contingency, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("columns have different lengths: %d and %d", len(y), len(x))
	}

	rowSet := make(map[string]struct{})
	colSet := make(map[string]struct{})
	for i := range x {
		if x[i] == "" || y[i] == "" {
			continue
		}
		rowSet[y[i]] = struct{}{}
		colSet[x[i]] = struct{}{}
	}

	t := &Contingency{RowLabels: sortedKeys(rowSet), ColLabels: sortedKeys(colSet)}
	rowIdx := indexOf(t.RowLabels)
	colIdx := indexOf(t.ColLabels)
	t.Counts = make([][]int, len(t.RowLabels))
	for i := range t.Counts {
		t.Counts[i] = make([]int, len(t.ColLabels))
	}
	for i := range x {
		if x[i] == "" || y[i] == "" {
			continue
		}
		t.Counts[rowIdx[y[i]]][colIdx[x[i]]]++
		t.Total++
	}
	return t, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func indexOf(labels []string) map[string]int {
	m := make(map[string]int, len(labels))
	for i, l := range labels {
		m[l] = i
	}
	return m
}

// ChiSquareResult is the outcome of a chi-square test of independence.
type ChiSquareResult struct {
	Statistic float64     `json:"chi2"`
	PValue    float64     `json:"p_value"`
	DoF       int         `json:"dof"`
	Expected  [][]float64 `json:"expected"`
	// Corrected is set when Yates' continuity correction was applied (one degree of freedom).
	Corrected bool `json:"yates_corrected"`
}

// ChiSquare runs Pearson's chi-square test of independence on counts. With one degree of
// freedom each observed count is first moved up to 0.5 towards its expected count.
func ChiSquare(counts [][]int) (*ChiSquareResult, error) {
	r := len(counts)
	if r < 2 || len(counts[0]) < 2 {
		return nil, ErrDegenerateTable
	}
	c := len(counts[0])

	rowSums := make([]float64, r)
	colSums := make([]float64, c)
	total := 0.0
	for i, row := range counts {
		if len(row) != c {
			return nil, fmt.Errorf("row %d has %d columns, expected %d", i, len(row), c)
		}
		for j, v := range row {
			rowSums[i] += float64(v)
			colSums[j] += float64(v)
			total += float64(v)
		}
	}
	for _, s := range rowSums {
		if s == 0 {
			return nil, fmt.Errorf("%w: empty row", ErrDegenerateTable)
		}
	}
	for _, s := range colSums {
		if s == 0 {
			return nil, fmt.Errorf("%w: empty column", ErrDegenerateTable)
		}
	}

	res := &ChiSquareResult{DoF: (r - 1) * (c - 1)}
	res.Corrected = res.DoF == 1
	res.Expected = make([][]float64, r)
	for i := range counts {
		res.Expected[i] = make([]float64, c)
		for j, v := range counts[i] {
			e := rowSums[i] * colSums[j] / total
			res.Expected[i][j] = e

			o := float64(v)
			if res.Corrected {
				diff := e - o
				o += math.Copysign(math.Min(0.5, math.Abs(diff)), diff)
			}
			res.Statistic += (o - e) * (o - e) / e
		}
	}
	res.PValue = distuv.ChiSquared{K: float64(res.DoF)}.Survival(res.Statistic)
	return res, nil
}

// CramersV returns the effect size of a chi-square statistic for an r×c table with n observations.
func CramersV(chi2 float64, n, rows, cols int) (float64, error) {
	k := min(rows, cols) - 1
	if k < 1 || n == 0 {
		return 0, ErrDegenerateTable
	}
	return math.Sqrt(chi2 / (float64(n) * float64(k))), nil
}

// Association is the result of testing two survey columns for independence.
type Association struct {
	X        string       `json:"x"`
	Y        string       `json:"y"`
	Table    *Contingency `json:"contingency_table"`
	CramersV float64      `json:"cramers_v"`
	ChiSquareResult
}

// Associate cross-tabulates column y against column x and tests them for independence.
func Associate(s *Survey, x, y string) (*Association, error) {
	xs, err := s.Column(x)
	if err != nil {
		return nil, err
	}
	ys, err := s.Column(y)
	if err != nil {
		return nil, err
	}

	table, err := Crosstab(ys, xs)
	if err != nil {
		return nil, err
	}
	chi, err := ChiSquare(table.Counts)
	if err != nil {
		return nil, fmt.Errorf("%s by %s: %w", y, x, err)
	}
	v, err := CramersV(chi.Statistic, table.Total, len(table.RowLabels), len(table.ColLabels))
	if err != nil {
		return nil, err
	}
	return &Association{X: x, Y: y, Table: table, CramersV: v, ChiSquareResult: *chi}, nil
}
