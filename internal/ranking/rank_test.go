package ranking

import (
	"math"
	"testing"

	"github.com/jonathan/role-recommender/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTable struct {
	classes []string
	values  map[string]map[string]float64
}

func (f *fakeTable) LabelSet() types.LabelSet { return types.LabelSetBroad }
func (f *fakeTable) Classes() []string        { return f.classes }

func (f *fakeTable) HasClass(class string) bool {
	for _, c := range f.classes {
		if c == class {
			return true
		}
	}
	return false
}

func (f *fakeTable) Magnitude(feature, class string) (float64, bool) {
	row, ok := f.values[feature]
	if !ok {
		return 0, false
	}
	v, ok := row[class]
	return v, ok
}

func (f *fakeTable) Question(feature string) string { return "Q: " + feature }

type fakeOrder []string

func (o fakeOrder) OrderedFeatures() []string { return o }

func broadTable() *fakeTable {
	return &fakeTable{
		classes: []string{"Data Science", "Tech"},
		values: map[string]map[string]float64{
			"Years of Experience": {"Data Science": 0.12, "Tech": 0.30},
			"Education":           {"Data Science": 0.25, "Tech": 0.08},
			"Python":              {"Data Science": 0.40, "Tech": 0.05},
			"SQL":                 {"Data Science": 0.18, "Tech": 0.30},
			"ML Experience":       {"Data Science": 0.33, "Tech": 0.02},
			"Company Size":        {"Data Science": 0.01, "Tech": 0.11},
			"Country":             {"Data Science": 0.50, "Tech": 0.90},
		},
	}
}

var canonical = fakeOrder{"Years of Experience", "Education", "Python", "SQL", "ML Experience", "Company Size"}

func features(r *types.RankedFeatures) []string {
	out := make([]string, len(r.Factors))
	for i, f := range r.Factors {
		out[i] = f.Feature
	}
	return out
}

func TestSelect_TopThreeForClass(t *testing.T) {
	tests := []struct {
		class string
		want  []string
	}{
		{class: "Tech", want: []string{"Years of Experience", "SQL", "Company Size"}},
		{class: "Data Science", want: []string{"Python", "ML Experience", "Education"}},
	}

	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			result, err := Select(broadTable(), canonical, tt.class, 3)
			require.NoError(t, err)

			assert.Equal(t, tt.want, features(result))
			assert.Equal(t, []string(canonical), result.FeatureOrder)
			assert.Equal(t, tt.class, result.Class)
			assert.Equal(t, types.LabelSetBroad, result.LabelSet)
		})
	}
}

func TestSelect_ExcludesFeaturesWithoutDomain(t *testing.T) {
	result, err := Select(broadTable(), canonical, "Tech", 10)
	require.NoError(t, err)

	assert.NotContains(t, features(result), "Country")
	assert.Len(t, result.Factors, 6)
}

func TestSelect_TiesKeepCanonicalOrder(t *testing.T) {
	result, err := Select(broadTable(), canonical, "Tech", 2)
	require.NoError(t, err)

	require.Len(t, result.Factors, 2)
	assert.Equal(t, "Years of Experience", result.Factors[0].Feature)
	assert.Equal(t, 0, result.Factors[0].Order)
	assert.Equal(t, "SQL", result.Factors[1].Feature)
	assert.Equal(t, 3, result.Factors[1].Order)

	reversed := fakeOrder{"SQL", "Years of Experience"}
	result, err = Select(broadTable(), reversed, "Tech", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"SQL", "Years of Experience"}, features(result))
}

func TestSelect_ClampsN(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want int
	}{
		{name: "zero becomes one", n: 0, want: 1},
		{name: "negative becomes one", n: -4, want: 1},
		{name: "larger than candidates", n: 50, want: 6},
		{name: "within range", n: 4, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Select(broadTable(), canonical, "Data Science", tt.n)
			require.NoError(t, err)
			assert.Len(t, result.Factors, tt.want)
			assert.Equal(t, tt.n, result.Requested)
		})
	}
}

func TestSelect_NoCandidates(t *testing.T) {
	result, err := Select(broadTable(), fakeOrder{"Salary"}, "Tech", 5)
	require.NoError(t, err)
	assert.Empty(t, result.Factors)
	assert.NotNil(t, result.Factors)
	assert.Empty(t, result.FeatureOrder)
}

func TestSelect_UnknownClass(t *testing.T) {
	_, err := Select(broadTable(), canonical, "Astronaut", 3)
	require.Error(t, err)

	var classErr *UnknownClassError
	require.ErrorAs(t, err, &classErr)
	assert.Equal(t, "Astronaut", classErr.Class)
	assert.Equal(t, []string{"Data Science", "Tech"}, classErr.Known)
}

func TestSelect_CarriesQuestionText(t *testing.T) {
	result, err := Select(broadTable(), canonical, "Data Science", 1)
	require.NoError(t, err)
	assert.Equal(t, "Q: Python", result.Factors[0].Question)
	assert.Equal(t, 0.40, result.Factors[0].Magnitude)
}

func TestSelect_SkipsNonFiniteMagnitudes(t *testing.T) {
	table := &fakeTable{
		classes: []string{"Tech"},
		values: map[string]map[string]float64{
			"a": {"Tech": 0.1},
			"b": {"Tech": math.NaN()},
			"c": {"Tech": 0.9},
			"d": {"Tech": math.Inf(1)},
		},
	}

	result, err := Select(table, fakeOrder{"a", "b", "c", "d"}, "Tech", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, features(result))
	assert.Equal(t, []string{"a", "c"}, result.FeatureOrder)
}
