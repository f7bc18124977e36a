package recommend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/role-recommender/internal/artifacts"
	"github.com/jonathan/role-recommender/internal/ranking"
	"github.com/jonathan/role-recommender/internal/scenario"
	"github.com/jonathan/role-recommender/internal/scoring"
	"github.com/jonathan/role-recommender/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dataDir = filepath.Join("..", "..", "testdata", "data")

func newTestEngine(t *testing.T, cfg artifacts.CatalogConfig) *Engine {
	t.Helper()
	if cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	cat, err := artifacts.LoadCatalog(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cat.Close() })
	return NewEngine(cat)
}

func TestEngine_LabelSets(t *testing.T) {
	e := newTestEngine(t, artifacts.CatalogConfig{})

	summaries := e.LabelSets()
	require.Len(t, summaries, 2)

	assert.Equal(t, types.LabelSetBroad, summaries[0].LabelSet)
	assert.True(t, summaries[0].Available)
	assert.True(t, summaries[0].CanScore)
	assert.Equal(t, 6, summaries[0].NumFactors)

	assert.Equal(t, types.LabelSetSpecific, summaries[1].LabelSet)
	assert.Len(t, summaries[1].Warnings, 1)
}

func TestEngine_Factors(t *testing.T) {
	e := newTestEngine(t, artifacts.CatalogConfig{})

	t.Run("by class name", func(t *testing.T) {
		result, err := e.Factors(types.FactorsRequest{LabelSet: types.LabelSetBroad, Class: "Tech", N: 3})
		require.NoError(t, err)

		names := make([]string, len(result.Factors))
		for i, f := range result.Factors {
			names[i] = f.Feature
		}
		assert.Equal(t, []string{"Years of Experience", "SQL", "Company Size"}, names)
	})

	t.Run("by class id with default count", func(t *testing.T) {
		result, err := e.Factors(types.FactorsRequest{LabelSet: types.LabelSetSpecific, Class: "2"})
		require.NoError(t, err)
		assert.Equal(t, "Software Engineer", result.Class)
		assert.Len(t, result.Factors, DefaultFactors)
		assert.Equal(t, "Years of Experience", result.Factors[0].Feature)
	})

	t.Run("unknown class", func(t *testing.T) {
		_, err := e.Factors(types.FactorsRequest{LabelSet: types.LabelSetBroad, Class: "Astronaut", N: 3})
		var classErr *ranking.UnknownClassError
		assert.ErrorAs(t, err, &classErr)
	})

	t.Run("too many factors", func(t *testing.T) {
		_, err := e.Factors(types.FactorsRequest{LabelSet: types.LabelSetBroad, Class: "Tech", N: 11})
		var validationErrs validator.ValidationErrors
		assert.ErrorAs(t, err, &validationErrs)
	})
}

func TestEngine_FactorsWithoutClassifier(t *testing.T) {
	e := newTestEngine(t, artifacts.CatalogConfig{
		LabelSets: map[types.LabelSet]artifacts.Paths{types.LabelSetBroad: {Classifier: "missing.json"}},
	})

	result, err := e.Factors(types.FactorsRequest{LabelSet: types.LabelSetBroad, Class: "Tech", N: 2})
	require.NoError(t, err)
	assert.Len(t, result.Factors, 2)

	_, err = e.Compare(types.LabelSetBroad, types.CompareRequest{Class: "Tech"})
	require.Error(t, err)
	assert.True(t, artifacts.IsDataUnavailable(err))
}

func TestEngine_Compare(t *testing.T) {
	e := newTestEngine(t, artifacts.CatalogConfig{})

	cmp, err := e.Compare(types.LabelSetBroad, types.CompareRequest{
		Class:     "Tech",
		Overrides: map[string]string{"Years of Experience": "10-20"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Tech", cmp.Class)
	assert.Equal(t, "1", cmp.Benchmark.ClassID)
	assert.Equal(t, 37.75, cmp.Benchmark.Percent)
	assert.Equal(t, 57.44, cmp.User.Percent)
	assert.Equal(t, 19.69, cmp.Delta)
	assert.Equal(t, "2-5", cmp.Vectors.Benchmark["Years of Experience"])
	assert.Equal(t, "10-20", cmp.Vectors.User["Years of Experience"])
	assert.Equal(t, cmp.Vectors.Benchmark["Education"], cmp.Vectors.User["Education"])
	assert.Empty(t, cmp.Notes)
}

func TestEngine_CompareComplementaryClasses(t *testing.T) {
	e := newTestEngine(t, artifacts.CatalogConfig{})

	tech, err := e.Compare(types.LabelSetBroad, types.CompareRequest{Class: "Tech"})
	require.NoError(t, err)
	ds, err := e.Compare(types.LabelSetBroad, types.CompareRequest{Class: "0"})
	require.NoError(t, err)

	assert.Equal(t, "Data Science", ds.Class)
	assert.InDelta(t, 100, tech.Benchmark.Percent+ds.Benchmark.Percent, 0.011)
	assert.Zero(t, tech.Delta)
}

func TestEngine_CompareInvalidOverride(t *testing.T) {
	e := newTestEngine(t, artifacts.CatalogConfig{})

	cmp, err := e.Compare(types.LabelSetBroad, types.CompareRequest{
		Class:     "Tech",
		Overrides: map[string]string{"Education": "PhD-in-Astrology"},
	})
	require.NoError(t, err)

	require.Len(t, cmp.Notes, 1)
	assert.Equal(t, scenario.ReasonInvalidValue, cmp.Notes[0].Reason)
	assert.Equal(t, "Master", cmp.Vectors.User["Education"])
	assert.Equal(t, cmp.Benchmark.Percent, cmp.User.Percent)
}

func TestEngine_CompareEmptyOverrideFallsBack(t *testing.T) {
	e := newTestEngine(t, artifacts.CatalogConfig{})

	cmp, err := e.Compare(types.LabelSetBroad, types.CompareRequest{
		Class: "Tech",
		Overrides: map[string]string{
			"Years of Experience": "10-20",
			"Education":           "",
		},
	})
	require.NoError(t, err)

	require.Len(t, cmp.Notes, 1)
	assert.Equal(t, "Education", cmp.Notes[0].Feature)
	assert.Equal(t, scenario.ReasonInvalidValue, cmp.Notes[0].Reason)
	assert.Equal(t, "Master", cmp.Vectors.User["Education"])
	assert.Equal(t, "10-20", cmp.Vectors.User["Years of Experience"])
	assert.Equal(t, 57.44, cmp.User.Percent)
	assert.Equal(t, []string{"Years of Experience"}, cmp.Changed)
}

func TestEngine_CompareUnknownClass(t *testing.T) {
	e := newTestEngine(t, artifacts.CatalogConfig{})

	_, err := e.Compare(types.LabelSetSpecific, types.CompareRequest{Class: "Astronaut"})
	var classErr *scoring.UnknownClassError
	assert.ErrorAs(t, err, &classErr)
}

func TestEngine_CompareSpecificSumsToHundred(t *testing.T) {
	e := newTestEngine(t, artifacts.CatalogConfig{})

	total := 0.0
	for _, class := range types.LabelSetSpecific.Classes() {
		cmp, err := e.Compare(types.LabelSetSpecific, types.CompareRequest{Class: class.Name})
		require.NoError(t, err)
		total += cmp.Benchmark.Percent
	}
	assert.InDelta(t, 100, total, 0.02)
}

func TestEngine_Options(t *testing.T) {
	e := newTestEngine(t, artifacts.CatalogConfig{})

	all, err := e.Options(types.LabelSetBroad, nil)
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, "Years of Experience", all[0].Feature)
	assert.Equal(t, "2-5", all[0].Default)

	some, err := e.Options(types.LabelSetSpecific, []string{"Education"})
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.Equal(t, "No degree", some[0].Default)

	_, err = e.Options(types.LabelSetBroad, []string{"Salary"})
	var featureErr *UnknownFeatureError
	assert.ErrorAs(t, err, &featureErr)
}

func TestEngine_Performance(t *testing.T) {
	e := newTestEngine(t, artifacts.CatalogConfig{})

	perf, err := e.Performance(types.LabelSetBroad)
	require.NoError(t, err)
	require.NotNil(t, perf.Confusion)
	assert.Equal(t, 91.5, perf.RowPercentages[0][0])

	perf, err = e.Performance(types.LabelSetSpecific)
	require.NoError(t, err)
	assert.NotEmpty(t, perf.UnavailableNote)
}

func TestEngine_DataUnavailable(t *testing.T) {
	e := newTestEngine(t, artifacts.CatalogConfig{DataDir: t.TempDir()})

	_, err := e.Factors(types.FactorsRequest{LabelSet: types.LabelSetBroad, Class: "Tech", N: 3})
	assert.True(t, artifacts.IsDataUnavailable(err))

	summaries := e.LabelSets()
	assert.False(t, summaries[0].Available)
	assert.NotEmpty(t, summaries[0].Error)
}
