package model

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/role-recommender/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rankSource map[string][]string

func (s rankSource) Index(feature, value string) (int, bool) {
	for i, v := range s[feature] {
		if v == value {
			return i, true
		}
	}
	return 0, false
}

var testDomains = rankSource{
	"Years of Experience": {"0-2", "2-5", "5-10", "10-20", "20+"},
	"Python":              {"No", "Yes"},
}

func benchmarkVector() types.FeatureVector {
	return types.FeatureVector{"Years of Experience": "2-5", "Python": "Yes"}
}

func TestEncoder_Encode(t *testing.T) {
	enc := NewEncoder([]string{"Python", "Years of Experience", "Education"}, testDomains)

	row := enc.Encode(types.FeatureVector{"Python": "Yes", "Years of Experience": "unknown"})

	require.Len(t, row, 3)
	assert.Equal(t, 1.0, row[0])
	assert.True(t, math.IsNaN(row[1]), "illegal value should encode as NaN")
	assert.True(t, math.IsNaN(row[2]), "absent feature should encode as NaN")
}

func TestEncoder_NilSource(t *testing.T) {
	enc := NewEncoder([]string{"Python"}, nil)
	row := enc.Encode(types.FeatureVector{"Python": "Yes"})
	assert.True(t, math.IsNaN(row[0]))
}

func TestLoadTreeEnsemble_Multiclass(t *testing.T) {
	e, err := LoadTreeEnsemble(filepath.Join("testdata", "model_multiclass.json"), testDomains)
	require.NoError(t, err)

	assert.Equal(t, []any{float64(0), float64(1)}, e.Classes())
	assert.Equal(t, []string{"Years of Experience", "Python"}, e.Features())

	proba, err := e.PredictProba(benchmarkVector())
	require.NoError(t, err)
	require.Len(t, proba, 2)
	assert.InDelta(t, 1.0, proba[0]+proba[1], 1e-12)
	assert.InDelta(t, 0.37754, proba[1], 1e-5)

	user := benchmarkVector()
	user["Years of Experience"] = "10-20"
	proba, err = e.PredictProba(user)
	require.NoError(t, err)
	assert.InDelta(t, 0.57444, proba[1], 1e-5)
}

func TestLoadTreeEnsemble_Logistic(t *testing.T) {
	e, err := LoadTreeEnsemble(filepath.Join("testdata", "model_binary.json"), testDomains)
	require.NoError(t, err)

	tests := []struct {
		name  string
		years string
		want  float64
	}{
		{name: "below split", years: "0-2", want: 0.37754},
		{name: "above split", years: "5-10", want: 0.62246},
		{name: "missing takes missing branch", years: "", want: 0.37754},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vector := types.FeatureVector{"Python": "No"}
			if tt.years != "" {
				vector["Years of Experience"] = tt.years
			}
			proba, err := e.PredictProba(vector)
			require.NoError(t, err)
			require.Len(t, proba, 2)
			assert.InDelta(t, tt.want, proba[1], 1e-5)
			assert.InDelta(t, 1-tt.want, proba[0], 1e-5)
		})
	}
}

func TestLoadTreeEnsemble_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTreeEnsemble(filepath.Join("testdata", "nope.json"), testDomains)
		require.Error(t, err)
		var loadErr *LoadError
		require.True(t, errors.As(err, &loadErr))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("schema rejects objective", func(t *testing.T) {
		_, err := LoadTreeEnsemble(filepath.Join("testdata", "model_bad_objective.json"), testDomains)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "schema validation failed")
	})
}

func leaf(id int, v float64) *Node {
	return &Node{NodeID: id, Leaf: &v}
}

func TestNewTreeEnsemble_Validation(t *testing.T) {
	split := func() *Node {
		return &Node{NodeID: 0, Split: "Python", SplitCondition: 0.5, Yes: 1, No: 2, Missing: 1,
			Children: []*Node{leaf(1, -0.1), leaf(2, 0.1)}}
	}

	tests := []struct {
		name    string
		def     *EnsembleFile
		wantErr string
	}{
		{
			name:    "single class",
			def:     &EnsembleFile{Objective: ObjectiveSoftprob, Classes: []any{"0"}, Features: []string{"Python"}, Trees: []*Node{split()}},
			wantErr: "at least two classes",
		},
		{
			name:    "num_class mismatch",
			def:     &EnsembleFile{Objective: ObjectiveSoftprob, NumClass: 3, Classes: []any{"0", "1"}, Features: []string{"Python"}, Trees: []*Node{split(), split()}},
			wantErr: "num_class",
		},
		{
			name:    "uneven trees",
			def:     &EnsembleFile{Objective: ObjectiveSoftmax, Classes: []any{"0", "1"}, Features: []string{"Python"}, Trees: []*Node{split()}},
			wantErr: "split evenly",
		},
		{
			name:    "logistic with three classes",
			def:     &EnsembleFile{Objective: ObjectiveLogistic, Classes: []any{"0", "1", "2"}, Features: []string{"Python"}, Trees: []*Node{split()}},
			wantErr: "needs two classes",
		},
		{
			name:    "unknown split feature",
			def:     &EnsembleFile{Objective: ObjectiveLogistic, Classes: []any{"0", "1"}, Features: []string{"SQL"}, Trees: []*Node{split()}},
			wantErr: "unknown feature",
		},
		{
			name: "dangling branch",
			def: &EnsembleFile{Objective: ObjectiveLogistic, Classes: []any{"0", "1"}, Features: []string{"Python"}, Trees: []*Node{
				{NodeID: 0, Split: "Python", SplitCondition: 0.5, Yes: 1, No: 7, Missing: 1, Children: []*Node{leaf(1, 0)}},
			}},
			wantErr: "missing node 7",
		},
		{
			name: "duplicate node id",
			def: &EnsembleFile{Objective: ObjectiveLogistic, Classes: []any{"0", "1"}, Features: []string{"Python"}, Trees: []*Node{
				{NodeID: 0, Split: "Python", SplitCondition: 0.5, Yes: 1, No: 1, Children: []*Node{leaf(1, 0), leaf(1, 1)}},
			}},
			wantErr: "duplicate node id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTreeEnsemble(tt.def, testDomains)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTreeEnsemble_Deterministic(t *testing.T) {
	e, err := LoadTreeEnsemble(filepath.Join("testdata", "model_multiclass.json"), testDomains)
	require.NoError(t, err)

	first, err := e.PredictProba(benchmarkVector())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := e.PredictProba(benchmarkVector())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestManifestPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "model_S.classes.json"), ManifestPath(filepath.Join("data", "model_S.onnx")))
}

func TestLoadManifest(t *testing.T) {
	m, err := LoadManifest(filepath.Join("testdata", "model_S.classes.json"))
	require.NoError(t, err)
	assert.Equal(t, []any{"0", "1", "2"}, m.Classes)
	assert.Equal(t, "float_input", m.Input)
	assert.Equal(t, defaultONNXOutput, m.Output)

	_, err = LoadManifest(filepath.Join("testdata", "bad.classes.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation failed")
}

func TestLoad_DispatchesOnExtension(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "model_multiclass.json"), testDomains, Options{})
	require.NoError(t, err)
	_, ok := c.(*TreeEnsemble)
	assert.True(t, ok)

	// The manifest is checked before the runtime is touched.
	_, err = Load(filepath.Join("testdata", "missing.onnx"), testDomains, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manifest not found")
}
