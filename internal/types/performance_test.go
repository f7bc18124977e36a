package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassificationReport_UnmarshalJSON(t *testing.T) {
	data := []byte(`{
		"0": {"precision": 0.8, "recall": 0.9, "f1-score": 0.85, "support": 1368},
		"1": {"precision": 0.6, "recall": 0.45, "f1-score": 0.51, "support": 419},
		"accuracy": 0.79,
		"macro avg": {"precision": 0.7, "recall": 0.68, "f1-score": 0.68, "support": 1787},
		"weighted avg": {"precision": 0.77, "recall": 0.79, "f1-score": 0.77, "support": 1787}
	}`)

	var report ClassificationReport
	require.NoError(t, json.Unmarshal(data, &report))

	assert.InDelta(t, 0.79, report.Accuracy, 1e-9)
	assert.Equal(t, []string{"0", "1"}, report.ClassLabels())
	assert.InDelta(t, 0.45, report.Classes["1"].Recall, 1e-9)
	require.NotNil(t, report.MacroAvg)
	require.NotNil(t, report.WeightedAvg)
	assert.InDelta(t, 1787, report.WeightedAvg.Support, 1e-9)
}

func TestClassificationReport_UnmarshalJSON_BadClass(t *testing.T) {
	var report ClassificationReport
	err := json.Unmarshal([]byte(`{"0": 12}`), &report)
	assert.Error(t, err)
}

func TestConfusionMatrix_RowPercentages(t *testing.T) {
	m := ConfusionMatrix{
		Labels: []string{"Data Science", "Tech"},
		Matrix: [][]int{{1252, 116}, {230, 189}},
	}
	require.NoError(t, m.Validate())

	pct := m.RowPercentages()
	assert.InDelta(t, 91.5, pct[0][0], 1e-9)
	assert.InDelta(t, 54.9, pct[1][0], 1e-9)
}

func TestConfusionMatrix_Validate(t *testing.T) {
	tests := []struct {
		name string
		m    ConfusionMatrix
	}{
		{"no labels", ConfusionMatrix{}},
		{"row count", ConfusionMatrix{Labels: []string{"a", "b"}, Matrix: [][]int{{1, 2}}}},
		{"column count", ConfusionMatrix{Labels: []string{"a", "b"}, Matrix: [][]int{{1, 2}, {3}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.m.Validate())
		})
	}
}

func TestConfusionMatrix_EmptyRow(t *testing.T) {
	m := ConfusionMatrix{Labels: []string{"a", "b"}, Matrix: [][]int{{0, 0}, {1, 3}}}
	pct := m.RowPercentages()
	assert.Equal(t, []float64{0, 0}, pct[0])
	assert.InDelta(t, 75.0, pct[1][1], 1e-9)
}
