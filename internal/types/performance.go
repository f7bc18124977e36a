package types

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// ClassMetrics holds precision, recall and F1 for a single class as produced by the training pipeline.
type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1Score   float64 `json:"f1-score"`
	Support   float64 `json:"support"`
}

// ClassificationReport is a per-class metrics report plus the overall accuracy.
type ClassificationReport struct {
	Classes     map[string]ClassMetrics `json:"classes"`
	Accuracy    float64                 `json:"accuracy"`
	MacroAvg    *ClassMetrics           `json:"macro_avg,omitempty"`
	WeightedAvg *ClassMetrics           `json:"weighted_avg,omitempty"`
}

// UnmarshalJSON decodes the flat report layout, where "accuracy" is a number
// and every other key is either a class label or an average.
func (r *ClassificationReport) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.Classes = make(map[string]ClassMetrics)
	for key, value := range raw {
		switch key {
		case "accuracy":
			if err := json.Unmarshal(value, &r.Accuracy); err != nil {
				return fmt.Errorf("accuracy: %w", err)
			}
		case "macro avg", "weighted avg":
			var m ClassMetrics
			if err := json.Unmarshal(value, &m); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			if key == "macro avg" {
				r.MacroAvg = &m
			} else {
				r.WeightedAvg = &m
			}
		default:
			var m ClassMetrics
			if err := json.Unmarshal(value, &m); err != nil {
				return fmt.Errorf("class %s: %w", key, err)
			}
			r.Classes[key] = m
		}
	}
	return nil
}

// ClassLabels returns the class keys of the report in sorted order.
func (r *ClassificationReport) ClassLabels() []string {
	labels := make([]string, 0, len(r.Classes))
	for k := range r.Classes {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	return labels
}

// ConfusionMatrix holds true-label rows against predicted-label columns.
type ConfusionMatrix struct {
	Labels []string `json:"labels"`
	Matrix [][]int  `json:"matrix"`
}

// Validate checks that the matrix is square and matches the label count.
func (m *ConfusionMatrix) Validate() error {
	if len(m.Labels) == 0 {
		return fmt.Errorf("confusion matrix has no labels")
	}
	if len(m.Matrix) != len(m.Labels) {
		return fmt.Errorf("confusion matrix has %d rows for %d labels", len(m.Matrix), len(m.Labels))
	}
	for i, row := range m.Matrix {
		if len(row) != len(m.Labels) {
			return fmt.Errorf("confusion matrix row %d has %d columns for %d labels", i, len(row), len(m.Labels))
		}
	}
	return nil
}

// RowPercentages returns each cell as a percentage of its row total, rounded to one decimal.
// Rows with no samples yield zeros.
func (m *ConfusionMatrix) RowPercentages() [][]float64 {
	out := make([][]float64, len(m.Matrix))
	for i, row := range m.Matrix {
		total := 0
		for _, c := range row {
			total += c
		}
		out[i] = make([]float64, len(row))
		if total == 0 {
			continue
		}
		for j, c := range row {
			out[i][j] = math.Round(float64(c)/float64(total)*1000) / 10
		}
	}
	return out
}

// ModelPerformance bundles the evaluation artifacts of one label set.
type ModelPerformance struct {
	LabelSet        LabelSet              `json:"label_set"`
	Report          *ClassificationReport `json:"classification_report,omitempty"`
	Confusion       *ConfusionMatrix      `json:"confusion_matrix,omitempty"`
	RowPercentages  [][]float64           `json:"row_percentages,omitempty"`
	UnavailableNote string                `json:"unavailable,omitempty"`
}
