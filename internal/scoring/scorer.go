// Package scoring turns a classifier's probability output into role scores.
package scoring

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jonathan/role-recommender/internal/types"
)

// Classifier is a trained multiclass model that estimates class probabilities for one row.
type Classifier interface {
	// Classes returns the classifier's own class labels in output order.
	// Labels may be numeric or textual.
	Classes() []any
	// PredictProba returns one probability per class, aligned with Classes.
	PredictProba(vector types.FeatureVector) ([]float64, error)
}

// UnknownClassError reports a target class that the classifier does not know.
type UnknownClassError struct {
	ClassID string
	Known   []string
}

func (e *UnknownClassError) Error() string {
	return fmt.Sprintf("unknown class %q (classifier reports %s)", e.ClassID, strings.Join(e.Known, ", "))
}

// PredictionError reports a classifier failure or a probability output that does not
// match the classifier's own classes.
type PredictionError struct {
	Message string
	Cause   error
}

func (e *PredictionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("prediction error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("prediction error: %s", e.Message)
}

func (e *PredictionError) Unwrap() error {
	return e.Cause
}

// NormalizeClassLabel converts a class label of any representation to its canonical
// string form: integers and integral floats print without a fractional part, strings
// are trimmed and integral numeric strings are canonicalized the same way.
func NormalizeClassLabel(label any) string {
	switch v := label.(type) {
	case string:
		return normalizeNumericString(v)
	case json.Number:
		return normalizeNumericString(v.String())
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return formatFloat(float64(v))
	case float64:
		return formatFloat(v)
	case fmt.Stringer:
		return normalizeNumericString(v.String())
	default:
		return normalizeNumericString(fmt.Sprint(v))
	}
}

func normalizeNumericString(s string) string {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil && !strings.ContainsAny(s, "xXpP") {
		return formatFloat(f)
	}
	return s
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ClassIndex locates classID among the classifier's classes by normalized label.
func ClassIndex(c Classifier, classID any) (int, error) {
	target := NormalizeClassLabel(classID)
	classes := c.Classes()
	known := make([]string, len(classes))
	for i, label := range classes {
		known[i] = NormalizeClassLabel(label)
		if known[i] == target {
			return i, nil
		}
	}
	return -1, &UnknownClassError{ClassID: target, Known: known}
}

// Probability returns the predicted probability of classID for vector.
func Probability(c Classifier, vector types.FeatureVector, classID any) (float64, error) {
	idx, err := ClassIndex(c, classID)
	if err != nil {
		return 0, err
	}

	proba, err := c.PredictProba(vector)
	if err != nil {
		return 0, &PredictionError{Message: "classifier failed", Cause: err}
	}
	if len(proba) != len(c.Classes()) {
		return 0, &PredictionError{
			Message: fmt.Sprintf("classifier returned %d probabilities for %d classes", len(proba), len(c.Classes())),
		}
	}
	return proba[idx], nil
}

// Score returns the predicted probability of classID for vector as a percentage,
// rounded to two decimals.
func Score(c Classifier, vector types.FeatureVector, classID any) (float64, error) {
	p, err := Probability(c, vector, classID)
	if err != nil {
		return 0, err
	}
	return ToPercent(p), nil
}

// ScoreClass scores a label-set class and returns the full RoleScore.
func ScoreClass(c Classifier, vector types.FeatureVector, class types.ClassInfo) (types.RoleScore, error) {
	p, err := Probability(c, vector, class.ID)
	if err != nil {
		return types.RoleScore{}, err
	}
	return types.RoleScore{
		Class:       class.Name,
		ClassID:     class.ID,
		Probability: p,
		Percent:     ToPercent(p),
	}, nil
}

// ToPercent converts a probability to a percentage rounded to two decimals.
func ToPercent(p float64) float64 {
	return math.Round(p*100*100) / 100
}
