package model

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/goccy/go-json"
	"github.com/jonathan/role-recommender/internal/schemas"
	"github.com/jonathan/role-recommender/internal/types"
)

// Supported boosting objectives.
const (
	ObjectiveSoftprob = "multi:softprob"
	ObjectiveSoftmax  = "multi:softmax"
	ObjectiveLogistic = "binary:logistic"
)

// EnsembleFile is the on-disk layout of a gradient-boosted tree ensemble.
type EnsembleFile struct {
	Objective string   `json:"objective"`
	NumClass  int      `json:"num_class,omitempty"`
	BaseScore *float64 `json:"base_score,omitempty"`
	Classes   []any    `json:"classes"`
	Features  []string `json:"features"`
	Trees     []*Node  `json:"trees"`
}

// TreeEnsemble is a gradient-boosted multiclass classifier evaluated in process.
// It holds no mutable state and is safe for concurrent use.
type TreeEnsemble struct {
	objective string
	classes   []any
	baseScore float64
	encoder   *Encoder
	trees     []*tree
}

// NewTreeEnsemble compiles an ensemble definition. Multiclass objectives assign tree i
// to class i mod len(classes); the logistic objective requires exactly two classes.
func NewTreeEnsemble(def *EnsembleFile, source OrdinalSource) (*TreeEnsemble, error) {
	if len(def.Classes) < 2 {
		return nil, fmt.Errorf("ensemble needs at least two classes, got %d", len(def.Classes))
	}
	if def.NumClass > 0 && def.Objective != ObjectiveLogistic && def.NumClass != len(def.Classes) {
		return nil, fmt.Errorf("num_class %d does not match %d classes", def.NumClass, len(def.Classes))
	}

	switch def.Objective {
	case ObjectiveSoftprob, ObjectiveSoftmax:
		if len(def.Trees)%len(def.Classes) != 0 {
			return nil, fmt.Errorf("%d trees cannot be split evenly across %d classes", len(def.Trees), len(def.Classes))
		}
	case ObjectiveLogistic:
		if len(def.Classes) != 2 {
			return nil, fmt.Errorf("objective %s needs two classes, got %d", def.Objective, len(def.Classes))
		}
	default:
		return nil, fmt.Errorf("unsupported objective %q", def.Objective)
	}

	columns := make(map[string]int, len(def.Features))
	for i, f := range def.Features {
		if _, dup := columns[f]; dup {
			return nil, fmt.Errorf("duplicate feature %q", f)
		}
		columns[f] = i
	}

	e := &TreeEnsemble{
		objective: def.Objective,
		classes:   append([]any(nil), def.Classes...),
		baseScore: 0.5,
		encoder:   NewEncoder(def.Features, source),
		trees:     make([]*tree, 0, len(def.Trees)),
	}
	if def.BaseScore != nil {
		e.baseScore = *def.BaseScore
	}
	if e.objective == ObjectiveLogistic && (e.baseScore <= 0 || e.baseScore >= 1) {
		return nil, fmt.Errorf("base_score %v must lie in (0, 1) for %s", e.baseScore, e.objective)
	}

	for i, root := range def.Trees {
		t, err := compileTree(root, columns)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		e.trees = append(e.trees, t)
	}
	return e, nil
}

// LoadTreeEnsemble reads, schema-checks and compiles an ensemble file.
func LoadTreeEnsemble(path string, source OrdinalSource) (*TreeEnsemble, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &LoadError{Path: path, Message: "file not found", Cause: err}
		}
		return nil, &LoadError{Path: path, Message: "failed to read file", Cause: err}
	}
	if err := schemas.ValidateDocument(schemas.Classifier, data); err != nil {
		return nil, &LoadError{Path: path, Message: "schema validation failed", Cause: err}
	}

	var def EnsembleFile
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, &LoadError{Path: path, Message: "failed to unmarshal JSON", Cause: err}
	}

	e, err := NewTreeEnsemble(&def, source)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "invalid ensemble", Cause: err}
	}
	return e, nil
}

// Classes returns the class labels in output order.
func (e *TreeEnsemble) Classes() []any {
	return append([]any(nil), e.classes...)
}

// Features returns the model input order.
func (e *TreeEnsemble) Features() []string {
	return e.encoder.Features()
}

// PredictProba returns one probability per class for vector.
func (e *TreeEnsemble) PredictProba(vector types.FeatureVector) ([]float64, error) {
	row := e.encoder.Encode(vector)

	if e.objective == ObjectiveLogistic {
		margin := math.Log(e.baseScore / (1 - e.baseScore))
		for _, t := range e.trees {
			margin += t.predict(row)
		}
		p := sigmoid(margin)
		return []float64{1 - p, p}, nil
	}

	k := len(e.classes)
	margins := make([]float64, k)
	for i := range margins {
		margins[i] = e.baseScore
	}
	for i, t := range e.trees {
		margins[i%k] += t.predict(row)
	}
	return softmax(margins), nil
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func softmax(margins []float64) []float64 {
	maxMargin := math.Inf(-1)
	for _, m := range margins {
		maxMargin = math.Max(maxMargin, m)
	}
	out := make([]float64, len(margins))
	sum := 0.0
	for i, m := range margins {
		out[i] = math.Exp(m - maxMargin)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
