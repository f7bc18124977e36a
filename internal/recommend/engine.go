// Package recommend answers success-factor and role-comparison requests against the loaded artifacts.
package recommend

import (
	"fmt"
	"math"

	"github.com/jonathan/role-recommender/internal/artifacts"
	"github.com/jonathan/role-recommender/internal/ranking"
	"github.com/jonathan/role-recommender/internal/scenario"
	"github.com/jonathan/role-recommender/internal/scoring"
	"github.com/jonathan/role-recommender/internal/types"
)

// DefaultFactors is the number of success factors shown when a caller does not ask for a count.
const DefaultFactors = 5

// Catalog resolves a label set to its loaded artifacts.
type Catalog interface {
	Bundle(ls types.LabelSet) (*artifacts.Bundle, bool)
	Ready(ls types.LabelSet) (*artifacts.Bundle, error)
}

// UnknownFeatureError reports a feature name that has no domain.
type UnknownFeatureError struct {
	Feature string
}

func (e *UnknownFeatureError) Error() string {
	return fmt.Sprintf("unknown feature %q", e.Feature)
}

// Engine wires factor selection, scenario building and scoring for single requests.
// It holds no per-request state and is safe for concurrent use.
type Engine struct {
	catalog Catalog
}

// NewEngine creates an engine over a loaded catalog.
func NewEngine(catalog Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// LabelSets summarizes every label set and the state of its artifacts.
func (e *Engine) LabelSets() []types.LabelSetSummary {
	out := make([]types.LabelSetSummary, 0, len(types.AllLabelSets()))
	for _, ls := range types.AllLabelSets() {
		s := types.LabelSetSummary{LabelSet: ls, Title: ls.Title(), Classes: ls.Classes()}
		b, ok := e.catalog.Bundle(ls)
		switch {
		case !ok:
			s.Error = "label set was not loaded"
		case b.Err != nil:
			s.Error = b.Err.Error()
		default:
			s.Available = true
			s.CanScore = b.ClassifierErr == nil && b.Classifier != nil
			s.Warnings = b.Warnings
			s.NumFactors = len(b.Domains.OrderedFeatures())
		}
		out = append(out, s)
	}
	return out
}

// Factors returns the top success factors of a class.
func (e *Engine) Factors(req types.FactorsRequest) (*types.RankedFeatures, error) {
	if req.N == 0 {
		req.N = DefaultFactors
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	class, ok := req.LabelSet.ResolveClass(req.Class)
	if !ok {
		return nil, &ranking.UnknownClassError{Class: req.Class, Known: req.LabelSet.ClassNames()}
	}
	b, err := e.catalog.Ready(req.LabelSet)
	if err != nil {
		return nil, err
	}
	return ranking.Select(b.Attributions, b.Domains, class.Name, req.N)
}

// Options returns the ordered values and preselected default of each feature. An empty
// feature list returns every feature in canonical order.
func (e *Engine) Options(ls types.LabelSet, features []string) ([]types.FeatureOptions, error) {
	b, err := e.catalog.Ready(ls)
	if err != nil {
		return nil, err
	}
	if len(features) == 0 {
		features = b.Domains.OrderedFeatures()
	}

	out := make([]types.FeatureOptions, 0, len(features))
	for _, f := range features {
		opts, ok := b.Domains.Options(f)
		if !ok {
			return nil, &UnknownFeatureError{Feature: f}
		}
		out = append(out, opts)
	}
	return out, nil
}

// Compare scores the benchmark vector and the user vector derived from req.Overrides
// for the requested class.
func (e *Engine) Compare(ls types.LabelSet, req types.CompareRequest) (*types.Comparison, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	class, ok := ls.ResolveClass(req.Class)
	if !ok {
		return nil, &scoring.UnknownClassError{ClassID: req.Class, Known: ls.ClassNames()}
	}
	b, err := e.catalog.Ready(ls)
	if err != nil {
		return nil, err
	}
	classifier, err := b.Scorer()
	if err != nil {
		return nil, err
	}

	s := scenario.Build(b.Domains, b.Benchmark, req.Overrides)

	benchmark, err := scoring.ScoreClass(classifier, s.Benchmark, class)
	if err != nil {
		return nil, fmt.Errorf("failed to score benchmark: %w", err)
	}
	user, err := scoring.ScoreClass(classifier, s.User, class)
	if err != nil {
		return nil, fmt.Errorf("failed to score user profile: %w", err)
	}

	return &types.Comparison{
		LabelSet:  ls,
		Class:     class.Name,
		Benchmark: benchmark,
		User:      user,
		Delta:     math.Round((user.Percent-benchmark.Percent)*100) / 100,
		Vectors:   types.ScenarioPair{Benchmark: s.Benchmark, User: s.User},
		Changed:   s.Changed(),
		Notes:     s.Notes,
	}, nil
}

// Performance returns the evaluation artifacts of a label set.
func (e *Engine) Performance(ls types.LabelSet) (*types.ModelPerformance, error) {
	b, err := e.catalog.Ready(ls)
	if err != nil {
		return nil, err
	}
	if b.Performance == nil {
		return &types.ModelPerformance{LabelSet: ls, UnavailableNote: "no evaluation artifacts loaded"}, nil
	}
	return b.Performance, nil
}
