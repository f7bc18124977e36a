// Package scenario derives the benchmark and user feature vectors of a comparison.
package scenario

import (
	"sort"

	"github.com/jonathan/role-recommender/internal/types"
)

// Reasons recorded on override notes.
const (
	ReasonInvalidValue   = "invalid_override_value"
	ReasonUnknownFeature = "unknown_feature"
)

// Domains is the part of the feature domain registry a scenario needs.
type Domains interface {
	Known(feature string) bool
	Contains(feature, value string) bool
	DefaultValue(feature string) (string, bool)
}

// Scenario is a benchmark vector and the user vector derived from it.
type Scenario struct {
	Benchmark types.FeatureVector
	User      types.FeatureVector
	Notes     []types.OverrideNote
}

// Build copies defaults into the benchmark vector and derives the user vector by
// applying overrides to a second copy. defaults is never modified.
//
// An override whose value is not legal for its feature is replaced by the feature's
// default value; an override for a feature the registry does not know is dropped.
// Both cases produce a note instead of an error. Notes are ordered by feature name.
func Build(domains Domains, defaults types.FeatureVector, overrides map[string]string) *Scenario {
	s := &Scenario{
		Benchmark: defaults.Clone(),
		User:      defaults.Clone(),
	}

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, feature := range keys {
		value := overrides[feature]
		if !domains.Known(feature) {
			s.Notes = append(s.Notes, types.OverrideNote{
				Feature:  feature,
				Rejected: value,
				Reason:   ReasonUnknownFeature,
			})
			continue
		}
		if domains.Contains(feature, value) {
			s.User[feature] = value
			continue
		}
		fallback, _ := domains.DefaultValue(feature)
		s.User[feature] = fallback
		s.Notes = append(s.Notes, types.OverrideNote{
			Feature:  feature,
			Rejected: value,
			Applied:  fallback,
			Reason:   ReasonInvalidValue,
		})
	}
	return s
}

// Changed returns the features whose user value differs from the benchmark, in name order.
func (s *Scenario) Changed() []string {
	var changed []string
	for _, f := range s.User.Keys() {
		if b, ok := s.Benchmark[f]; !ok || b != s.User[f] {
			changed = append(changed, f)
		}
	}
	return changed
}
