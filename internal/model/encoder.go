// Package model loads trained classifier artifacts and evaluates them for single survey rows.
package model

import (
	"math"

	"github.com/jonathan/role-recommender/internal/types"
)

// OrdinalSource resolves a categorical value to its ordinal rank within a feature's domain.
type OrdinalSource interface {
	Index(feature, value string) (int, bool)
}

// Encoder turns a feature vector into the numeric row a model was trained on:
// one column per model feature, holding the value's ordinal rank, or NaN when the
// feature is absent or the value is not a legal one.
type Encoder struct {
	features []string
	source   OrdinalSource
}

// NewEncoder creates an encoder for the given model input order.
func NewEncoder(features []string, source OrdinalSource) *Encoder {
	return &Encoder{features: append([]string(nil), features...), source: source}
}

// Features returns the model input order.
func (e *Encoder) Features() []string {
	return append([]string(nil), e.features...)
}

// Encode returns the numeric row for vector.
func (e *Encoder) Encode(vector types.FeatureVector) []float64 {
	row := make([]float64, len(e.features))
	for i, f := range e.features {
		row[i] = math.NaN()
		value, ok := vector[f]
		if !ok || e.source == nil {
			continue
		}
		if idx, ok := e.source.Index(f, value); ok {
			row[i] = float64(idx)
		}
	}
	return row
}
