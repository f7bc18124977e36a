// Package ranking selects the success factors of a role from attribution magnitudes.
package ranking

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jonathan/role-recommender/internal/types"
)

// AttributionSource is the attribution data consulted by Select.
type AttributionSource interface {
	LabelSet() types.LabelSet
	Classes() []string
	HasClass(class string) bool
	Magnitude(feature, class string) (float64, bool)
	Question(feature string) string
}

// FeatureOrder provides the canonical order of the features that can be offered to a user.
type FeatureOrder interface {
	OrderedFeatures() []string
}

// UnknownClassError reports a class that has no attribution column.
type UnknownClassError struct {
	Class string
	Known []string
}

func (e *UnknownClassError) Error() string {
	return fmt.Sprintf("unknown class %q (known: %s)", e.Class, strings.Join(e.Known, ", "))
}

// Select ranks the features known to both table and order by their attribution for class
// and returns the top n. Candidates are taken in canonical order and sorted stably by
// descending magnitude, so equal magnitudes keep their canonical order. n is clamped to
// [1, candidates]; no candidates yields an empty ranking. Features without a finite
// magnitude are not candidates.
func Select(table AttributionSource, order FeatureOrder, class string, n int) (*types.RankedFeatures, error) {
	if !table.HasClass(class) {
		return nil, &UnknownClassError{Class: class, Known: table.Classes()}
	}

	candidates := make([]types.RankedFeature, 0)
	featureOrder := make([]string, 0)
	for _, f := range order.OrderedFeatures() {
		magnitude, ok := table.Magnitude(f, class)
		if !ok || math.IsNaN(magnitude) || math.IsInf(magnitude, 0) {
			continue
		}
		candidates = append(candidates, types.RankedFeature{
			Feature:   f,
			Question:  table.Question(f),
			Magnitude: magnitude,
			Order:     len(featureOrder),
		})
		featureOrder = append(featureOrder, f)
	}

	result := &types.RankedFeatures{
		LabelSet:     table.LabelSet(),
		Class:        class,
		Requested:    n,
		Factors:      []types.RankedFeature{},
		FeatureOrder: featureOrder,
	}
	if len(candidates) == 0 {
		return result, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Magnitude > candidates[j].Magnitude
	})

	result.Factors = candidates[:clamp(n, 1, len(candidates))]
	return result, nil
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
