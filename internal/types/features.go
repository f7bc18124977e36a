package types

import "sort"

// FeatureVector is a single survey row: every known feature mapped to one of its legal values.
type FeatureVector map[string]string

// Clone returns an independent copy of the vector.
func (v FeatureVector) Clone() FeatureVector {
	out := make(FeatureVector, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Equal reports whether both vectors hold the same value for every feature.
func (v FeatureVector) Equal(other FeatureVector) bool {
	if len(v) != len(other) {
		return false
	}
	for k, val := range v {
		if o, ok := other[k]; !ok || o != val {
			return false
		}
	}
	return true
}

// Keys returns the feature names sorted alphabetically.
func (v FeatureVector) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RankedFeature is a single success factor for a selected class.
type RankedFeature struct {
	Feature   string  `json:"feature"`
	Question  string  `json:"question,omitempty"`
	Magnitude float64 `json:"magnitude"`
	// Order is the feature's position in the canonical domain order.
	Order int `json:"order"`
}

// RankedFeatures is the ranked factor list for one class, with the canonical order of all candidates.
type RankedFeatures struct {
	LabelSet     LabelSet        `json:"label_set"`
	Class        string          `json:"class"`
	Requested    int             `json:"requested"`
	Factors      []RankedFeature `json:"factors"`
	FeatureOrder []string        `json:"feature_order"`
}

// RoleScore is the predicted probability of one class for one feature vector.
type RoleScore struct {
	Class       string  `json:"class"`
	ClassID     string  `json:"class_id"`
	Probability float64 `json:"probability"`
	Percent     float64 `json:"percent"`
}

// OverrideNote records a user override that could not be applied as given.
type OverrideNote struct {
	Feature  string `json:"feature"`
	Rejected string `json:"rejected"`
	Applied  string `json:"applied"`
	Reason   string `json:"reason"`
}

// FeatureOptions lists the ordered legal values for a feature and the preselected value.
type FeatureOptions struct {
	Feature string   `json:"feature"`
	Values  []string `json:"values"`
	Default string   `json:"default"`
}

// Comparison is the benchmark-vs-user outcome of a recommendation request.
type Comparison struct {
	LabelSet  LabelSet       `json:"label_set"`
	Class     string         `json:"class"`
	Benchmark RoleScore      `json:"benchmark"`
	User      RoleScore      `json:"user"`
	Delta     float64        `json:"delta"`
	Vectors   ScenarioPair   `json:"vectors"`
	Changed   []string       `json:"changed,omitempty"`
	Notes     []OverrideNote `json:"notes,omitempty"`
}

// ScenarioPair holds the two complete feature vectors that were scored.
type ScenarioPair struct {
	Benchmark FeatureVector `json:"benchmark"`
	User      FeatureVector `json:"user"`
}
