package artifacts

import (
	"errors"
	"fmt"
	"os"

	"github.com/jonathan/role-recommender/internal/types"
)

// DefaultMismatch records a feature whose benchmark value is not one of its legal values.
type DefaultMismatch struct {
	Feature   string `json:"feature"`
	Benchmark string `json:"benchmark"`
	Applied   string `json:"applied"`
}

func (m DefaultMismatch) String() string {
	if m.Benchmark == "" {
		return fmt.Sprintf("feature %q has no benchmark value, using %q", m.Feature, m.Applied)
	}
	return fmt.Sprintf("feature %q benchmark value %q is not a legal value, using %q", m.Feature, m.Benchmark, m.Applied)
}

// DomainRegistry holds each feature's ordered legal values and its default value.
// The column order of the rank table is the canonical feature order; the order of
// values within a column is the ordinal rank. Neither is ever re-sorted.
type DomainRegistry struct {
	features   []string
	position   map[string]int
	values     map[string][]string
	rank       map[string]map[string]int
	defaults   map[string]string
	mismatches []DefaultMismatch
}

// NewDomainRegistry builds a registry from canonical feature order and ordered values.
// Features with no values are dropped. Defaults are taken from benchmark when legal;
// otherwise the first value is used and a mismatch is recorded, or, when strict is set,
// an error is returned.
func NewDomainRegistry(features []string, values map[string][]string, benchmark types.FeatureVector, strict bool) (*DomainRegistry, error) {
	r := &DomainRegistry{
		position: make(map[string]int),
		values:   make(map[string][]string),
		rank:     make(map[string]map[string]int),
		defaults: make(map[string]string),
	}

	for _, f := range features {
		if _, dup := r.position[f]; dup {
			return nil, fmt.Errorf("duplicate feature %q", f)
		}
		ordered := make([]string, 0, len(values[f]))
		ranks := make(map[string]int)
		for _, v := range values[f] {
			if v == "" {
				continue
			}
			if _, seen := ranks[v]; seen {
				continue
			}
			ranks[v] = len(ordered)
			ordered = append(ordered, v)
		}
		if len(ordered) == 0 {
			continue
		}

		r.position[f] = len(r.features)
		r.features = append(r.features, f)
		r.values[f] = ordered
		r.rank[f] = ranks

		bench, ok := benchmark[f]
		if _, legal := ranks[bench]; ok && legal {
			r.defaults[f] = bench
			continue
		}
		mismatch := DefaultMismatch{Feature: f, Benchmark: bench, Applied: ordered[0]}
		if strict {
			return nil, errors.New(mismatch.String())
		}
		r.defaults[f] = ordered[0]
		r.mismatches = append(r.mismatches, mismatch)
	}

	return r, nil
}

// LoadDomainRegistry reads the rank table: one column per feature in canonical order,
// legal values down each column in ascending ordinal rank, blank cells skipped.
func LoadDomainRegistry(path string, names *NameMap, benchmark types.FeatureVector, strict bool) (*DomainRegistry, error) {
	records, err := ReadTable(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, unavailable(ArtifactDomains, path, "file not found", err)
		}
		return nil, unavailable(ArtifactDomains, path, "failed to read file", err)
	}
	if len(records) == 0 {
		return nil, unavailable(ArtifactDomains, path, "file is empty", nil)
	}

	header := records[0]
	features := make([]string, 0, len(header))
	columns := make(map[string]int, len(header))
	for i, h := range header {
		h = NormalizeName(h)
		if isIndexColumn(h) {
			continue
		}
		f := names.Short(h)
		if _, dup := columns[f]; dup {
			return nil, unavailable(ArtifactDomains, path, fmt.Sprintf("duplicate column %q", f), nil)
		}
		columns[f] = i
		features = append(features, f)
	}

	values := make(map[string][]string, len(features))
	for _, f := range features {
		idx := columns[f]
		for _, record := range records[1:] {
			values[f] = append(values[f], cell(record, idx))
		}
	}

	registry, err := NewDomainRegistry(features, values, benchmark, strict)
	if err != nil {
		return nil, unavailable(ArtifactDomains, path, "invalid rank table", err)
	}
	if len(registry.features) == 0 {
		return nil, unavailable(ArtifactDomains, path, "no feature has any legal value", nil)
	}
	return registry, nil
}

// OrderedFeatures returns the canonical feature order.
func (r *DomainRegistry) OrderedFeatures() []string {
	return append([]string(nil), r.features...)
}

// Known reports whether the registry has a domain for feature.
func (r *DomainRegistry) Known(feature string) bool {
	_, ok := r.position[feature]
	return ok
}

// Domain returns the ordered legal values of feature.
func (r *DomainRegistry) Domain(feature string) []string {
	return append([]string(nil), r.values[feature]...)
}

// DefaultValue returns the benchmark value of feature, or its first legal value when the
// benchmark value was not legal.
func (r *DomainRegistry) DefaultValue(feature string) (string, bool) {
	v, ok := r.defaults[feature]
	return v, ok
}

// Contains reports whether value is a legal value of feature.
func (r *DomainRegistry) Contains(feature, value string) bool {
	_, ok := r.rank[feature][value]
	return ok
}

// Index returns the ordinal rank of value within feature's domain.
func (r *DomainRegistry) Index(feature, value string) (int, bool) {
	i, ok := r.rank[feature][value]
	return i, ok
}

// Mismatches returns the features whose benchmark value had to be replaced.
func (r *DomainRegistry) Mismatches() []DefaultMismatch {
	return append([]DefaultMismatch(nil), r.mismatches...)
}

// Options returns the selection options for feature.
func (r *DomainRegistry) Options(feature string) (types.FeatureOptions, bool) {
	if !r.Known(feature) {
		return types.FeatureOptions{}, false
	}
	return types.FeatureOptions{
		Feature: feature,
		Values:  r.Domain(feature),
		Default: r.defaults[feature],
	}, true
}

// Equal reports whether both registries hold the same order, values and defaults.
func (r *DomainRegistry) Equal(other *DomainRegistry) bool {
	if r == nil || other == nil {
		return r == other
	}
	if len(r.features) != len(other.features) {
		return false
	}
	for i, f := range r.features {
		if other.features[i] != f || r.defaults[f] != other.defaults[f] {
			return false
		}
		a, b := r.values[f], other.values[f]
		if len(a) != len(b) {
			return false
		}
		for j := range a {
			if a[j] != b[j] {
				return false
			}
		}
	}
	return true
}
