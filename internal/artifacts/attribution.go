package artifacts

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/jonathan/role-recommender/internal/types"
)

// AttributionTable holds per-feature, per-class attribution magnitudes for one label set.
// It is immutable after construction.
type AttributionTable struct {
	labelSet  types.LabelSet
	classes   []string
	features  []string
	values    map[string]map[string]float64
	questions map[string]string
}

func (t *AttributionTable) add(feature, question string, row map[string]float64) error {
	if _, dup := t.values[feature]; dup {
		return fmt.Errorf("duplicate feature %q", feature)
	}
	copied := make(map[string]float64, len(t.classes))
	for _, c := range t.classes {
		v, ok := row[c]
		if !ok {
			return fmt.Errorf("feature %q has no value for class %q", feature, c)
		}
		copied[c] = v
	}
	t.features = append(t.features, feature)
	t.values[feature] = copied
	t.questions[feature] = question
	return nil
}

// LoadAttributions reads an attribution table. The first column identifies the feature;
// class columns are located by header name, accepting either the class display name or
// its internal identifier. Feature names are shortened through names.
func LoadAttributions(path string, labelSet types.LabelSet, names *NameMap) (*AttributionTable, error) {
	records, err := ReadTable(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, unavailable(ArtifactAttributions, path, "file not found", err)
		}
		return nil, unavailable(ArtifactAttributions, path, "failed to read file", err)
	}
	if len(records) == 0 {
		return nil, unavailable(ArtifactAttributions, path, "file is empty", nil)
	}

	header := records[0]
	columns := make(map[string]int)
	for _, class := range labelSet.Classes() {
		idx := classColumn(header, class)
		if idx < 0 {
			return nil, unavailable(ArtifactAttributions, path,
				fmt.Sprintf("missing column for class %q (id %s)", class.Name, class.ID), nil)
		}
		columns[class.Name] = idx
	}

	t := &AttributionTable{
		labelSet:  labelSet,
		classes:   labelSet.ClassNames(),
		values:    make(map[string]map[string]float64),
		questions: make(map[string]string),
	}

	for line, record := range records[1:] {
		question := cell(record, 0)
		if question == "" {
			continue
		}
		row := make(map[string]float64, len(columns))
		for class, idx := range columns {
			raw := cell(record, idx)
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, unavailable(ArtifactAttributions, path,
					fmt.Sprintf("row %d: invalid value %q for class %q", line+2, raw, class), err)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, unavailable(ArtifactAttributions, path,
					fmt.Sprintf("row %d: non-finite value %q for class %q", line+2, raw, class), nil)
			}
			row[class] = v
		}
		if err := t.add(names.Short(question), NormalizeName(question), row); err != nil {
			return nil, unavailable(ArtifactAttributions, path, fmt.Sprintf("row %d", line+2), err)
		}
	}

	return t, nil
}

// classColumn finds the header index for a class, skipping the feature column.
func classColumn(header []string, class types.ClassInfo) int {
	for i := 1; i < len(header); i++ {
		h := NormalizeName(header[i])
		if strings.EqualFold(h, class.Name) || h == class.ID {
			return i
		}
	}
	return -1
}

// LabelSet returns the label set the table was built for.
func (t *AttributionTable) LabelSet() types.LabelSet {
	return t.labelSet
}

// Classes returns the class display names the table carries.
func (t *AttributionTable) Classes() []string {
	return append([]string(nil), t.classes...)
}

// HasClass reports whether the table has a column for class.
func (t *AttributionTable) HasClass(class string) bool {
	for _, c := range t.classes {
		if c == class {
			return true
		}
	}
	return false
}

// Features returns the feature names in file order.
func (t *AttributionTable) Features() []string {
	return append([]string(nil), t.features...)
}

// Len returns the number of features.
func (t *AttributionTable) Len() int {
	return len(t.features)
}

// Magnitude returns the attribution of feature for class.
func (t *AttributionTable) Magnitude(feature, class string) (float64, bool) {
	row, ok := t.values[feature]
	if !ok {
		return 0, false
	}
	v, ok := row[class]
	return v, ok
}

// Question returns the verbose question text a feature was loaded from.
func (t *AttributionTable) Question(feature string) string {
	if q, ok := t.questions[feature]; ok {
		return q
	}
	return feature
}

// Equal reports whether both tables hold the same features, classes and values.
func (t *AttributionTable) Equal(other *AttributionTable) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.labelSet != other.labelSet || len(t.features) != len(other.features) || len(t.classes) != len(other.classes) {
		return false
	}
	for i, f := range t.features {
		if other.features[i] != f {
			return false
		}
		for _, c := range t.classes {
			a, _ := t.Magnitude(f, c)
			b, ok := other.Magnitude(f, c)
			if !ok || !(a == b || (math.IsNaN(a) && math.IsNaN(b))) {
				return false
			}
		}
	}
	return true
}
