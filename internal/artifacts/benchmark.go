package artifacts

import (
	"errors"
	"fmt"
	"os"

	"github.com/jonathan/role-recommender/internal/types"
)

// LoadBenchmark reads the benchmark vector: a header row of feature names and one row
// holding the most common survey answer per feature. Additional rows are ignored.
func LoadBenchmark(path string, names *NameMap) (types.FeatureVector, error) {
	records, err := ReadTable(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, unavailable(ArtifactBenchmark, path, "file not found", err)
		}
		return nil, unavailable(ArtifactBenchmark, path, "failed to read file", err)
	}
	if len(records) < 2 {
		return nil, unavailable(ArtifactBenchmark, path, "expected a header row and a value row", nil)
	}

	header, row := records[0], records[1]
	if len(row) != len(header) {
		return nil, unavailable(ArtifactBenchmark, path,
			fmt.Sprintf("value row has %d cells for %d columns", len(row), len(header)), nil)
	}

	vector := make(types.FeatureVector, len(header))
	for i, h := range header {
		h = NormalizeName(h)
		if isIndexColumn(h) {
			continue
		}
		f := names.Short(h)
		if _, dup := vector[f]; dup {
			return nil, unavailable(ArtifactBenchmark, path, fmt.Sprintf("duplicate column %q", f), nil)
		}
		vector[f] = cell(row, i)
	}
	if len(vector) == 0 {
		return nil, unavailable(ArtifactBenchmark, path, "no feature columns", nil)
	}
	return vector, nil
}
