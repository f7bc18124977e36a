package artifacts

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/jonathan/role-recommender/internal/schemas"
	"github.com/jonathan/role-recommender/internal/types"
)

// LoadClassificationReport reads and schema-checks a classification report.
func LoadClassificationReport(path string) (*types.ClassificationReport, error) {
	data, err := readJSONArtifact(ArtifactReport, path, schemas.ClassificationReport)
	if err != nil {
		return nil, err
	}
	var report types.ClassificationReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, unavailable(ArtifactReport, path, "failed to unmarshal JSON", err)
	}
	return &report, nil
}

// LoadConfusionMatrix reads and schema-checks a confusion matrix.
func LoadConfusionMatrix(path string) (*types.ConfusionMatrix, error) {
	data, err := readJSONArtifact(ArtifactConfusion, path, schemas.ConfusionMatrix)
	if err != nil {
		return nil, err
	}
	var raw struct {
		Labels []json.RawMessage `json:"labels"`
		Matrix [][]int           `json:"matrix"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, unavailable(ArtifactConfusion, path, "failed to unmarshal JSON", err)
	}

	m := &types.ConfusionMatrix{Matrix: raw.Matrix}
	for _, l := range raw.Labels {
		var s string
		if err := json.Unmarshal(l, &s); err != nil {
			s = string(l)
		}
		m.Labels = append(m.Labels, s)
	}
	if err := m.Validate(); err != nil {
		return nil, unavailable(ArtifactConfusion, path, "malformed matrix", err)
	}
	return m, nil
}

func readJSONArtifact(artifact, path, schemaName string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, unavailable(artifact, path, "file not found", err)
		}
		return nil, unavailable(artifact, path, "failed to read file", err)
	}
	if err := schemas.ValidateDocument(schemaName, data); err != nil {
		return nil, unavailable(artifact, path, "schema validation failed", err)
	}
	return data, nil
}
