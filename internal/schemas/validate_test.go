package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDocument_ConfusionMatrix(t *testing.T) {
	err := ValidateDocument(ConfusionMatrix, []byte(`{"labels": ["DS", "Tech"], "matrix": [[10, 2], [3, 4]]}`))
	assert.NoError(t, err)

	err = ValidateDocument(ConfusionMatrix, []byte(`{"labels": ["DS", "Tech"], "matrix": [[10, -2], [3, 4]]}`))
	require.Error(t, err)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.NotEmpty(t, vErr.Errors)
}

func TestValidateDocument_MissingField(t *testing.T) {
	err := ValidateDocument(ConfusionMatrix, []byte(`{"labels": ["DS"]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "matrix")
}

func TestValidateDocument_ClassificationReport(t *testing.T) {
	doc := `{
		"0": {"precision": 0.8, "recall": 0.9, "f1-score": 0.85, "support": 100},
		"accuracy": 0.8
	}`
	assert.NoError(t, ValidateDocument(ClassificationReport, []byte(doc)))

	bad := `{"0": {"precision": 0.8}, "accuracy": 0.8}`
	assert.Error(t, ValidateDocument(ClassificationReport, []byte(bad)))
}

func TestValidateDocument_Classifier(t *testing.T) {
	doc := `{
		"objective": "multi:softprob",
		"classes": [0, 1],
		"features": ["Python"],
		"trees": [{"nodeid": 0, "leaf": 0.1}, {"nodeid": 0, "leaf": -0.1}]
	}`
	assert.NoError(t, ValidateDocument(Classifier, []byte(doc)))

	unknownObjective := `{"objective": "reg:squarederror", "classes": [0, 1], "features": ["a"], "trees": [{"nodeid": 0}]}`
	assert.Error(t, ValidateDocument(Classifier, []byte(unknownObjective)))
}

func TestValidateDocument_UnknownSchema(t *testing.T) {
	err := ValidateDocument("missing.schema.json", []byte(`{}`))
	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, loadErr.Error(), "missing.schema.json")
}
