package artifacts

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jonathan/role-recommender/internal/scoring"
	"github.com/jonathan/role-recommender/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPaths(t *testing.T) {
	p := DefaultPaths(types.LabelSetSpecific)
	assert.Equal(t, "shap_feature_importance_all_classes_S.csv", p.Attributions)
	assert.Equal(t, "unique_with_rank.csv", p.Domains)
	assert.Equal(t, "model_S.json", p.Classifier)
	assert.Equal(t, "df_heat_S.csv", p.Survey)
}

func TestCatalogConfig_PathsFor(t *testing.T) {
	cfg := CatalogConfig{
		DataDir: "data",
		LabelSets: map[types.LabelSet]Paths{
			types.LabelSetBroad: {Classifier: "/models/model_L.onnx"},
		},
	}

	p := cfg.PathsFor(types.LabelSetBroad)
	assert.Equal(t, "/models/model_L.onnx", p.Classifier)
	assert.Equal(t, filepath.Join("data", "default_X_train_L.csv"), p.Benchmark)
	assert.Equal(t, filepath.Join("data", "question_long_short.csv"), cfg.questionMapPath())
}

func TestLoadCatalog(t *testing.T) {
	cat, err := LoadCatalog(context.Background(), CatalogConfig{DataDir: dataDir})
	require.NoError(t, err)
	defer cat.Close()

	broad, err := cat.Ready(types.LabelSetBroad)
	require.NoError(t, err)
	assert.Equal(t, 7, broad.Attributions.Len())
	assert.Empty(t, broad.Warnings)

	classifier, err := broad.Scorer()
	require.NoError(t, err)
	tech := types.LabelSetBroad.Classes()[1]
	score, err := scoring.ScoreClass(classifier, broad.Benchmark, tech)
	require.NoError(t, err)
	assert.Equal(t, 37.75, score.Percent)

	require.NotNil(t, broad.Performance)
	assert.NotNil(t, broad.Performance.Report)
	assert.Empty(t, broad.Performance.UnavailableNote)

	specific, err := cat.Ready(types.LabelSetSpecific)
	require.NoError(t, err)
	require.Len(t, specific.Warnings, 1, "Diploma is not a legal education value")
	assert.NotEmpty(t, specific.Performance.UnavailableNote)
}

func TestLoadCatalog_MissingClassifierOnlyDisablesScoring(t *testing.T) {
	cfg := CatalogConfig{
		DataDir: dataDir,
		LabelSets: map[types.LabelSet]Paths{
			types.LabelSetBroad: {Classifier: "model_missing.json"},
		},
	}
	cat, err := LoadCatalog(context.Background(), cfg)
	require.NoError(t, err)

	b, err := cat.Ready(types.LabelSetBroad)
	require.NoError(t, err)
	assert.NotNil(t, b.Attributions)

	_, err = b.Scorer()
	require.Error(t, err)
	assert.True(t, IsDataUnavailable(err))
}

func TestLoadCatalog_StrictDefaults(t *testing.T) {
	cat, err := LoadCatalog(context.Background(), CatalogConfig{DataDir: dataDir, StrictDefaults: true})
	require.NoError(t, err)

	_, err = cat.Ready(types.LabelSetBroad)
	assert.NoError(t, err)

	_, err = cat.Ready(types.LabelSetSpecific)
	require.Error(t, err)
	assert.True(t, IsDataUnavailable(err))
}

func TestLoadCatalog_MissingDataDir(t *testing.T) {
	cat, err := LoadCatalog(context.Background(), CatalogConfig{DataDir: t.TempDir()})
	require.NoError(t, err)

	for _, ls := range types.AllLabelSets() {
		_, err := cat.Ready(ls)
		require.Error(t, err)
		assert.True(t, IsDataUnavailable(err))
	}
}

func TestLoadCatalog_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadCatalog(ctx, CatalogConfig{DataDir: dataDir})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCatalog_Artifacts(t *testing.T) {
	cat, err := LoadCatalog(context.Background(), CatalogConfig{DataDir: dataDir})
	require.NoError(t, err)

	statuses := cat.Artifacts(types.LabelSetSpecific)
	require.Len(t, statuses, 8)

	byKind := make(map[string]ArtifactStatus)
	for _, s := range statuses {
		byKind[s.Kind] = s
	}
	assert.True(t, byKind[ArtifactAttributions].Available)
	assert.True(t, byKind[ArtifactQuestionMap].Available)
	assert.False(t, byKind[ArtifactReport].Available)
	assert.False(t, byKind[ArtifactSurvey].Available)
}
