package artifacts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/jonathan/role-recommender/internal/model"
	"github.com/jonathan/role-recommender/internal/scoring"
	"github.com/jonathan/role-recommender/internal/types"
	"golang.org/x/sync/errgroup"
)

// DefaultQuestionMap is the default file name of the long-to-short question map.
const DefaultQuestionMap = "question_long_short.csv"

// Paths locates the artifacts of one label set. Relative paths are resolved
// against the catalog's data directory.
type Paths struct {
	Attributions string `json:"attributions,omitempty"`
	Domains      string `json:"domains,omitempty"`
	Benchmark    string `json:"benchmark,omitempty"`
	Classifier   string `json:"classifier,omitempty"`
	Report       string `json:"classification_report,omitempty"`
	Confusion    string `json:"confusion_matrix,omitempty"`
	Survey       string `json:"survey,omitempty"`
}

// DefaultPaths returns the conventional artifact file names for a label set.
func DefaultPaths(ls types.LabelSet) Paths {
	s := ls.Suffix()
	return Paths{
		Attributions: fmt.Sprintf("shap_feature_importance_all_classes_%s.csv", s),
		Domains:      "unique_with_rank.csv",
		Benchmark:    fmt.Sprintf("default_X_train_%s.csv", s),
		Classifier:   fmt.Sprintf("model_%s.json", s),
		Report:       fmt.Sprintf("classification_report_%s.json", s),
		Confusion:    fmt.Sprintf("confusion_matrix_%s.json", s),
		Survey:       fmt.Sprintf("df_heat_%s.csv", s),
	}
}

// merge fills empty fields of p from defaults.
func (p Paths) merge(defaults Paths) Paths {
	pick := func(v, d string) string {
		if v != "" {
			return v
		}
		return d
	}
	return Paths{
		Attributions: pick(p.Attributions, defaults.Attributions),
		Domains:      pick(p.Domains, defaults.Domains),
		Benchmark:    pick(p.Benchmark, defaults.Benchmark),
		Classifier:   pick(p.Classifier, defaults.Classifier),
		Report:       pick(p.Report, defaults.Report),
		Confusion:    pick(p.Confusion, defaults.Confusion),
		Survey:       pick(p.Survey, defaults.Survey),
	}
}

func (p Paths) resolve(dir string) Paths {
	join := func(v string) string {
		if v == "" || filepath.IsAbs(v) || dir == "" {
			return v
		}
		return filepath.Join(dir, v)
	}
	return Paths{
		Attributions: join(p.Attributions),
		Domains:      join(p.Domains),
		Benchmark:    join(p.Benchmark),
		Classifier:   join(p.Classifier),
		Report:       join(p.Report),
		Confusion:    join(p.Confusion),
		Survey:       join(p.Survey),
	}
}

// CatalogConfig configures LoadCatalog.
type CatalogConfig struct {
	DataDir     string
	QuestionMap string
	// LabelSets overrides individual artifact paths per label set.
	LabelSets map[types.LabelSet]Paths
	// StrictDefaults rejects benchmark values that are not legal domain values.
	StrictDefaults bool
	ONNXLibrary    string
}

// PathsFor returns the resolved artifact paths of a label set.
func (c CatalogConfig) PathsFor(ls types.LabelSet) Paths {
	return c.LabelSets[ls].merge(DefaultPaths(ls)).resolve(c.DataDir)
}

func (c CatalogConfig) questionMapPath() string {
	p := c.QuestionMap
	if p == "" {
		p = DefaultQuestionMap
	}
	if filepath.IsAbs(p) || c.DataDir == "" {
		return p
	}
	return filepath.Join(c.DataDir, p)
}

// Bundle is everything loaded for one label set.
//
// Err is set when the attributions, domains or benchmark could not be loaded; the
// bundle is then unusable. ClassifierErr only disables scoring, so success factors
// stay available without a classifier.
type Bundle struct {
	LabelSet     types.LabelSet
	Paths        Paths
	Attributions *AttributionTable
	Domains      *DomainRegistry
	Benchmark    types.FeatureVector
	Classifier   scoring.Classifier
	Performance  *types.ModelPerformance
	Warnings     []string

	Err           error
	ClassifierErr error
}

// Catalog is the read-only set of loaded artifacts shared by every request.
type Catalog struct {
	config  CatalogConfig
	bundles map[types.LabelSet]*Bundle
}

// LoadCatalog loads the artifacts of every label set concurrently. Missing or malformed
// artifacts are recorded on the affected bundle rather than failing the load; an error
// is returned only when ctx is done.
func LoadCatalog(ctx context.Context, cfg CatalogConfig) (*Catalog, error) {
	cat := &Catalog{config: cfg, bundles: make(map[types.LabelSet]*Bundle)}

	names, namesErr := LoadNameMap(cfg.questionMapPath())

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	for _, ls := range types.AllLabelSets() {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b := loadBundle(ls, cfg, names, namesErr)
			mu.Lock()
			cat.bundles[ls] = b
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		cat.Close()
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return cat, nil
}

func loadBundle(ls types.LabelSet, cfg CatalogConfig, names *NameMap, namesErr error) *Bundle {
	paths := cfg.PathsFor(ls)
	b := &Bundle{LabelSet: ls, Paths: paths}
	if namesErr != nil {
		b.Err = namesErr
		return b
	}

	attributions, err := LoadAttributions(paths.Attributions, ls, names)
	if err != nil {
		b.Err = err
		return b
	}
	benchmark, err := LoadBenchmark(paths.Benchmark, names)
	if err != nil {
		b.Err = err
		return b
	}
	domains, err := LoadDomainRegistry(paths.Domains, names, benchmark, cfg.StrictDefaults)
	if err != nil {
		b.Err = err
		return b
	}
	b.Attributions = attributions
	b.Benchmark = benchmark
	b.Domains = domains
	for _, m := range domains.Mismatches() {
		b.Warnings = append(b.Warnings, m.String())
	}

	classifier, err := model.Load(paths.Classifier, domains, model.Options{ONNXLibrary: cfg.ONNXLibrary})
	if err != nil {
		b.ClassifierErr = unavailable(ArtifactClassifier, paths.Classifier, "classifier could not be loaded", err)
		b.Warnings = append(b.Warnings, b.ClassifierErr.Error())
	} else {
		b.Classifier = classifier
	}

	b.Performance = loadPerformance(ls, paths)
	return b
}

func loadPerformance(ls types.LabelSet, paths Paths) *types.ModelPerformance {
	perf := &types.ModelPerformance{LabelSet: ls}
	var notes []error

	report, err := LoadClassificationReport(paths.Report)
	if err != nil {
		notes = append(notes, err)
	} else {
		perf.Report = report
	}
	confusion, err := LoadConfusionMatrix(paths.Confusion)
	if err != nil {
		notes = append(notes, err)
	} else {
		perf.Confusion = confusion
		perf.RowPercentages = confusion.RowPercentages()
	}
	if len(notes) > 0 {
		perf.UnavailableNote = errors.Join(notes...).Error()
	}
	return perf
}

// Bundle returns the loaded bundle of a label set. The bundle's own Err must still be
// checked; use Ready for a single call that does both.
func (c *Catalog) Bundle(ls types.LabelSet) (*Bundle, bool) {
	b, ok := c.bundles[ls]
	return b, ok
}

// Ready returns the bundle of a label set when its core artifacts loaded.
func (c *Catalog) Ready(ls types.LabelSet) (*Bundle, error) {
	b, ok := c.bundles[ls]
	if !ok {
		return nil, unavailable(string(ls), "", "label set was not loaded", nil)
	}
	if b.Err != nil {
		return nil, b.Err
	}
	return b, nil
}

// Scorer returns the classifier of a ready bundle.
func (b *Bundle) Scorer() (scoring.Classifier, error) {
	if b.ClassifierErr != nil {
		return nil, b.ClassifierErr
	}
	if b.Classifier == nil {
		return nil, unavailable(ArtifactClassifier, b.Paths.Classifier, "no classifier loaded", nil)
	}
	return b.Classifier, nil
}

// Paths returns the resolved artifact paths of a label set.
func (c *Catalog) Paths(ls types.LabelSet) Paths {
	return c.config.PathsFor(ls)
}

// QuestionMapPath returns the resolved path of the question map.
func (c *Catalog) QuestionMapPath() string {
	return c.config.questionMapPath()
}

// ArtifactStatus describes one artifact file on disk.
type ArtifactStatus struct {
	Kind      string `json:"kind"`
	Path      string `json:"path"`
	Available bool   `json:"available"`
	Size      int64  `json:"size,omitempty"`
}

// Artifacts lists the artifact files of a label set and whether each exists.
func (c *Catalog) Artifacts(ls types.LabelSet) []ArtifactStatus {
	p := c.Paths(ls)
	entries := map[string]string{
		ArtifactAttributions: p.Attributions,
		ArtifactDomains:      p.Domains,
		ArtifactBenchmark:    p.Benchmark,
		ArtifactClassifier:   p.Classifier,
		ArtifactReport:       p.Report,
		ArtifactConfusion:    p.Confusion,
		ArtifactSurvey:       p.Survey,
		ArtifactQuestionMap:  c.QuestionMapPath(),
	}

	out := make([]ArtifactStatus, 0, len(entries))
	for kind, path := range entries {
		status := ArtifactStatus{Kind: kind, Path: path}
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			status.Available = true
			status.Size = info.Size()
		}
		out = append(out, status)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

// Close releases classifiers that hold native resources.
func (c *Catalog) Close() error {
	var errs []error
	for _, b := range c.bundles {
		if closer, ok := b.Classifier.(io.Closer); ok {
			errs = append(errs, closer.Close())
		}
	}
	return errors.Join(errs...)
}
