package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonathan/role-recommender/internal/artifacts"
	"github.com/jonathan/role-recommender/internal/config"
	"github.com/jonathan/role-recommender/internal/logging"
	"github.com/jonathan/role-recommender/internal/metrics"
	"github.com/jonathan/role-recommender/internal/recommend"
	"github.com/jonathan/role-recommender/internal/types"
	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	dataDir    string
	jsonOutput bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "role_recommender",
		Short: "Career role recommender",
		Long: "role_recommender explains which survey answers matter most for a tech career role " +
			"and estimates how changing your answers moves your predicted fit for that role.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to JSON config file")
	cmd.PersistentFlags().StringVarP(&opts.dataDir, "data-dir", "d", "", "Directory holding the training artifacts (overrides config and RR_DATA_DIR)")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Print results as JSON")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(
		newLabelSetsCmd(opts),
		newFactorsCmd(opts),
		newOptionsCmd(opts),
		newCompareCmd(opts),
		newAssociationCmd(opts),
		newReportCmd(opts),
		newArtifactsCmd(opts),
		newHistoryCmd(opts),
		newServeCmd(opts),
	)
	return cmd
}

// resolveConfig loads the config file, applies environment overrides and the CLI flags,
// and configures logging.
func (o *rootOptions) resolveConfig() (*config.Config, error) {
	cfg, err := config.Resolve(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	if o.verbose {
		cfg.LogLevel = "debug"
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	return cfg, nil
}

// loadCatalog resolves the configuration and loads every label set's artifacts.
func (o *rootOptions) loadCatalog(cmd *cobra.Command) (*config.Config, *artifacts.Catalog, error) {
	cfg, err := o.resolveConfig()
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	cat, err := artifacts.LoadCatalog(cmd.Context(), cfg.CatalogConfig())
	if err != nil {
		return nil, nil, err
	}
	metrics.CatalogLoadDuration.Observe(time.Since(start).Seconds())

	for _, ls := range types.AllLabelSets() {
		b, _ := cat.Bundle(ls)
		event := logging.Debug().Str("label_set", string(ls))
		if b.Err != nil {
			event = logging.Warn().Str("label_set", string(ls)).Err(b.Err)
		}
		event.Strs("warnings", b.Warnings).Msg("label set loaded")
	}
	return cfg, cat, nil
}

// withEngine loads the catalog, runs fn against an engine and releases the catalog.
func (o *rootOptions) withEngine(cmd *cobra.Command, fn func(*recommend.Engine, *artifacts.Catalog) error) error {
	_, cat, err := o.loadCatalog(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = cat.Close() }()
	return fn(recommend.NewEngine(cat), cat)
}

// printJSON writes v as indented JSON to the command's output.
func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

// labelSetFlag parses the --label-set flag value.
func labelSetFlag(value string) (types.LabelSet, error) {
	ls, err := types.ParseLabelSet(value)
	if err != nil {
		return "", fmt.Errorf("invalid --label-set: %w", err)
	}
	return ls, nil
}
