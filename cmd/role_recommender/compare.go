package main

import (
	"fmt"
	"strings"

	"github.com/jonathan/role-recommender/internal/artifacts"
	"github.com/jonathan/role-recommender/internal/observability"
	"github.com/jonathan/role-recommender/internal/recommend"
	"github.com/jonathan/role-recommender/internal/types"
	"github.com/spf13/cobra"
)

func newCompareCmd(root *rootOptions) *cobra.Command {
	var (
		labelSet string
		class    string
		sets     []string
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare your predicted role fit with the benchmark profile",
		Long: `Scores the benchmark profile and a copy of it with your answers applied, and prints both
probabilities for the chosen role. Answers that are not allowed keep the benchmark value.

Example:
  role_recommender compare -l broad -r Tech --set "Years of Experience=10-20" --set Python=Yes`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ls, err := labelSetFlag(labelSet)
			if err != nil {
				return err
			}
			overrides, err := parseOverrides(sets)
			if err != nil {
				return err
			}
			return root.withEngine(cmd, func(e *recommend.Engine, _ *artifacts.Catalog) error {
				cmp, err := e.Compare(ls, types.CompareRequest{Class: class, Overrides: overrides})
				if err != nil {
					return fmt.Errorf("failed to compare: %w", err)
				}
				if root.jsonOutput {
					return printJSON(cmd, cmp)
				}
				observability.NewPrinter(cmd.OutOrStdout()).PrintComparison(cmp)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&labelSet, "label-set", "l", string(types.LabelSetBroad), "Label set: broad or specific")
	cmd.Flags().StringVarP(&class, "class", "r", "", "Role name or class id (required)")
	cmd.Flags().StringArrayVarP(&sets, "set", "s", nil, "Answer override as feature=value (repeatable)")
	if err := cmd.MarkFlagRequired("class"); err != nil {
		panic(fmt.Sprintf("failed to mark class flag as required: %v", err))
	}
	return cmd
}

// parseOverrides turns feature=value pairs into an override map. The value may itself contain "=".
func parseOverrides(pairs []string) (map[string]string, error) {
	overrides := make(map[string]string, len(pairs))
	for _, p := range pairs {
		feature, value, ok := strings.Cut(p, "=")
		feature = strings.TrimSpace(feature)
		if !ok || feature == "" {
			return nil, fmt.Errorf("invalid --set %q (expected feature=value)", p)
		}
		overrides[feature] = strings.TrimSpace(value)
	}
	return overrides, nil
}
