package main

import (
	"fmt"

	"github.com/jonathan/role-recommender/internal/artifacts"
	"github.com/jonathan/role-recommender/internal/observability"
	"github.com/jonathan/role-recommender/internal/recommend"
	"github.com/jonathan/role-recommender/internal/types"
	"github.com/spf13/cobra"
)

func newFactorsCmd(root *rootOptions) *cobra.Command {
	var (
		labelSet string
		class    string
		n        int
	)

	cmd := &cobra.Command{
		Use:   "factors",
		Short: "Show the top success factors for a role",
		Long: "Ranks the survey features by their mean absolute attribution for the chosen role " +
			"and prints the strongest ones. Ties keep the feature order of the rank table.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ls, err := labelSetFlag(labelSet)
			if err != nil {
				return err
			}
			return root.withEngine(cmd, func(e *recommend.Engine, _ *artifacts.Catalog) error {
				result, err := e.Factors(types.FactorsRequest{LabelSet: ls, Class: class, N: n})
				if err != nil {
					return fmt.Errorf("failed to rank factors: %w", err)
				}
				if root.jsonOutput {
					return printJSON(cmd, result)
				}
				observability.NewPrinter(cmd.OutOrStdout()).PrintFactors(result)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&labelSet, "label-set", "l", string(types.LabelSetBroad), "Label set: broad or specific")
	cmd.Flags().StringVarP(&class, "class", "r", "", "Role name or class id (required)")
	cmd.Flags().IntVarP(&n, "n", "n", recommend.DefaultFactors, fmt.Sprintf("Number of factors to show (1-%d)", types.MaxFactors))
	if err := cmd.MarkFlagRequired("class"); err != nil {
		panic(fmt.Sprintf("failed to mark class flag as required: %v", err))
	}
	return cmd
}
