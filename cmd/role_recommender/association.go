package main

import (
	"fmt"

	"github.com/jonathan/role-recommender/internal/artifacts"
	"github.com/jonathan/role-recommender/internal/observability"
	"github.com/jonathan/role-recommender/internal/recommend"
	"github.com/jonathan/role-recommender/internal/stats"
	"github.com/jonathan/role-recommender/internal/types"
	"github.com/spf13/cobra"
)

func newAssociationCmd(root *rootOptions) *cobra.Command {
	var (
		labelSet string
		x, y     string
	)

	cmd := &cobra.Command{
		Use:   "association",
		Short: "Test two survey answers for independence",
		Long:  "Cross-tabulates two columns of the survey table and runs a chi-square test of independence, reporting Cramér's V as the effect size.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ls, err := labelSetFlag(labelSet)
			if err != nil {
				return err
			}
			req := types.AssociationRequest{X: x, Y: y}
			if err := req.Validate(); err != nil {
				return fmt.Errorf("invalid columns: %w", err)
			}
			return root.withEngine(cmd, func(_ *recommend.Engine, cat *artifacts.Catalog) error {
				names, err := artifacts.LoadNameMap(cat.QuestionMapPath())
				if err != nil {
					return err
				}
				survey, err := stats.LoadSurvey(cat.Paths(ls).Survey, names)
				if err != nil {
					return err
				}
				result, err := stats.Associate(survey, req.X, req.Y)
				if err != nil {
					return fmt.Errorf("failed to test association: %w", err)
				}
				if root.jsonOutput {
					return printJSON(cmd, result)
				}
				observability.NewPrinter(cmd.OutOrStdout()).PrintAssociation(result)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&labelSet, "label-set", "l", string(types.LabelSetBroad), "Label set: broad or specific")
	cmd.Flags().StringVarP(&x, "x", "x", "", "Explanatory column (required)")
	cmd.Flags().StringVarP(&y, "y", "y", "", "Response column (required)")
	for _, name := range []string{"x", "y"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}
	return cmd
}
