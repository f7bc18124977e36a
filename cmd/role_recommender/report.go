package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/jonathan/role-recommender/internal/artifacts"
	"github.com/jonathan/role-recommender/internal/observability"
	"github.com/jonathan/role-recommender/internal/recommend"
	"github.com/jonathan/role-recommender/internal/types"
	"github.com/spf13/cobra"
)

func newLabelSetsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "label-sets",
		Short: "List the label sets, their roles and artifact status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return root.withEngine(cmd, func(e *recommend.Engine, _ *artifacts.Catalog) error {
				summaries := e.LabelSets()
				if root.jsonOutput {
					return printJSON(cmd, summaries)
				}
				observability.NewPrinter(cmd.OutOrStdout()).PrintLabelSets(summaries)
				return nil
			})
		},
	}
}

func newReportCmd(root *rootOptions) *cobra.Command {
	var labelSet string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show model evaluation results",
		Long:  "Prints the classification report and the confusion matrix with per-row percentages. Without --label-set both label sets are shown.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			labelSets := types.AllLabelSets()
			if labelSet != "" {
				ls, err := labelSetFlag(labelSet)
				if err != nil {
					return err
				}
				labelSets = []types.LabelSet{ls}
			}

			return root.withEngine(cmd, func(e *recommend.Engine, _ *artifacts.Catalog) error {
				var reports []*types.ModelPerformance
				for _, ls := range labelSets {
					perf, err := e.Performance(ls)
					if err != nil {
						return fmt.Errorf("failed to load %s performance: %w", ls, err)
					}
					reports = append(reports, perf)
				}
				if root.jsonOutput {
					return printJSON(cmd, reports)
				}
				p := observability.NewPrinter(cmd.OutOrStdout())
				for _, perf := range reports {
					p.PrintPerformance(perf)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&labelSet, "label-set", "l", "", "Label set: broad or specific (default both)")
	return cmd
}

func newArtifactsCmd(root *rootOptions) *cobra.Command {
	var labelSet string

	cmd := &cobra.Command{
		Use:   "artifacts",
		Short: "List the artifact files of a label set",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ls, err := labelSetFlag(labelSet)
			if err != nil {
				return err
			}
			return root.withEngine(cmd, func(_ *recommend.Engine, cat *artifacts.Catalog) error {
				statuses := cat.Artifacts(ls)
				if root.jsonOutput {
					return printJSON(cmd, statuses)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "KIND\tAVAILABLE\tSIZE\tPATH")
				for _, s := range statuses {
					fmt.Fprintf(tw, "%s\t%t\t%d\t%s\n", s.Kind, s.Available, s.Size, s.Path)
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().StringVarP(&labelSet, "label-set", "l", string(types.LabelSetBroad), "Label set: broad or specific")
	return cmd
}
