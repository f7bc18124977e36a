package main

import (
	"fmt"

	"github.com/jonathan/role-recommender/internal/artifacts"
	"github.com/jonathan/role-recommender/internal/observability"
	"github.com/jonathan/role-recommender/internal/recommend"
	"github.com/jonathan/role-recommender/internal/types"
	"github.com/spf13/cobra"
)

func newOptionsCmd(root *rootOptions) *cobra.Command {
	var labelSet string

	cmd := &cobra.Command{
		Use:     "options [feature...]",
		Aliases: []string{"domains"},
		Short:   "List the allowed answers of each feature",
		Long:    "Prints the ordered legal values of each feature with the benchmark default marked. Without arguments every feature is listed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ls, err := labelSetFlag(labelSet)
			if err != nil {
				return err
			}
			return root.withEngine(cmd, func(e *recommend.Engine, _ *artifacts.Catalog) error {
				options, err := e.Options(ls, args)
				if err != nil {
					return fmt.Errorf("failed to list options: %w", err)
				}
				if root.jsonOutput {
					return printJSON(cmd, options)
				}
				observability.NewPrinter(cmd.OutOrStdout()).PrintOptions(options)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&labelSet, "label-set", "l", string(types.LabelSetBroad), "Label set: broad or specific")
	return cmd
}
