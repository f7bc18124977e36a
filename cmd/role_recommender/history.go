package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/jonathan/role-recommender/internal/db"
	"github.com/jonathan/role-recommender/internal/observability"
	"github.com/spf13/cobra"
)

func newHistoryCmd(root *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent comparisons stored by the server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			database, err := root.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			entries, err := database.ListHistory(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if root.jsonOutput {
				return printJSON(cmd, entries)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tLABEL SET\tROLE\tBENCHMARK\tUSER\tOVERRIDES")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f%%\t%.2f%%\t%d\n",
					e.ID, e.CreatedAt.Format("2006-01-02 15:04"), e.LabelSet, e.Class, e.BenchmarkPercent, e.UserPercent, len(e.Overrides))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", db.DefaultHistoryLimit, fmt.Sprintf("Number of entries to show (max %d)", db.MaxHistoryLimit))
	cmd.AddCommand(newHistoryShowCmd(root), newHistoryDeleteCmd(root))
	return cmd
}

func newHistoryShowCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one stored comparison",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseHistoryID(args[0])
			if err != nil {
				return err
			}
			database, err := root.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			entry, err := database.GetHistoryEntry(cmd.Context(), id)
			if err != nil {
				return err
			}
			if entry == nil {
				return fmt.Errorf("history entry %s not found", id)
			}
			if root.jsonOutput {
				return printJSON(cmd, entry)
			}
			observability.NewPrinter(cmd.OutOrStdout()).PrintHistoryEntry(entry)
			return nil
		},
	}
}

func newHistoryDeleteCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one stored comparison",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseHistoryID(args[0])
			if err != nil {
				return err
			}
			database, err := root.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			deleted, err := database.DeleteHistoryEntry(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("history entry %s not found", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			return nil
		},
	}
}

func parseHistoryID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid history id %q: %w", raw, err)
	}
	return id, nil
}

// openHistory connects to the history database named by the resolved config.
func (o *rootOptions) openHistory(ctx context.Context) (*db.DB, error) {
	cfg, err := o.resolveConfig()
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("history requires DATABASE_URL (or database_url in the config file)")
	}
	return db.Connect(ctx, cfg.DatabaseURL)
}
