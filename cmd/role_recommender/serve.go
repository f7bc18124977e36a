package main

import (
	"fmt"

	"github.com/jonathan/role-recommender/internal/db"
	"github.com/jonathan/role-recommender/internal/logging"
	"github.com/jonathan/role-recommender/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start an HTTP server that exposes the recommender over REST.
Comparison history is stored when DATABASE_URL is set.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, cat, err := root.loadCatalog(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = cat.Close() }()

			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			srvCfg := server.Config{
				Port:           cfg.Port,
				AllowedOrigins: cfg.AllowedOrigins,
				Catalog:        cat,
			}

			if cfg.DatabaseURL != "" {
				database, err := db.Connect(cmd.Context(), cfg.DatabaseURL)
				if err != nil {
					return fmt.Errorf("failed to connect to database: %w", err)
				}
				if err := database.EnsureSchema(cmd.Context()); err != nil {
					database.Close()
					return err
				}
				srvCfg.History = database
				logging.Info().Msg("comparison history enabled")
			}

			srv, err := server.New(srvCfg)
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}
			return srv.Start()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on (overrides config and PORT)")
	return cmd
}
