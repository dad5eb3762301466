// Package commands implements the administrative CLI for the graph
// cache: namespace listing, row-level stats, integrity checks, deletes,
// and bulk import. These are operator tools, not a hot path.
package commands

import (
	"context"
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"graphcache/internal/config"
	"graphcache/internal/domain"
	"graphcache/internal/infrastructure/sqlite"
	"graphcache/internal/observability"
	"graphcache/internal/repository"
)

// CLI wires the administrative commands to an opened repository.
type CLI struct {
	rootCmd *cobra.Command

	log       *zap.Logger
	cache     repository.GraphCache
	inspector repository.Inspector
	sqlDB     *sql.DB
}

// New creates the CLI. The repository is opened lazily in the root
// command's PersistentPreRunE so that --help never touches the database.
func New() *CLI {
	c := &CLI{}

	c.rootCmd = &cobra.Command{
		Use:           "graphcache",
		Short:         "Administer the embedded knowledge graph cache",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			return c.setup(cmd.Context(), configPath)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			c.teardown()
		},
	}
	c.rootCmd.PersistentFlags().StringP("config", "c", "", "Path to configuration file")

	c.rootCmd.AddCommand(c.newNamespacesCmd())
	c.rootCmd.AddCommand(c.newStatsCmd())
	c.rootCmd.AddCommand(c.newVerifyCmd())
	c.rootCmd.AddCommand(c.newDeleteCmd())
	c.rootCmd.AddCommand(c.newPurgeCmd())
	c.rootCmd.AddCommand(c.newImportCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

func (c *CLI) setup(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}

	db, err := sqlite.OpenWithConfig(sqlite.StoreConfig{
		Path:              cfg.Database.Path,
		BusyTimeoutMillis: cfg.Database.BusyTimeoutMillis,
		MaxOpenConns:      cfg.Database.MaxOpenConns,
		WAL:               cfg.Database.WAL,
	})
	if err != nil {
		return err
	}
	if err := sqlite.RunMigrations(ctx, db); err != nil {
		return err
	}

	policies := make(map[string]domain.NamespacePolicy, len(cfg.Namespaces))
	for graphType, ns := range cfg.Namespaces {
		policies[graphType] = domain.NamespacePolicy{DisallowSelfLoops: ns.DisallowSelfLoops}
	}

	repo := sqlite.NewGraphRepository(db,
		sqlite.WithLogger(log),
		sqlite.WithMetrics(observability.NewCacheMetrics(prometheus.DefaultRegisterer)),
		sqlite.WithBatchSize(cfg.Database.BatchSize),
		sqlite.WithPolicies(policies),
	)

	c.log = log
	c.cache = repo
	c.inspector = repo
	c.sqlDB, _ = db.DB()
	return nil
}

func (c *CLI) teardown() {
	if c.log != nil {
		_ = c.log.Sync()
	}
	if c.sqlDB != nil {
		_ = c.sqlDB.Close()
	}
}
