package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/stylefeed/catalog-service/config"
	"github.com/stylefeed/catalog-service/internal/database"
	"github.com/stylefeed/catalog-service/internal/logging"
	"github.com/stylefeed/catalog-service/internal/migration"
	"github.com/stylefeed/catalog-service/internal/store"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "catalog-service",
	Short: "Catalog Service CLI - brand catalog ingestion and price tracking tool",
	Long: `A CLI tool for syncing brand catalogs from Shopify, WooCommerce, and
generic JSON feeds, checking price alerts, exporting price history, and
running database migrations.`,
	PersistentPreRunE: persistentPreRun,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml or ./config.yaml)")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		// Config is optional for some commands, don't fail here
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
	}
}

// persistentPreRun runs before each command and initializes dependencies
func persistentPreRun(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}

	// Always use console format for the CLI.
	logCfg := logging.Config{Level: "info", Format: "console"}
	if cfg != nil {
		if cfg.Logging.Level != "" {
			logCfg.Level = cfg.Logging.Level
		}
		logCfg.NoColor = cfg.Logging.NoColor
	}
	logger = logging.Init(logCfg)

	return nil
}

// openStore builds the store commands operate against. Commands that
// mutate catalog data need the postgres driver; the memory store starts
// empty on every invocation so syncing into it is pointless.
func openStore(ctx context.Context) (store.Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required but not loaded")
	}

	switch store.Driver(cfg.Storage.Driver) {
	case store.DriverPostgres:
		if cfg.Database.URL == "" {
			return nil, fmt.Errorf("DATABASE_URL not set")
		}
		pool, err := database.Connect(ctx, cfg.Database.URL, database.PoolConfig{
			MaxConns:    cfg.Database.MaxConnections,
			MinConns:    cfg.Database.MinConnections,
			MaxLifetime: cfg.Database.MaxConnLifetime,
			MaxIdleTime: cfg.Database.MaxConnIdleTime,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		logger.Info().Msg("Database connected")
		return store.NewPostgresStore(pool), nil
	default:
		logger.Warn().Msg("Using in-memory storage; data will not persist")
		return store.NewMemoryStoreSeeded(), nil
	}
}

// migrateCmd applies pending database migrations
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			return fmt.Errorf("config required for migrate command but not loaded")
		}
		if cfg.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL not set")
		}

		if err := migration.Up(cfg.Storage.MigrationsPath, cfg.Database.URL); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		logger.Info().Msg("Migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
