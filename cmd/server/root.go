package main

import (
	"context"
	"fmt"
	"time"

	"weeklygrind/plan-tracker/internal/config"
	"weeklygrind/plan-tracker/internal/logging"
	"weeklygrind/plan-tracker/internal/repository"
	"weeklygrind/plan-tracker/internal/repository/memory"
	"weeklygrind/plan-tracker/internal/repository/mongo"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:   "grind",
	Short: "Weekly Grind plan tracker",
	Long: `Weekly Grind serves weekly workout plans, tracks per-day completion
and lets users share plans with each other.

Configuration is read from config.yaml in the --config directory. Every key
can be overridden from the environment, e.g. DATABASE_URI or JWT_SECRET.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logging.Setup(logging.LoggerSetupParams{
			LogFileName:   cfg.Log.File,
			LogToStdout:   cfg.Log.Stdout,
			LogLevel:      cfg.Log.Level,
			LogFormatJSON: cfg.Log.JSON,
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "directory holding config.yaml")
}

// openRepositories connects the configured backend and, for MongoDB,
// optionally creates the indexes. The returned func releases the backend.
func openRepositories(ctx context.Context, dbCfg config.DatabaseConfig, ensureIndexes bool) (*repository.Repositories, func(), error) {
	if dbCfg.Driver == config.DriverMemory {
		log.Warnln("using the in-memory store, data is lost on exit")
		return memory.NewRepositories(memory.NewStore(), true), func() {}, nil
	}

	client, err := mongo.ConnectDB(ctx, dbCfg.URI)
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	closer := func() {
		if err := mongo.DisconnectDB(client); err != nil {
			log.Errorf("disconnect mongo: %s", err)
		}
	}
	db := client.Database(dbCfg.Name)
	if ensureIndexes {
		indexCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if err := mongo.EnsureIndexes(indexCtx, db); err != nil {
			closer()
			return nil, nil, fmt.Errorf("ensure indexes: %w", err)
		}
		log.Infoln("database indexes ensured")
	}
	if !dbCfg.Transactions {
		log.Infoln("mongo transactions disabled, share forks use compensating cleanup")
	}
	return mongo.NewRepositories(client, db, dbCfg.Transactions), closer, nil
}
