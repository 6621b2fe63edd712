package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/2beens/wodhub/internal/config"
	"github.com/2beens/wodhub/internal/db"
)

var (
	env        string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:           "wodctl",
	Short:         "wodctl runs maintenance tasks against a wodhub deployment",
	Long:          "wodctl applies database migrations, seeds the exercise catalog and hashes passwords for a wodhub deployment.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment [prod | production | dev | development | test]")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./configs/config.toml", "path for the TOML config file")
}

// openDB connects to the database configured for the selected environment.
func openDB(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load(env, configPath)
	if err != nil {
		return nil, err
	}

	pool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:     cfg.PostgresHost,
		DBPort:     cfg.PostgresPort,
		DBName:     cfg.PostgresDBName,
		DBUser:     cfg.PostgresUser,
		DBPassword: os.Getenv("WODHUB_DB_PASS"),
		MaxConns:   2,
	})
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}
