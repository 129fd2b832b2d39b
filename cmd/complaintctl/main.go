// Command complaintctl performs operator tasks against the complaint database.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/persistence"
)

var rootCmd = &cobra.Command{
	Use:           "complaintctl",
	Short:         "Operator tooling for the complaint service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// env is the shared runtime for subcommands.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	pg     *persistence.Postgres
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, pg: pg}, nil
}

func (e *env) Close() {
	e.pg.Close()
	_ = e.logger.Sync()
}
