package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/orderdesk/backend/internal/config"
	"github.com/orderdesk/backend/internal/logging"
	"github.com/orderdesk/backend/internal/repository"
	"github.com/orderdesk/backend/pkg/auth"
)

var migrationDirFlag string

var rootCmd = &cobra.Command{
	Use:           "migrate",
	Short:         "差分マイグレーションを適用",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd.Context(), func(ctx context.Context, m *migrator) error {
			return m.runIncremental(ctx)
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "全テーブルを DROP し、集約スキーマで再作成",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd.Context(), func(ctx context.Context, m *migrator) error {
			if err := m.runDropAll(ctx); err != nil {
				return err
			}
			return m.runConsolidated(ctx)
		})
	},
}

var freshCmd = &cobra.Command{
	Use:   "fresh",
	Short: "全テーブルを DROP し、全マイグレーションを順番に適用",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd.Context(), func(ctx context.Context, m *migrator) error {
			if err := m.runDropAll(ctx); err != nil {
				return err
			}
			return m.runIncremental(ctx)
		})
	},
}

var seedDevCmd = &cobra.Command{
	Use:   "seed-dev",
	Short: "開発用ユーザー (DevAuth の ID と DEV_ROLE) を作成・更新",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigratorConfig(cmd.Context(), func(ctx context.Context, cfg *config.Config, m *migrator) error {
			if cfg.IsProduction() {
				return errors.New("seed-dev is not available in production")
			}
			return m.seedDevUser(ctx, auth.DevUserID, cfg.DevRole)
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&migrationDirFlag, "dir", "", "migrations directory (default: ./migrations or ../migrations)")
	rootCmd.AddCommand(resetCmd, freshCmd, seedDevCmd)
}

func withMigrator(ctx context.Context, fn func(context.Context, *migrator) error) error {
	return withMigratorConfig(ctx, func(ctx context.Context, _ *config.Config, m *migrator) error {
		return fn(ctx, m)
	})
}

func withMigratorConfig(ctx context.Context, fn func(context.Context, *config.Config, *migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logging.Setup("orderdesk-migrate", cfg.LogLevel)

	dir := migrationDirFlag
	if dir == "" {
		dir = findMigrationDir()
	}

	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	return fn(ctx, cfg, newMigrator(poolExecer{pool}, dir))
}

// poolExecer adapts pgxpool.Pool to the narrow interface the migrator needs.
type poolExecer struct {
	pool *pgxpool.Pool
}

func (p poolExecer) Exec(ctx context.Context, sql string, args ...any) error {
	_, err := p.pool.Exec(ctx, sql, args...)
	return err
}

func (p poolExecer) Exists(ctx context.Context, sql string, args ...any) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx, sql, args...).Scan(&exists)
	return exists, err
}
