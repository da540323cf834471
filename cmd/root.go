package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/example/englishschool/internal/config"
	"github.com/example/englishschool/internal/db"
	"github.com/example/englishschool/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "englishschool",
		Short:         "English school web app: accounts, placement-test slot reservations and courses",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newKeysCmd())
	root.AddCommand(newServerCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newUserCmd())
	root.AddCommand(newPlacementCmd())
	root.AddCommand(newCourseCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runtime holds what every database-backed command opens first.
type runtime struct {
	cfg    config.Config
	logger *zap.Logger
	db     *db.DB
}

func openRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	d, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("db open: %w", err)
	}
	if err := d.Ping(ctx); err != nil {
		d.Close()
		_ = logger.Sync()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return &runtime{cfg: cfg, logger: logger, db: d}, nil
}

func (r *runtime) Close() {
	r.db.Close()
	_ = r.logger.Sync()
}
