// Package cli implements the timetablectl administration commands.
package cli

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable/internal/wire"
	"github.com/noah-isme/sma-timetable/pkg/config"
	"github.com/noah-isme/sma-timetable/pkg/database"
	"github.com/noah-isme/sma-timetable/pkg/logger"
)

type globalOptions struct {
	driver  string
	dbPath  string
	verbose bool
}

// session is one opened store with its services.
type session struct {
	cfg       *config.Config
	logger    *zap.Logger
	db        *sqlx.DB
	container *wire.Container
}

func (s *session) Close() {
	_ = s.db.Close()
	_ = s.logger.Sync()
}

// NewRootCmd builds the timetablectl command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "timetablectl",
		Short: "Administer the school timetable store",
		Long: `timetablectl manages the timetable database directly: it applies the schema,
audits the derived hour counters and adds, lists or removes schedule slots with the
same conflict checks as the HTTP API.

Connection settings come from the environment (.env, DB_DRIVER, DB_PATH, DB_HOST, ...)
and can be overridden with flags.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.driver, "driver", "", "database driver (sqlite or postgres)")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "sqlite database file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output")

	root.AddCommand(schemaCmd(opts))
	root.AddCommand(verifyCmd(opts))
	root.AddCommand(scheduleCmd(opts))
	root.AddCommand(exportCmd(opts))
	return root
}

func (o *globalOptions) config() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.driver != "" {
		cfg.Database.Driver = o.driver
	}
	if o.dbPath != "" {
		cfg.Database.Path = o.dbPath
	}
	return cfg, nil
}

func (o *globalOptions) open(ctx context.Context) (*session, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	logr := logger.NewCLI(o.verbose)
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Database.Driver, err)
	}
	logr.Debug("database opened", zap.String("driver", cfg.Database.Driver), zap.String("path", cfg.Database.Path))
	return &session{
		cfg:    cfg,
		logger: logr,
		db:     db,
		container: wire.Build(db, wire.Options{
			MaxSlots: cfg.Schedule.MaxSlots,
			Logger:   logr,
		}),
	}, nil
}
