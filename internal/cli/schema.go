package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-timetable/pkg/config"
	"github.com/noah-isme/sma-timetable/pkg/database"
)

func schemaCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create missing tables and indexes",
		Long: `Applies the timetable schema. Existing tables are left untouched, so the command
is safe to run on every deploy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			target := s.cfg.Database.Path
			if s.cfg.Database.Driver == config.DriverPostgres {
				target = fmt.Sprintf("%s@%s:%d", s.cfg.Database.Name, s.cfg.Database.Host, s.cfg.Database.Port)
			}
			success(cmd.OutOrStdout(), "schema applied to %s (%s)", target, s.db.DriverName())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "print",
		Short: "Print the schema DDL for the configured driver",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			driverName := "sqlite3"
			if cfg.Database.Driver == config.DriverPostgres {
				driverName = "postgres"
			}
			ddl, err := database.SchemaSQL(driverName)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ddl)
			return nil
		},
	})
	return cmd
}
