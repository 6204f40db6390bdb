// Package migrate is the schema migration tool. It applies the gorm
// auto-migration, reports which tables exist and previews what an apply
// would touch.
package migrate

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/ibrahimvarli/noresrp-sub001/internal/config"
	"github.com/ibrahimvarli/noresrp-sub001/internal/database"
	"github.com/ibrahimvarli/noresrp-sub001/internal/tools/common"
	"github.com/ibrahimvarli/noresrp-sub001/internal/tools/ui"
)

var osWriteFile = os.WriteFile

type options struct {
	envFile string
	ci      bool
	timeout time.Duration
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the multiplayer schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "env file to load before reading config")
	root.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive JSON output")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "per-command timeout")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply the schema migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := run(opts, "migrate up", "applied", func(ctx context.Context) ([]string, error) {
					_, db, err := loadConfigDB(opts.envFile)
					if err != nil {
						return nil, err
					}
					if err := database.Migrate(db); err != nil {
						return nil, err
					}
					return []string{"schema migrated"}, nil
				})
				return err
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Report which tables exist",
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := run(opts, "migrate status", "checked", func(ctx context.Context) ([]string, error) {
					_, db, err := loadConfigDB(opts.envFile)
					if err != nil {
						return nil, err
					}
					return tableStatus(db), nil
				})
				return err
			},
		},
		&cobra.Command{
			Use:   "plan",
			Short: "List the tables an apply would ensure",
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := run(opts, "migrate plan", "planned", func(ctx context.Context) ([]string, error) {
					lines := make([]string, 0, len(database.Tables))
					for _, table := range database.Tables {
						lines = append(lines, "ensure "+table)
					}
					return lines, nil
				})
				return err
			},
		},
	)
	return root
}

func run(opts *options, title, status string, action ui.Action) ([]string, error) {
	wrapped := func(ctx context.Context) ([]string, error) {
		ctx, cancel := context.WithTimeout(ctx, opts.timeout)
		defer cancel()
		return action(ctx)
	}
	if opts.ci {
		details, err := wrapped(context.Background())
		common.PrintCIResult(err == nil, title, details, err)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", status, err)
		}
		return details, nil
	}
	return ui.Run(title, wrapped)
}

func loadConfigDB(envFile string) (*config.Config, *gorm.DB, error) {
	if err := common.LoadEnvFile(envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func tableStatus(db *gorm.DB) []string {
	lines := make([]string, 0, len(database.Tables))
	for _, table := range database.Tables {
		state := "missing"
		if db.Migrator().HasTable(table) {
			state = "present"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", table, state))
	}
	return lines
}
