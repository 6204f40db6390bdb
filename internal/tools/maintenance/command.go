// Package maintenance is the periodic cleanup entry point, intended to run
// from cron on each node.
package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ibrahimvarli/noresrp-sub001/internal/di"
	"github.com/ibrahimvarli/noresrp-sub001/internal/tools/common"
	"github.com/ibrahimvarli/noresrp-sub001/internal/tools/ui"
)

type options struct {
	envFile string
	ci      bool
	timeout time.Duration
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "maintenance",
		Short:         "Periodic multiplayer cleanup",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "env file to load before reading config")
	root.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive JSON output")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "per-command timeout")

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run one maintenance pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := run(opts, "maintenance run", func(ctx context.Context) ([]string, error) {
				if err := common.LoadEnvFile(opts.envFile); err != nil {
					return nil, err
				}
				m, err := di.InitializeMaintenance()
				if err != nil {
					return nil, err
				}
				return m.Run(ctx)
			})
			return err
		},
	})
	return root
}

func run(opts *options, title string, action ui.Action) ([]string, error) {
	wrapped := func(ctx context.Context) ([]string, error) {
		ctx, cancel := context.WithTimeout(ctx, opts.timeout)
		defer cancel()
		return action(ctx)
	}
	if opts.ci {
		details, err := wrapped(context.Background())
		common.PrintCIResult(err == nil, title, details, err)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", title, err)
		}
		return details, nil
	}
	return ui.Run(title, wrapped)
}
