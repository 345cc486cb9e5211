package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/yigit/coursewatch/internal/pkg/apperrors"
	"github.com/yigit/coursewatch/internal/pkg/helpers"
	"github.com/yigit/coursewatch/internal/scheduler"
)

func newScheduleCmd() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run poll and report cycles on their configured intervals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(debug)
			if err != nil {
				return err
			}
			defer app.Close()

			poll := func(ctx context.Context) error {
				_, err := app.Poll(ctx, app.Fetcher(""))
				if errors.Is(err, apperrors.ErrConflict) {
					return nil
				}
				return err
			}
			report := func(ctx context.Context) error {
				_, err := app.Reporter(false).Run(ctx, true)
				return err
			}

			sched := scheduler.New(
				helpers.ParseDuration(app.Config.Scheduler.PollInterval, 30*time.Minute),
				helpers.ParseDuration(app.Config.Scheduler.ReportInterval, 6*time.Hour),
				poll, report,
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	return cmd
}
