package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/yigit/coursewatch/internal/pkg/apperrors"
	"github.com/yigit/coursewatch/internal/pkg/logger"
)

func newRunCmd() *cobra.Command {
	var (
		debug      bool
		noTelegram bool
		stateful   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Poll the feed, then report: one full cycle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(debug)
			if err != nil {
				return err
			}
			defer app.Close()

			_, err = app.Poll(cmd.Context(), app.Fetcher(""))
			if err != nil && !errors.Is(err, apperrors.ErrConflict) {
				return err
			}
			if err != nil {
				logger.Warn().Err(err).Msg("Snapshot already stored, continuing to report")
			}

			_, err = app.Reporter(noTelegram).Run(cmd.Context(), stateful)
			return err
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	cmd.Flags().BoolVar(&noTelegram, "no-telegram", false, "print the report instead of sending it")
	cmd.Flags().BoolVar(&stateful, "stateful", true, "skip delivery when nothing changed since the last report")
	return cmd
}
