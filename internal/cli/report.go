package cli

import (
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var (
		debug      bool
		noTelegram bool
		stateful   bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Report changes in the latest snapshot, at most once per snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(debug)
			if err != nil {
				return err
			}
			defer app.Close()

			_, err = app.Reporter(noTelegram).Run(cmd.Context(), stateful)
			return err
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	cmd.Flags().BoolVar(&noTelegram, "no-telegram", false, "print the report instead of sending it")
	cmd.Flags().BoolVar(&stateful, "stateful", false, "skip delivery when nothing changed since the last report")
	return cmd
}
