package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/yigit/coursewatch/internal/pkg/apperrors"
	"github.com/yigit/coursewatch/internal/pkg/logger"
)

func newPollCmd() *cobra.Command {
	var (
		filePath string
		debug    bool
	)

	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Fetch the registrar feed and store one snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(debug)
			if err != nil {
				return err
			}
			defer app.Close()

			_, err = app.Poll(cmd.Context(), app.Fetcher(filePath))
			if errors.Is(err, apperrors.ErrConflict) {
				// A concurrent poll won the race for this timestamp.
				logger.Warn().Err(err).Msg("Snapshot already stored, nothing to do")
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "ingest a local feed file instead of downloading")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	return cmd
}
