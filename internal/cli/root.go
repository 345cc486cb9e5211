package cli

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/yigit/coursewatch/internal/bootstrap"
	"github.com/yigit/coursewatch/internal/pkg/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "coursewatch",
	Short:        "Course-enrollment snapshot tracking and reporting",
	SilenceUsage: true,
}

// Execute runs the CLI. Any unrecovered error exits non-zero with the error
// kind surfaced in the message.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "path to the configuration file")

	rootCmd.AddCommand(
		newPollCmd(),
		newReportCmd(),
		newRunCmd(),
		newScheduleCmd(),
		newServeCmd(),
		newExportCmd(),
		newDBCmd(),
	)
}

// newApp boots the application. With debug set the log level is forced down
// regardless of configuration.
func newApp(debug bool) (*bootstrap.App, error) {
	app, err := bootstrap.New(configPath)
	if err != nil {
		return nil, err
	}
	if debug {
		logger.Configure(logger.Config{Level: logger.DebugLevel, Pretty: true})
	}
	return app, nil
}
