package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var (
		debug   bool
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the dashboard JSON document to disk",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(debug)
			if err != nil {
				return err
			}
			defer app.Close()

			path := outPath
			if path == "" {
				path = filepath.Join(app.Config.Directories.Export, "dashboard.json")
			}
			return app.Export.WriteFile(cmd.Context(), path)
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	cmd.Flags().StringVar(&outPath, "out", "", "output path (default <export dir>/dashboard.json)")
	return cmd
}
