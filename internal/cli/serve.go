package cli

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yigit/coursewatch/internal/app/controllers"
	"github.com/yigit/coursewatch/internal/app/routes"
	"github.com/yigit/coursewatch/internal/server"
)

func newServeCmd() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := newApp(debug)
			if err != nil {
				return err
			}
			defer app.Close()

			if app.Config.Server.Mode == "production" {
				gin.SetMode(gin.ReleaseMode)
			}
			router := gin.New()
			routes.Setup(router, controllers.NewDashboardController(app.Export, app.Diff))

			return server.New(app.Config, router).Run()
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	return cmd
}
