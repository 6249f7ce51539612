package cli

import (
	"time"

	"github.com/spf13/cobra"
)

func NewServeCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web form",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := deps.App
			ctx := cmd.Context()

			srv, store, err := a.NewWebServer()
			if err != nil {
				return err
			}
			defer store.Close()

			store.StartSweeper(ctx, time.Minute)

			if err := srv.Start(ctx); err != nil {
				return err
			}
			a.Logger.Info("verba ready",
				"url", a.Config.Web.BaseURL,
				"transcription", a.Config.Transcription.Provider,
				"drafting", a.Config.Drafting.Provider,
				"mail", a.Mail.Name(),
			)

			<-ctx.Done()
			a.Logger.Info("shutting down")
			return srv.Stop()
		},
	}
}
