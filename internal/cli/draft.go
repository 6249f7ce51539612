package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"verba/internal/application"
	"verba/internal/output"
)

func NewDraftCmd(deps *Dependencies) *cobra.Command {
	var profile application.ProfileInput
	var outPath string

	cmd := &cobra.Command{
		Use:   "draft <audio>",
		Short: "Transcribe a voice note and print the email draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(deps.Stdout)

			sess, err := newSession(deps, profile)
			if err != nil {
				return err
			}
			defer endSession(deps, sess)

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening audio: %w", err)
			}
			defer f.Close()

			formatter.Transcribing(args[0])
			err = deps.App.Assistant.Process(cmd.Context(), sess, application.Upload{
				Filename: filepath.Base(args[0]),
				Body:     f,
			})
			if err != nil {
				return err
			}

			view := sess.Snapshot()
			formatter.Draft(view)

			if outPath != "" {
				if err := os.WriteFile(outPath, []byte(view.Draft), 0644); err != nil {
					return fmt.Errorf("writing draft: %w", err)
				}
				formatter.Saved(outPath, len(view.Draft))
			}
			return nil
		},
	}

	addProfileFlags(cmd, &profile)
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "also write the draft to this file")

	return cmd
}
