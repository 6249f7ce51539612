package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"verba/internal/output"
)

func NewRecordCmd(deps *Dependencies) *cobra.Command {
	var outPath string
	var seconds int
	var untilSilence bool

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a voice note from the default microphone",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(deps.Stdout)

			if seconds <= 0 {
				return fmt.Errorf("--seconds must be positive")
			}
			limit := time.Duration(seconds) * time.Second

			formatter.Recording(limit)
			data, err := deps.App.Microphone.Record(cmd.Context(), limit, untilSilence)
			if err != nil {
				return err
			}

			if err := os.WriteFile(outPath, data, 0644); err != nil {
				return fmt.Errorf("writing recording: %w", err)
			}
			formatter.Saved(outPath, len(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "note.wav", "output WAV file")
	cmd.Flags().IntVar(&seconds, "seconds", 60, "maximum recording length")
	cmd.Flags().BoolVar(&untilSilence, "until-silence", false, "stop after a second of silence")

	return cmd
}
