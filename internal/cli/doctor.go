package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"verba/internal/output"
)

func NewDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and credentials",
		Long:  "Check configuration and credentials. Exits non-zero when a check fails.",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := output.NewFormatter(deps.Stdout)
			cfg := deps.App.Config
			ok := true

			check := func(name, value, hint string) {
				if value != "" {
					f.SetupCheck(name, true, "configured")
					return
				}
				f.SetupCheck(name, false, hint)
				ok = false
			}

			switch cfg.Transcription.Provider {
			case "openai":
				check("OpenAI API key (transcription)", cfg.OpenAI.APIKey, "not set. Set VERBA_OPENAI_API_KEY or add to config")
			case "mistral":
				check("Mistral API key", cfg.Mistral.APIKey, "not set. Set VERBA_MISTRAL_API_KEY or add to config")
			}

			switch cfg.Drafting.Provider {
			case "openai":
				check("OpenAI API key (drafting)", cfg.OpenAI.APIKey, "not set. Set VERBA_OPENAI_API_KEY or add to config")
			case "anthropic":
				check("Anthropic API key", cfg.Anthropic.APIKey, "not set. Set VERBA_ANTHROPIC_API_KEY or add to config")
			case "gemini":
				check("Gemini API key", cfg.Gemini.APIKey, "not set. Set VERBA_GEMINI_API_KEY or add to config")
			}

			switch cfg.Mail.Provider {
			case "gmail":
				if _, err := os.Stat(cfg.Mail.Gmail.CredentialsFile); err != nil {
					f.SetupCheck("Gmail credentials", false, fmt.Sprintf("%s not found. Download OAuth client secrets from Google Cloud Console", cfg.Mail.Gmail.CredentialsFile))
					ok = false
				} else {
					f.SetupCheck("Gmail credentials", true, cfg.Mail.Gmail.CredentialsFile)
				}
			case "resend":
				check("Resend API key", cfg.Mail.Resend.APIKey, "not set. Set VERBA_RESEND_API_KEY or add to config")
				check("Resend sender", cfg.Mail.Resend.From, "not set. Add mail.resend.from to config")
			}

			if err := os.MkdirAll(cfg.Audio.StagingDir, 0755); err != nil {
				f.SetupCheck("Staging directory", false, err.Error())
				ok = false
			} else {
				f.SetupCheck("Staging directory", true, cfg.Audio.StagingDir)
			}

			if cfg.Pushover.Enabled {
				check("Pushover token", cfg.Pushover.Token, "not set. Add pushover.token to config")
			}

			if !ok {
				return errors.New("some checks failed")
			}
			f.Success("\nAll checks passed.")
			return nil
		},
	}
}
