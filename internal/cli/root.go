package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"verba/config"
	"verba/internal/app"
	"verba/internal/version"
)

// Dependencies is filled in before any subcommand runs. Tests may preset
// App to skip config loading.
type Dependencies struct {
	ConfigPath string
	App        *app.App
	Stdout     io.Writer
	Stderr     io.Writer
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}

	rootCmd := &cobra.Command{
		Use:           "verba",
		Short:         "Turn voice notes into polished emails",
		Long:          "Verba transcribes a short audio note, rewrites it into a professional email body, signs it with your profile and sends it.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return deps.load(cmd)
		},
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")
	rootCmd.SetOut(deps.Stdout)
	rootCmd.SetErr(deps.Stderr)

	rootCmd.PersistentFlags().StringVarP(&deps.ConfigPath, "config", "c", "config.yaml", "path to config file (.yaml or .toml)")

	rootCmd.AddCommand(NewServeCmd(deps))
	rootCmd.AddCommand(NewDraftCmd(deps))
	rootCmd.AddCommand(NewSendCmd(deps))
	rootCmd.AddCommand(NewRecordCmd(deps))
	rootCmd.AddCommand(NewDoctorCmd(deps))

	return rootCmd
}

func (d *Dependencies) load(cmd *cobra.Command) error {
	if d.App != nil {
		return nil
	}

	cfg, err := loadConfig(d.ConfigPath, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}

	a, err := app.New(cfg, app.NewLogger(cfg.Log, d.Stderr))
	if err != nil {
		return fmt.Errorf("initializing app: %w", err)
	}
	d.App = a
	return nil
}

// loadConfig falls back to defaults when the default config file is
// absent. An explicitly named file must exist.
func loadConfig(path string, explicit bool) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return nil, fmt.Errorf("loading config: %w", err)
}
