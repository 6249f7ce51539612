package cli

import (
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"verba/internal/application"
)

func addProfileFlags(cmd *cobra.Command, in *application.ProfileInput) {
	cmd.Flags().StringVar(&in.Name, "name", "", "sender name (required)")
	cmd.Flags().StringVar(&in.Title, "title", "", "sender title")
	cmd.Flags().StringVar(&in.Email, "email", "", "sender email (required)")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "sender phone")
}

// newSession starts a one-shot session for a CLI command.
func newSession(deps *Dependencies, in application.ProfileInput) (*application.Session, error) {
	sess := application.NewSession(uuid.NewString(), time.Now())
	if err := deps.App.Assistant.SaveProfile(sess, in); err != nil {
		sess.Close()
		return nil, err
	}
	return sess, nil
}

func endSession(deps *Dependencies, sess *application.Session) {
	sess.Close()
	if err := deps.App.Stager.Remove(sess.ID); err != nil {
		deps.App.Logger.Warn("removing staged audio", "session", sess.ID, "error", err)
	}
}
