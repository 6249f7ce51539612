package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"verba/internal/application"
	"verba/internal/infra/gmail"
	"verba/internal/output"
)

func NewSendCmd(deps *Dependencies) *cobra.Command {
	var profile application.ProfileInput
	var req application.SendRequest
	var bodyFile string
	var sign bool

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a drafted email",
		Long:  "Send the email body in --body-file (\"-\" for stdin) to the selected contacts.\nWith Gmail a browser login is started on a local port.",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(deps.Stdout)
			ctx := cmd.Context()

			body, err := readBody(bodyFile, cmd.InOrStdin())
			if err != nil {
				return err
			}

			sess, err := newSession(deps, profile)
			if err != nil {
				return err
			}
			defer endSession(deps, sess)

			if sign {
				body = application.AppendSignature(body, sess.Snapshot().Profile)
			}
			if err := deps.App.Assistant.ImportDraft(sess, body); err != nil {
				return err
			}
			req.Draft = body

			if err := deps.App.Assistant.Send(ctx, sess, req, authorizer(deps, formatter)); err != nil {
				return err
			}

			formatter.Sent(sess.Snapshot().Sent)
			return nil
		},
	}

	addProfileFlags(cmd, &profile)
	cmd.Flags().StringSliceVar(&req.Labels, "to", nil, "contact labels to send to (repeatable)")
	cmd.Flags().StringVar(&req.Custom, "custom", "", "additional recipient address")
	cmd.Flags().StringVarP(&req.Subject, "subject", "s", "", "email subject")
	cmd.Flags().StringVarP(&bodyFile, "body-file", "b", "", "file holding the email body")
	cmd.Flags().BoolVar(&sign, "sign", false, "append the signature to the body")
	cmd.MarkFlagRequired("body-file")

	return cmd
}

func readBody(path string, stdin io.Reader) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}
	return string(data), nil
}

// authorizer runs the loopback login for Gmail. Other providers send with
// their configured key and need no token.
func authorizer(deps *Dependencies, formatter *output.Formatter) application.Authorizer {
	p, ok := deps.App.Mail.(*gmail.Provider)
	if !ok {
		return nil
	}
	return func(ctx context.Context) (*oauth2.Token, error) {
		return gmail.LoopbackLogin(ctx, p.OAuthConfig(), func(url string) error {
			formatter.AuthorizeURL(url)
			return nil
		})
	}
}
