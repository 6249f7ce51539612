package application

import (
	"context"

	"golang.org/x/oauth2"

	"verba/internal/domain"
)

// MailProvider submits messages under an authenticated sender identity.
// Providers that need no interactive login return "" from AuthURL and
// accept a nil token in Send.
type MailProvider interface {
	Name() string
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Send(ctx context.Context, tok *oauth2.Token, msg *domain.Message) (string, error)
}
