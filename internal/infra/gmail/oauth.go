package gmail

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// SendScope allows sending mail as the authorizing user and nothing else.
const SendScope = "https://www.googleapis.com/auth/gmail.send"

// LoadOAuthConfig reads a Google client secrets file. redirectURL may be
// empty when the caller sets it later (loopback login).
func LoadOAuthConfig(credentialsFile, redirectURL string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading gmail credentials: %w", err)
	}

	cfg, err := google.ConfigFromJSON(data, SendScope)
	if err != nil {
		return nil, fmt.Errorf("parsing gmail credentials: %w", err)
	}
	if redirectURL != "" {
		cfg.RedirectURL = redirectURL
	}
	return cfg, nil
}

// LoopbackLogin runs the installed-app flow: it serves a one-shot redirect
// handler on a random 127.0.0.1 port, hands the consent URL to open and
// exchanges the returned code.
func LoopbackLogin(ctx context.Context, base *oauth2.Config, open func(authURL string) error) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("starting loopback listener: %w", err)
	}
	defer ln.Close()

	cfg := *base
	cfg.RedirectURL = fmt.Sprintf("http://%s/", ln.Addr().String())
	state := uuid.NewString()

	type result struct {
		code string
		err  error
	}
	done := make(chan result, 1)

	srv := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			var res result
			switch {
			case q.Get("state") != state:
				res.err = errors.New("authorization state mismatch")
			case q.Get("error") != "":
				res.err = fmt.Errorf("authorization denied: %s", q.Get("error"))
			case q.Get("code") == "":
				res.err = errors.New("authorization code missing")
			default:
				res.code = q.Get("code")
			}

			if res.err != nil {
				http.Error(w, res.err.Error(), http.StatusBadRequest)
			} else {
				fmt.Fprint(w, "Authorization complete. You can close this window.")
			}

			select {
			case done <- res:
			default:
			}
		}),
	}
	go srv.Serve(ln)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := open(cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)); err != nil {
		return nil, fmt.Errorf("opening consent page: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		tok, err := cfg.Exchange(ctx, res.code)
		if err != nil {
			return nil, fmt.Errorf("exchanging code: %w", err)
		}
		return tok, nil
	}
}
