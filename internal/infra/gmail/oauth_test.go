package gmail_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"verba/internal/infra/gmail"
)

func tokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access-123",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLoadOAuthConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gmail_credentials.json")
	creds := `{"installed":{"client_id":"cid","client_secret":"secret","redirect_uris":["http://localhost"],
		"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token"}}`
	if err := os.WriteFile(path, []byte(creds), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := gmail.LoadOAuthConfig(path, "http://127.0.0.1:8080/oauth/callback")
	if err != nil {
		t.Fatalf("LoadOAuthConfig: %v", err)
	}
	if cfg.ClientID != "cid" {
		t.Errorf("client id: got %q", cfg.ClientID)
	}
	if cfg.RedirectURL != "http://127.0.0.1:8080/oauth/callback" {
		t.Errorf("redirect: got %q", cfg.RedirectURL)
	}
	if len(cfg.Scopes) != 1 || cfg.Scopes[0] != gmail.SendScope {
		t.Errorf("scopes: got %v", cfg.Scopes)
	}
}

func TestLoadOAuthConfig_MissingFile(t *testing.T) {
	if _, err := gmail.LoadOAuthConfig(filepath.Join(t.TempDir(), "none.json"), ""); err == nil {
		t.Fatal("expected error for missing credentials")
	}
}

func TestLoopbackLogin(t *testing.T) {
	cfg := testOAuthConfig(tokenServer(t).URL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	open := func(authURL string) error {
		u, err := url.Parse(authURL)
		if err != nil {
			return err
		}
		q := u.Query()
		callback := q.Get("redirect_uri") + "?code=good-code&state=" + url.QueryEscape(q.Get("state"))
		go func() {
			resp, err := http.Get(callback)
			if err == nil {
				resp.Body.Close()
			}
		}()
		return nil
	}

	tok, err := gmail.LoopbackLogin(ctx, cfg, open)
	if err != nil {
		t.Fatalf("LoopbackLogin: %v", err)
	}
	if tok.AccessToken != "access-123" {
		t.Errorf("access token: got %q", tok.AccessToken)
	}
	if cfg.RedirectURL != "http://127.0.0.1:8080/oauth/callback" {
		t.Error("base config must not be modified")
	}
}

func TestLoopbackLogin_StateMismatch(t *testing.T) {
	cfg := testOAuthConfig(tokenServer(t).URL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	open := func(authURL string) error {
		u, _ := url.Parse(authURL)
		callback := u.Query().Get("redirect_uri") + "?code=good-code&state=forged"
		go func() {
			resp, err := http.Get(callback)
			if err == nil {
				resp.Body.Close()
			}
		}()
		return nil
	}

	if _, err := gmail.LoopbackLogin(ctx, cfg, open); err == nil {
		t.Fatal("expected state mismatch error")
	}
}
