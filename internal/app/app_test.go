package app_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"verba/config"
	"verba/internal/app"
	"verba/internal/domain"
	"verba/internal/infra/gmail"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Audio.StagingDir = t.TempDir()
	cfg.Mail.Gmail.CredentialsFile = filepath.Join(t.TempDir(), "missing.json")
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_MissingGmailCredentialsFailsOnSend(t *testing.T) {
	a, err := app.New(testConfig(t), discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if a.Mail.Name() != "gmail" {
		t.Errorf("provider: got %q", a.Mail.Name())
	}
	if a.Mail.AuthURL("s") != "" {
		t.Error("unavailable provider should not offer a login")
	}
	if _, err := a.Mail.Send(context.Background(), nil, &domain.Message{}); err == nil {
		t.Error("send should fail without credentials")
	}
}

func TestNew_GmailProvider(t *testing.T) {
	cfg := testConfig(t)
	creds := filepath.Join(t.TempDir(), "gmail_credentials.json")
	os.WriteFile(creds, []byte(`{"web":{"client_id":"cid","client_secret":"s","redirect_uris":["https://verba.example.com/oauth/callback"],
		"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token"}}`), 0600)
	cfg.Mail.Gmail.CredentialsFile = creds
	cfg.Web.BaseURL = "https://verba.example.com"

	a, err := app.New(cfg, discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	p, ok := a.Mail.(*gmail.Provider)
	if !ok {
		t.Fatalf("expected gmail provider, got %T", a.Mail)
	}
	if got := p.OAuthConfig().RedirectURL; got != "https://verba.example.com/oauth/callback" {
		t.Errorf("redirect: got %q", got)
	}
	if !strings.Contains(a.Mail.AuthURL("abc"), "state=abc") {
		t.Error("auth url should carry state")
	}
}

func TestNew_UnsetIncludeSelf(t *testing.T) {
	cfg := testConfig(t)
	cfg.Contacts.IncludeSelf = nil

	a, err := app.New(cfg, discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	table := a.Assistant.ContactTable(domain.Profile{Name: "Ann", Email: "a@x.com"})
	if labels := table.Labels(); len(labels) == 0 || labels[0] != domain.SelfLabel {
		t.Errorf("labels: got %v", labels)
	}
}

func TestNew_AlternateProviders(t *testing.T) {
	cfg := testConfig(t)
	cfg.Transcription.Provider = "mistral"
	cfg.Drafting.Provider = "gemini"
	cfg.Mail.Provider = "resend"

	a, err := app.New(cfg, discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.Mail.Name() != "resend" {
		t.Errorf("provider: got %q", a.Mail.Name())
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*config.Config)
	}{
		{"transcription", func(c *config.Config) { c.Transcription.Provider = "nope" }},
		{"drafting", func(c *config.Config) { c.Drafting.Provider = "nope" }},
		{"mail", func(c *config.Config) { c.Mail.Provider = "nope" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.setup(cfg)
			if _, err := app.New(cfg, discardLogger()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestApp_NewWebServer(t *testing.T) {
	a, err := app.New(testConfig(t), discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	srv, store, err := a.NewWebServer()
	if err != nil {
		t.Fatalf("NewWebServer: %v", err)
	}
	defer store.Close()

	if srv.Handler() == nil {
		t.Fatal("expected handler")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := app.NewLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info should be filtered at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"k":"v"`) {
		t.Errorf("expected json record, got %q", out)
	}
}
