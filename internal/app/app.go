package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"verba/config"
	"verba/internal/application"
	"verba/internal/domain"
	"verba/internal/infra"
	"verba/internal/infra/anthropic"
	"verba/internal/infra/audio"
	"verba/internal/infra/gemini"
	"verba/internal/infra/gmail"
	"verba/internal/infra/mistral"
	"verba/internal/infra/openai"
	"verba/internal/infra/pushover"
	"verba/internal/infra/resend"
	"verba/internal/session"
	"verba/internal/web"
)

// App holds the wired components shared by the CLI commands.
type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	Assistant  *application.Assistant
	Stager     *audio.Stager
	Mail       application.MailProvider
	Microphone *audio.Microphone
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	retry := infra.RetryConfigWithAttempts(cfg.Retry.MaxAttempts)

	stt, err := newTranscriber(cfg, retry, logger)
	if err != nil {
		return nil, err
	}
	drafter, err := newDrafter(cfg, retry, logger)
	if err != nil {
		return nil, err
	}
	mail, err := newMailProvider(cfg, logger)
	if err != nil {
		return nil, err
	}

	var notifier application.Notifier
	if cfg.Pushover.Enabled {
		notifier = pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.UserKey)
	} else {
		notifier = &application.NoopNotifier{}
	}

	stager := audio.NewStager(cfg.Audio.StagingDir, cfg.Audio.MaxBytes)

	entries := make([]domain.Contact, 0, len(cfg.Contacts.Entries))
	for _, c := range cfg.Contacts.Entries {
		entries = append(entries, domain.Contact{Label: c.Label, Email: c.Email})
	}

	assistant := application.NewAssistant(
		stager,
		stt,
		drafter,
		mail,
		domain.NewContactTable(entries),
		cfg.Contacts.SelfIncluded(),
		notifier,
		logger,
	)

	return &App{
		Config:     cfg,
		Logger:     logger,
		Assistant:  assistant,
		Stager:     stager,
		Mail:       mail,
		Microphone: audio.NewMicrophone(cfg.Audio.SampleRate, logger),
	}, nil
}

// NewWebServer builds the session store and the form UI. The caller owns
// the store and should Close it after the server stops.
func (a *App) NewWebServer() (*web.Server, *session.Store, error) {
	ttl := parseDuration(a.Logger, "web.session_ttl", a.Config.Web.SessionTTL, 2*time.Hour)

	store := session.NewStore(ttl, func(s *application.Session) {
		if err := a.Stager.Remove(s.ID); err != nil {
			a.Logger.Warn("removing staged audio", "session", s.ID, "error", err)
		}
	}, a.Logger)

	if a.Config.Web.SessionSecret == "" {
		a.Logger.Warn("no session secret configured, sessions will not survive a restart")
	}
	cookies, err := session.NewCookieCodec(
		a.Config.Web.SessionSecret,
		ttl,
		strings.HasPrefix(a.Config.Web.BaseURL, "https://"),
	)
	if err != nil {
		return nil, nil, err
	}

	srv := web.NewServer(web.Options{
		Addr:           a.Config.Web.Addr,
		MaxUploadBytes: a.Config.Audio.MaxBytes,
		RateLimit:      a.Config.Web.RateLimit,
	}, a.Assistant, store, cookies, a.Logger)

	return srv, store, nil
}

func newTranscriber(cfg *config.Config, retry infra.RetryConfig, logger *slog.Logger) (application.SpeechToText, error) {
	timeout := parseDuration(logger, "transcription.timeout", cfg.Transcription.Timeout, 60*time.Second)

	switch cfg.Transcription.Provider {
	case "openai":
		return openai.NewWhisperClient(openai.Options{
			APIKey:   cfg.OpenAI.APIKey,
			BaseURL:  cfg.OpenAI.BaseURL,
			Model:    cfg.OpenAI.TranscriptionModel,
			Language: cfg.OpenAI.Language,
			Timeout:  timeout,
			Retry:    retry,
		}), nil
	case "mistral":
		return mistral.NewVoxtralClient(cfg.Mistral.APIKey, cfg.Mistral.Model, timeout, retry), nil
	default:
		return nil, fmt.Errorf("unknown transcription provider %q", cfg.Transcription.Provider)
	}
}

func newDrafter(cfg *config.Config, retry infra.RetryConfig, logger *slog.Logger) (application.Drafter, error) {
	timeout := parseDuration(logger, "drafting.timeout", cfg.Drafting.Timeout, 30*time.Second)

	switch cfg.Drafting.Provider {
	case "openai":
		return openai.NewChatClient(openai.Options{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.ChatModel,
			Timeout: timeout,
			Retry:   retry,
		}), nil
	case "anthropic":
		return anthropic.NewClaudeClient(cfg.Anthropic.APIKey, cfg.Anthropic.Model, timeout, retry), nil
	case "gemini":
		return gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model, timeout, retry), nil
	default:
		return nil, fmt.Errorf("unknown drafting provider %q", cfg.Drafting.Provider)
	}
}

func newMailProvider(cfg *config.Config, logger *slog.Logger) (application.MailProvider, error) {
	switch cfg.Mail.Provider {
	case "gmail":
		oauthCfg, err := gmail.LoadOAuthConfig(cfg.Mail.Gmail.CredentialsFile, cfg.Web.BaseURL+"/oauth/callback")
		if err != nil {
			logger.Warn("gmail credentials unavailable, sending will fail", "error", err)
			return &unavailableMail{name: "gmail", err: err}, nil
		}
		return gmail.NewProviderWithURL(oauthCfg, cfg.Mail.Gmail.APIBaseURL), nil
	case "resend":
		return resend.NewClientWithURL(cfg.Mail.Resend.APIKey, cfg.Mail.Resend.From, cfg.Mail.Resend.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Mail.Provider)
	}
}

func parseDuration(logger *slog.Logger, key, value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		logger.Warn("invalid duration, using default", "key", key, "value", value, "error", err)
		return fallback
	}
	return d
}

// unavailableMail stands in for a provider whose credentials could not be
// loaded, so the failure surfaces on send rather than at startup.
type unavailableMail struct {
	name string
	err  error
}

func (u *unavailableMail) Name() string { return u.name }

func (u *unavailableMail) AuthURL(_ string) string { return "" }

func (u *unavailableMail) Exchange(_ context.Context, _ string) (*oauth2.Token, error) {
	return nil, u.err
}

func (u *unavailableMail) Send(_ context.Context, _ *oauth2.Token, _ *domain.Message) (string, error) {
	return "", u.err
}
