package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Web           WebConfig           `yaml:"web" toml:"web"`
	Audio         AudioConfig         `yaml:"audio" toml:"audio"`
	Transcription TranscriptionConfig `yaml:"transcription" toml:"transcription"`
	Drafting      DraftingConfig      `yaml:"drafting" toml:"drafting"`
	OpenAI        OpenAIConfig        `yaml:"openai" toml:"openai"`
	Mistral       MistralConfig       `yaml:"mistral" toml:"mistral"`
	Anthropic     AnthropicConfig     `yaml:"anthropic" toml:"anthropic"`
	Gemini        GeminiConfig        `yaml:"gemini" toml:"gemini"`
	Mail          MailConfig          `yaml:"mail" toml:"mail"`
	Contacts      ContactsConfig      `yaml:"contacts" toml:"contacts"`
	Pushover      PushoverConfig      `yaml:"pushover" toml:"pushover"`
	Retry         RetryConfig         `yaml:"retry" toml:"retry"`
	Log           LogConfig           `yaml:"log" toml:"log"`
}

type WebConfig struct {
	Addr          string `yaml:"addr" toml:"addr"`
	BaseURL       string `yaml:"base_url" toml:"base_url"`
	SessionSecret string `yaml:"session_secret" toml:"session_secret"`
	SessionTTL    string `yaml:"session_ttl" toml:"session_ttl"`
	RateLimit     int    `yaml:"rate_limit" toml:"rate_limit"`
}

type AudioConfig struct {
	StagingDir string `yaml:"staging_dir" toml:"staging_dir"`
	MaxBytes   int64  `yaml:"max_bytes" toml:"max_bytes"`
	SampleRate int    `yaml:"sample_rate" toml:"sample_rate"`
}

type TranscriptionConfig struct {
	Provider string `yaml:"provider" toml:"provider"`
	Timeout  string `yaml:"timeout" toml:"timeout"`
}

type DraftingConfig struct {
	Provider string `yaml:"provider" toml:"provider"`
	Timeout  string `yaml:"timeout" toml:"timeout"`
}

type OpenAIConfig struct {
	APIKey             string `yaml:"api_key" toml:"api_key"`
	BaseURL            string `yaml:"base_url" toml:"base_url"`
	TranscriptionModel string `yaml:"transcription_model" toml:"transcription_model"`
	ChatModel          string `yaml:"chat_model" toml:"chat_model"`
	Language           string `yaml:"language" toml:"language"`
}

type MistralConfig struct {
	APIKey string `yaml:"api_key" toml:"api_key"`
	Model  string `yaml:"model" toml:"model"`
}

type AnthropicConfig struct {
	APIKey string `yaml:"api_key" toml:"api_key"`
	Model  string `yaml:"model" toml:"model"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key" toml:"api_key"`
	Model  string `yaml:"model" toml:"model"`
}

type MailConfig struct {
	Provider string       `yaml:"provider" toml:"provider"`
	Gmail    GmailConfig  `yaml:"gmail" toml:"gmail"`
	Resend   ResendConfig `yaml:"resend" toml:"resend"`
}

type GmailConfig struct {
	CredentialsFile string `yaml:"credentials_file" toml:"credentials_file"`
	APIBaseURL      string `yaml:"api_base_url" toml:"api_base_url"`
}

type ResendConfig struct {
	APIKey  string `yaml:"api_key" toml:"api_key"`
	From    string `yaml:"from" toml:"from"`
	BaseURL string `yaml:"base_url" toml:"base_url"`
}

// ContactsConfig is the static address book. Entries keep their file order.
type ContactsConfig struct {
	IncludeSelf *bool     `yaml:"include_self" toml:"include_self"`
	Entries     []Contact `yaml:"entries" toml:"entries"`
}

// SelfIncluded reports whether the Myself label is offered. Unset means true.
func (c ContactsConfig) SelfIncluded() bool {
	return c.IncludeSelf == nil || *c.IncludeSelf
}

type Contact struct {
	Label string `yaml:"label" toml:"label"`
	Email string `yaml:"email" toml:"email"`
}

type PushoverConfig struct {
	Token   string `yaml:"token" toml:"token"`
	UserKey string `yaml:"user_key" toml:"user_key"`
	Enabled bool   `yaml:"enabled" toml:"enabled"`
}

type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts" toml:"max_attempts"`
}

type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Load reads a YAML config, or TOML when the file ends in .toml. ${VAR}
// references are expanded before decoding.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.setDefaults()

	return &cfg, nil
}

// Default returns a config with only defaults and environment overrides,
// used when no config file exists.
func Default() *Config {
	var cfg Config
	cfg.applyEnvOverrides()
	cfg.setDefaults()
	return &cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("VERBA_OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	} else if c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if v := os.Getenv("VERBA_MISTRAL_API_KEY"); v != "" {
		c.Mistral.APIKey = v
	}
	if v := os.Getenv("VERBA_ANTHROPIC_API_KEY"); v != "" {
		c.Anthropic.APIKey = v
	}
	if v := os.Getenv("VERBA_GEMINI_API_KEY"); v != "" {
		c.Gemini.APIKey = v
	}
	if v := os.Getenv("VERBA_RESEND_API_KEY"); v != "" {
		c.Mail.Resend.APIKey = v
	}
	if v := os.Getenv("VERBA_SESSION_SECRET"); v != "" {
		c.Web.SessionSecret = v
	}
}

func (c *Config) setDefaults() {
	if c.Web.Addr == "" {
		c.Web.Addr = "127.0.0.1:8080"
	}
	if c.Web.BaseURL == "" {
		c.Web.BaseURL = "http://" + c.Web.Addr
	}
	c.Web.BaseURL = strings.TrimSuffix(c.Web.BaseURL, "/")
	if c.Web.SessionTTL == "" {
		c.Web.SessionTTL = "2h"
	}
	if c.Web.RateLimit == 0 {
		c.Web.RateLimit = 30
	}
	if c.Audio.StagingDir == "" {
		c.Audio.StagingDir = "static"
	}
	if c.Audio.MaxBytes == 0 {
		c.Audio.MaxBytes = 25 * 1024 * 1024
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}
	if c.Transcription.Provider == "" {
		c.Transcription.Provider = "openai"
	}
	if c.Transcription.Timeout == "" {
		c.Transcription.Timeout = "60s"
	}
	if c.Drafting.Provider == "" {
		c.Drafting.Provider = "openai"
	}
	if c.Drafting.Timeout == "" {
		c.Drafting.Timeout = "30s"
	}
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if c.OpenAI.TranscriptionModel == "" {
		c.OpenAI.TranscriptionModel = "whisper-1"
	}
	if c.OpenAI.ChatModel == "" {
		c.OpenAI.ChatModel = "gpt-4.1-nano-2025-04-14"
	}
	if c.Mistral.Model == "" {
		c.Mistral.Model = "voxtral-mini-latest"
	}
	if c.Anthropic.Model == "" {
		c.Anthropic.Model = "claude-haiku-4-5"
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.0-flash"
	}
	if c.Mail.Provider == "" {
		c.Mail.Provider = "gmail"
	}
	if c.Mail.Gmail.CredentialsFile == "" {
		c.Mail.Gmail.CredentialsFile = "credentials/gmail_credentials.json"
	}
	if c.Mail.Gmail.APIBaseURL == "" {
		c.Mail.Gmail.APIBaseURL = "https://gmail.googleapis.com"
	}
	if c.Mail.Resend.BaseURL == "" {
		c.Mail.Resend.BaseURL = "https://api.resend.com"
	}
	if c.Contacts.IncludeSelf == nil {
		includeSelf := true
		c.Contacts.IncludeSelf = &includeSelf
	}
	if len(c.Contacts.Entries) == 0 {
		c.Contacts.Entries = []Contact{
			{Label: "Boss", Email: "boss@example.com"},
			{Label: "Client", Email: "client@example.com"},
			{Label: "Coworker", Email: "coworker@example.com"},
		}
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 1
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}
