package gmail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"verba/internal/domain"
	"verba/internal/infra"
)

const DefaultBaseURL = "https://gmail.googleapis.com"

// Provider sends mail through the Gmail API as the user who authorized it.
type Provider struct {
	oauth   *oauth2.Config
	baseURL string
	timeout time.Duration
}

func NewProvider(cfg *oauth2.Config) *Provider {
	return NewProviderWithURL(cfg, DefaultBaseURL)
}

func NewProviderWithURL(cfg *oauth2.Config, baseURL string) *Provider {
	return &Provider{
		oauth:   cfg,
		baseURL: baseURL,
		timeout: 30 * time.Second,
	}
}

func (p *Provider) Name() string {
	return "gmail"
}

func (p *Provider) OAuthConfig() *oauth2.Config {
	return p.oauth
}

func (p *Provider) AuthURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (p *Provider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging code: %w", err)
	}
	return tok, nil
}

type sendRequest struct {
	Raw string `json:"raw"`
}

type sendResponse struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
}

// Send submits msg once; the returned id is the Gmail message id.
func (p *Provider) Send(ctx context.Context, tok *oauth2.Token, msg *domain.Message) (string, error) {
	if tok == nil {
		return "", errors.New("gmail requires an authorized token")
	}

	raw, err := EncodeRaw(msg)
	if err != nil {
		return "", fmt.Errorf("building message: %w", err)
	}

	bodyBytes, err := json.Marshal(sendRequest{Raw: raw})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: p.timeout})
	httpClient := p.oauth.Client(ctx, tok)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/gmail/v1/users/me/messages/send", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if err := infra.CheckResponse("gmail", resp); err != nil {
		return "", err
	}

	var result sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	return result.ID, nil
}
