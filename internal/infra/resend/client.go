package resend

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

// Client sends mail through the Resend API with a static API key. It needs
// no interactive login.
type Client struct {
	apiKey     string
	from       string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey, from string) *Client {
	return NewClientWithURL(apiKey, from, "https://api.resend.com")
}

func NewClientWithURL(apiKey, from, baseURL string) *Client {
	return &Client{
		apiKey:     apiKey,
		from:       from,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) Name() string {
	return "resend"
}

func (c *Client) AuthURL(_ string) string {
	return ""
}

func (c *Client) Exchange(_ context.Context, _ string) (*oauth2.Token, error) {
	return nil, errors.New("resend does not use interactive authorization")
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	ReplyTo []string `json:"reply_to,omitempty"`
}

type sendResponse struct {
	ID string `json:"id"`
}

// Send posts msg from the configured sender address. The profile address
// in msg.From becomes the reply-to.
func (c *Client) Send(ctx context.Context, _ *oauth2.Token, msg *domain.Message) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("resend API key not set: set VERBA_RESEND_API_KEY or mail.resend.api_key")
	}

	from := c.from
	if from == "" {
		from = msg.From
	}

	reqBody := sendRequest{
		From:    from,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.Body,
	}
	if msg.From != "" && msg.From != from {
		reqBody.ReplyTo = []string{msg.From}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if err := infra.CheckResponse("resend", resp); err != nil {
		return "", err
	}

	var result sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	return result.ID, nil
}
