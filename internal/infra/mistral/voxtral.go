package mistral

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"verba/internal/infra"
)

// VoxtralClient transcribes audio with Mistral's Voxtral models.
type VoxtralClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	model      string
	retry      infra.RetryConfig
}

func NewVoxtralClient(apiKey, model string, timeout time.Duration, retry infra.RetryConfig) *VoxtralClient {
	return NewVoxtralClientWithURL(apiKey, model, "https://api.mistral.ai/v1", timeout, retry)
}

func NewVoxtralClientWithURL(apiKey, model, baseURL string, timeout time.Duration, retry infra.RetryConfig) *VoxtralClient {
	if model == "" {
		model = "voxtral-mini-latest"
	}
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &VoxtralClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		model:      model,
		retry:      retry,
	}
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

func (c *VoxtralClient) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("mistral API key not set: set VERBA_MISTRAL_API_KEY or mistral.api_key")
	}

	var result transcriptionResponse

	retryErr := infra.WithRetry(ctx, c.retry, func() error {
		file, err := os.Open(audioPath)
		if err != nil {
			return fmt.Errorf("opening audio file: %w", err)
		}
		defer file.Close()

		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)

		if err := writer.WriteField("model", c.model); err != nil {
			return fmt.Errorf("writing model field: %w", err)
		}

		part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
		if err != nil {
			return fmt.Errorf("creating form file: %w", err)
		}
		if _, err := io.Copy(part, file); err != nil {
			return fmt.Errorf("writing audio: %w", err)
		}

		if err := writer.Close(); err != nil {
			return fmt.Errorf("closing writer: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", body)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("calling Mistral API: %w", err)
		}
		defer resp.Body.Close()

		if err := infra.CheckResponse("mistral", resp); err != nil {
			return err
		}

		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("parsing Mistral response: %w", err)
		}
		return nil
	})

	if retryErr != nil {
		return "", retryErr
	}

	return result.Text, nil
}
