package resend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"verba/internal/domain"
	"verba/internal/infra/resend"
)

type capturedEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	ReplyTo []string `json:"reply_to"`
}

func resendServer(t *testing.T, got *capturedEmail) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/emails" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer re_") {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"statusCode":401,"name":"missing_api_key"}`))
			return
		}
		if err := json.NewDecoder(r.Body).Decode(got); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if len(got.To) == 0 || got.Subject == "" || got.From == "" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"statusCode":422,"name":"validation_error"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"email_000001"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Send(t *testing.T) {
	var got capturedEmail
	srv := resendServer(t, &got)

	client := resend.NewClientWithURL("re_test_123", "Verba <notes@verba.dev>", srv.URL)

	id, err := client.Send(context.Background(), nil, &domain.Message{
		From:    "a@x.com",
		To:      []string{"boss@example.com", "x@y.com"},
		Subject: "Report",
		Body:    "- due Friday",
	})
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if id != "email_000001" {
		t.Errorf("id: got %q", id)
	}
	if got.From != "Verba <notes@verba.dev>" {
		t.Errorf("from: got %q", got.From)
	}
	if len(got.ReplyTo) != 1 || got.ReplyTo[0] != "a@x.com" {
		t.Errorf("reply_to: got %v", got.ReplyTo)
	}
	if got.Text != "- due Friday" {
		t.Errorf("text: got %q", got.Text)
	}
}

func TestClient_SendUnauthorized(t *testing.T) {
	var got capturedEmail
	srv := resendServer(t, &got)

	client := resend.NewClientWithURL("bad", "notes@verba.dev", srv.URL)

	_, err := client.Send(context.Background(), nil, &domain.Message{To: []string{"x@y.com"}, Subject: "s", Body: "b"})
	if err == nil || !strings.Contains(err.Error(), "resend API error 401") {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestClient_NoInteractiveLogin(t *testing.T) {
	client := resend.NewClient("re_x", "notes@verba.dev")

	if client.AuthURL("state") != "" {
		t.Error("resend should not need an auth URL")
	}
}
