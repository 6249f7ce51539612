package anthropic_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"verba/internal/infra"
	"verba/internal/infra/anthropic"
)

func TestClaudeClient_Draft(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if r.Header.Get("x-api-key") != "test-key" || r.Header.Get("anthropic-version") == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) != 1 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if !strings.Contains(req.Messages[0].Content, "Ship the report by Friday") {
			http.Error(w, "transcript missing", http.StatusBadRequest)
			return
		}

		response := map[string]any{
			"content": []map[string]string{
				{"type": "text", "text": "Hi team,\n\n"},
				{"type": "text", "text": "- The report ships Friday."},
			},
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := anthropic.NewClaudeClientWithURL("test-key", "claude-test", server.URL, time.Second, infra.DefaultRetryConfig())

	body, err := client.Draft(context.Background(), "Ship the report by Friday")
	if err != nil {
		t.Fatalf("Draft error: %v", err)
	}

	if body != "Hi team,\n\n- The report ships Friday." {
		t.Errorf("body: got %q", body)
	}
}

func TestClaudeClient_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"content": []any{}})
	}))
	defer server.Close()

	client := anthropic.NewClaudeClientWithURL("test-key", "claude-test", server.URL, time.Second, infra.DefaultRetryConfig())

	if _, err := client.Draft(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for empty content")
	}
}

func TestClaudeClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := anthropic.NewClaudeClientWithURL("test-key", "claude-test", server.URL, time.Second, infra.DefaultRetryConfig())

	_, err := client.Draft(context.Background(), "hello")
	if err == nil || !strings.Contains(err.Error(), "claude API error 400") {
		t.Fatalf("expected claude API error, got %v", err)
	}
}
