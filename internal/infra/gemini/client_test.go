package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"verba/internal/infra"
	"verba/internal/infra/gemini"
)

func TestClient_Draft(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-test:generateContent" || r.URL.Query().Get("key") != "gk" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": " - Report due Friday "}}}},
			},
		})
	}))
	defer server.Close()

	client := gemini.NewClientWithURL("gk", "gemini-test", server.URL, time.Second, infra.DefaultRetryConfig())

	body, err := client.Draft(context.Background(), "Ship the report by Friday")
	if err != nil {
		t.Fatalf("Draft error: %v", err)
	}
	if body != "- Report due Friday" {
		t.Errorf("body: got %q", body)
	}
}

func TestClient_ErrorPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":{"message":"quota exceeded","code":429}}`))
	}))
	defer server.Close()

	client := gemini.NewClientWithURL("gk", "gemini-test", server.URL, time.Second, infra.DefaultRetryConfig())

	if _, err := client.Draft(context.Background(), "hello"); err == nil {
		t.Fatal("expected error")
	}
}
