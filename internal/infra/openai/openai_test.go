package openai_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"verba/internal/infra/openai"
)

func writeAudio(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("RIFF....WAVEfmt fake"), 0644); err != nil {
		t.Fatalf("writing audio: %v", err)
	}
	return path
}

func TestWhisperClient_Transcribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			http.Error(w, "bad model "+got, http.StatusBadRequest)
			return
		}
		_, header, err := r.FormFile("file")
		if err != nil || header.Filename != "note.mp3" {
			http.Error(w, "bad file", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"text": "Ship the report by Friday"})
	}))
	defer server.Close()

	client := openai.NewWhisperClient(openai.Options{APIKey: "test-key", BaseURL: server.URL})

	text, err := client.Transcribe(context.Background(), writeAudio(t, "note.mp3"))
	if err != nil {
		t.Fatalf("Transcribe error: %v", err)
	}
	if text != "Ship the report by Friday" {
		t.Errorf("text: got %q", text)
	}
}

func TestWhisperClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := openai.NewWhisperClient(openai.Options{APIKey: "bad", BaseURL: server.URL})

	_, err := client.Transcribe(context.Background(), writeAudio(t, "note.wav"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "whisper API error 401") {
		t.Errorf("error: got %v", err)
	}
}

func TestWhisperClient_MissingFile(t *testing.T) {
	client := openai.NewWhisperClient(openai.Options{APIKey: "k"})

	if _, err := client.Transcribe(context.Background(), filepath.Join(t.TempDir(), "nope.wav")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestChatClient_Draft(t *testing.T) {
	var gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.Unmarshal(body, &req); err != nil || len(req.Messages) != 1 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if req.Model != "gpt-test" || req.Messages[0].Role != "user" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		gotPrompt = req.Messages[0].Content

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "\nHi team,\n\n- Report due Friday\n"}},
			},
		})
	}))
	defer server.Close()

	client := openai.NewChatClient(openai.Options{APIKey: "test-key", BaseURL: server.URL, Model: "gpt-test"})

	body, err := client.Draft(context.Background(), "Ship the report by Friday")
	if err != nil {
		t.Fatalf("Draft error: %v", err)
	}
	if body != "Hi team,\n\n- Report due Friday" {
		t.Errorf("body: got %q", body)
	}
	if !strings.Contains(gotPrompt, "Ship the report by Friday") {
		t.Errorf("prompt does not carry transcript: %q", gotPrompt)
	}
}

func TestChatClient_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := openai.NewChatClient(openai.Options{APIKey: "k", BaseURL: server.URL})

	if _, err := client.Draft(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for empty response")
	}
}
