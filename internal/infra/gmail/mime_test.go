package gmail_test

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/quotedprintable"
	"net/mail"
	"strings"
	"testing"

	"verba/internal/domain"
	"verba/internal/infra/gmail"
)

func TestBuildMIME(t *testing.T) {
	msg := &domain.Message{
		From:    "a@x.com",
		To:      []string{"boss@example.com", "x@y.com"},
		Subject: "Weekly report",
		Body:    "Hi,\n\n- Report due Friday\n\nBest regards,\nAnn",
	}

	data, err := gmail.BuildMIME(msg)
	if err != nil {
		t.Fatalf("BuildMIME: %v", err)
	}

	parsed, err := mail.ReadMessage(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("parsing MIME: %v", err)
	}

	if got := parsed.Header.Get("To"); got != "boss@example.com, x@y.com" {
		t.Errorf("To: got %q", got)
	}
	if got := parsed.Header.Get("Subject"); got != "Weekly report" {
		t.Errorf("Subject: got %q", got)
	}
	if got := parsed.Header.Get("From"); got != "a@x.com" {
		t.Errorf("From: got %q", got)
	}
	if !strings.HasPrefix(parsed.Header.Get("Content-Type"), "text/plain") {
		t.Errorf("Content-Type: got %q", parsed.Header.Get("Content-Type"))
	}

	body, err := io.ReadAll(quotedprintable.NewReader(parsed.Body))
	if err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if got := strings.ReplaceAll(string(body), "\r\n", "\n"); got != msg.Body {
		t.Errorf("body: got %q, want %q", got, msg.Body)
	}
}

func TestBuildMIME_EncodesNonASCIISubject(t *testing.T) {
	data, err := gmail.BuildMIME(&domain.Message{
		To:      []string{"x@y.com"},
		Subject: "Reunión mañana",
		Body:    "hola",
	})
	if err != nil {
		t.Fatalf("BuildMIME: %v", err)
	}

	parsed, err := mail.ReadMessage(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("parsing MIME: %v", err)
	}
	raw := parsed.Header.Get("Subject")
	if !strings.HasPrefix(raw, "=?utf-8?q?") {
		t.Errorf("subject should be RFC 2047 encoded, got %q", raw)
	}
	decoded, err := new(mime.WordDecoder).DecodeHeader(raw)
	if err != nil || decoded != "Reunión mañana" {
		t.Errorf("decoded subject: got %q (%v)", decoded, err)
	}
}

func TestBuildMIME_StripsHeaderInjection(t *testing.T) {
	data, err := gmail.BuildMIME(&domain.Message{
		To:      []string{"x@y.com"},
		Subject: "Hello\r\nBcc: evil@example.com",
		Body:    "body",
	})
	if err != nil {
		t.Fatalf("BuildMIME: %v", err)
	}

	parsed, err := mail.ReadMessage(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("parsing MIME: %v", err)
	}
	if parsed.Header.Get("Bcc") != "" {
		t.Error("subject must not inject headers")
	}
}

func TestBuildMIME_NoRecipients(t *testing.T) {
	if _, err := gmail.BuildMIME(&domain.Message{Subject: "s", Body: "b"}); err == nil {
		t.Fatal("expected error without recipients")
	}
}

func TestEncodeRaw(t *testing.T) {
	msg := &domain.Message{To: []string{"x@y.com"}, Subject: "s", Body: "b"}

	raw, err := gmail.EncodeRaw(msg)
	if err != nil {
		t.Fatalf("EncodeRaw: %v", err)
	}
	decoded, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		t.Fatalf("raw is not base64url: %v", err)
	}
	want, _ := gmail.BuildMIME(msg)
	if !bytes.Equal(decoded, want) {
		t.Error("raw does not round-trip to the MIME message")
	}
}
