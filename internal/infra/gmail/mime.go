package gmail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"strings"

	"verba/internal/domain"
)

// BuildMIME renders msg as a single text/plain part.
func BuildMIME(msg *domain.Message) ([]byte, error) {
	if len(msg.To) == 0 {
		return nil, fmt.Errorf("message has no recipients")
	}

	to := make([]string, 0, len(msg.To))
	for _, addr := range msg.To {
		to = append(to, headerValue(addr))
	}

	var buf bytes.Buffer
	if msg.From != "" {
		fmt.Fprintf(&buf, "From: %s\r\n", headerValue(msg.From))
	}
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", headerValue(msg.Subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
	buf.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&buf)
	if _, err := qp.Write([]byte(strings.ReplaceAll(msg.Body, "\n", "\r\n"))); err != nil {
		return nil, fmt.Errorf("encoding body: %w", err)
	}
	if err := qp.Close(); err != nil {
		return nil, fmt.Errorf("encoding body: %w", err)
	}

	return buf.Bytes(), nil
}

// EncodeRaw returns the base64url form expected by the Gmail send API.
func EncodeRaw(msg *domain.Message) (string, error) {
	data, err := BuildMIME(msg)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(data), nil
}

// headerValue drops line breaks so values cannot inject headers.
func headerValue(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
