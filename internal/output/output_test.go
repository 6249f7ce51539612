package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"verba/internal/application"
)

func TestFormatter_Sent(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf)

	f.Sent(&application.SentResult{
		MessageID:  "id-1",
		Recipients: []string{"a@x.com", "b@x.com"},
		Subject:    "Report",
	})

	want := "✅ Email \"Report\" sent to a@x.com, b@x.com (id id-1)\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestFormatter_DraftSkipsEmptyTranscript(t *testing.T) {
	var buf bytes.Buffer
	NewFormatter(&buf).Draft(application.View{Draft: "Body"})

	if strings.Contains(buf.String(), "Transcript") {
		t.Error("empty transcript should not be printed")
	}
	if !strings.Contains(buf.String(), "Draft:\nBody") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{90 * time.Second, "1m30s"},
		{1500 * time.Millisecond, "2s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
