package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"verba/internal/application"
)

type Formatter struct {
	w io.Writer
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

func (f *Formatter) Transcribing(path string) {
	fmt.Fprintf(f.w, "📝 Transcribing %s and drafting email...\n", path)
}

// Draft prints the transcript and the draft with its signature.
func (f *Formatter) Draft(view application.View) {
	if view.Transcript != "" {
		fmt.Fprintf(f.w, "\nTranscript:\n%s\n", view.Transcript)
	}
	fmt.Fprintf(f.w, "\nDraft:\n%s\n", view.Draft)
}

func (f *Formatter) AuthorizeURL(url string) {
	fmt.Fprintf(f.w, "🔑 Authorize sending in your browser:\n   %s\n", url)
}

func (f *Formatter) Sent(sent *application.SentResult) {
	fmt.Fprintf(f.w, "✅ Email %q sent to %s", sent.Subject, strings.Join(sent.Recipients, ", "))
	if sent.MessageID != "" {
		fmt.Fprintf(f.w, " (id %s)", sent.MessageID)
	}
	fmt.Fprintln(f.w)
}

func (f *Formatter) Recording(limit time.Duration) {
	fmt.Fprintf(f.w, "🎙️  Recording for up to %s (Ctrl+C to stop)...\n", formatDuration(limit))
}

func (f *Formatter) Saved(path string, bytes int) {
	fmt.Fprintf(f.w, "✅ Saved %s (%d bytes)\n", path, bytes)
}

func (f *Formatter) Error(msg string) {
	fmt.Fprintf(f.w, "❌ %s\n", msg)
}

func (f *Formatter) Info(msg string) {
	fmt.Fprintf(f.w, "ℹ️  %s\n", msg)
}

func (f *Formatter) Success(msg string) {
	fmt.Fprintf(f.w, "✅ %s\n", msg)
}

func (f *Formatter) Warning(msg string) {
	fmt.Fprintf(f.w, "⚠️  %s\n", msg)
}

func (f *Formatter) SetupCheck(name string, ok bool, detail string) {
	if ok {
		fmt.Fprintf(f.w, "  ✅ %s: %s\n", name, detail)
	} else {
		fmt.Fprintf(f.w, "  ❌ %s: %s\n", name, detail)
	}
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
