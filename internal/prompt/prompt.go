// Package prompt holds the fixed instructions sent to the drafting model.
package prompt

import (
	"fmt"
	"strings"
)

// EmailBody wraps a transcript in the drafting instructions. The model is
// asked for the body only: the subject comes from the form and the
// signature is appended afterwards.
func EmailBody(transcript string) string {
	return fmt.Sprintf(`Given the following transcript, write a professional email body only (no subject line, no closing signature).
Be concise, polite, and organize key points into bullets if needed.

Transcript:
%s

Email Body (No Subject Line, No Signature):
`, strings.TrimSpace(transcript))
}
