package application

import (
	"strings"

	"verba/internal/domain"
)

// ComposeSignature renders the closing block. Absent optional fields
// produce no blank lines.
func ComposeSignature(p domain.Profile) string {
	var sb strings.Builder
	sb.WriteString("\n\nBest regards,\n")
	sb.WriteString(p.Name)
	if p.Title != "" {
		sb.WriteString("\n" + p.Title)
	}
	sb.WriteString("\n" + p.Email)
	if p.Phone != "" {
		sb.WriteString("\n" + p.Phone)
	}
	return sb.String()
}

func AppendSignature(body string, p domain.Profile) string {
	return body + ComposeSignature(p)
}
