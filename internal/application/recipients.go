package application

import (
	"strings"

	"verba/internal/domain"
)

// ResolveRecipients maps the selected labels to addresses in selection
// order and appends the custom address. Unknown labels are skipped and
// duplicates (case-insensitive) keep their first position.
func ResolveRecipients(table *domain.ContactTable, labels []string, custom string) []string {
	seen := make(map[string]bool)
	var out []string

	add := func(addr string) {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			return
		}
		key := strings.ToLower(addr)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, addr)
	}

	for _, label := range labels {
		if addr, ok := table.Lookup(label); ok {
			add(addr)
		}
	}
	add(custom)

	return out
}
