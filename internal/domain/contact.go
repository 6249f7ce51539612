package domain

import "strings"

// SelfLabel is the contact label bound to the sender's own profile email.
const SelfLabel = "Myself"

type Contact struct {
	Label string
	Email string
}

// ContactTable is a read-only, ordered label -> address directory.
type ContactTable struct {
	contacts []Contact
	index    map[string]int
}

func NewContactTable(contacts []Contact) *ContactTable {
	t := &ContactTable{index: make(map[string]int, len(contacts))}
	for _, c := range contacts {
		label := strings.TrimSpace(c.Label)
		if label == "" {
			continue
		}
		if _, dup := t.index[label]; dup {
			continue
		}
		t.index[label] = len(t.contacts)
		t.contacts = append(t.contacts, Contact{Label: label, Email: strings.TrimSpace(c.Email)})
	}
	return t
}

func (t *ContactTable) Lookup(label string) (string, bool) {
	i, ok := t.index[label]
	if !ok {
		return "", false
	}
	return t.contacts[i].Email, true
}

func (t *ContactTable) Labels() []string {
	labels := make([]string, len(t.contacts))
	for i, c := range t.contacts {
		labels[i] = c.Label
	}
	return labels
}

func (t *ContactTable) Contacts() []Contact {
	out := make([]Contact, len(t.contacts))
	copy(out, t.contacts)
	return out
}
