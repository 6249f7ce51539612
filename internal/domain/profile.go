package domain

import "strings"

// Profile is the sender identity used for the signature block.
type Profile struct {
	Name  string
	Title string
	Email string
	Phone string
}

// NewProfile trims every field. Name and Email are required.
func NewProfile(name, title, email, phone string) (Profile, bool) {
	p := Profile{
		Name:  strings.TrimSpace(name),
		Title: strings.TrimSpace(title),
		Email: strings.TrimSpace(email),
		Phone: strings.TrimSpace(phone),
	}
	return p, p.Valid()
}

func (p Profile) Valid() bool {
	return p.Name != "" && p.Email != ""
}
