package application

import "context"

// Drafter turns a transcript into an email body without subject or signature.
type Drafter interface {
	Draft(ctx context.Context, transcript string) (string, error)
}
