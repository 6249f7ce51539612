package application

import "io"

// AudioStager persists an uploaded clip to the session's staging path.
type AudioStager interface {
	Stage(sessionID, filename string, r io.Reader) (string, error)
	Remove(sessionID string) error
}
