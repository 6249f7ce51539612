package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"verba/internal/domain"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported audio format: upload a .wav or .mp3 file")
	ErrTooLarge          = errors.New("audio file too large")
	ErrEmpty             = errors.New("empty audio file")
)

// Stager writes each session's upload to a fixed file under dir,
// overwriting the previous clip.
type Stager struct {
	dir      string
	maxBytes int64
	mu       sync.Mutex
}

func NewStager(dir string, maxBytes int64) *Stager {
	return &Stager{
		dir:      dir,
		maxBytes: maxBytes,
	}
}

func (s *Stager) Dir() string {
	return s.dir
}

// Path is the staging file for a session and extension.
func (s *Stager) Path(sessionID, ext string) string {
	return filepath.Join(s.dir, filepath.Base(sessionID)+ext)
}

func SupportedExtension(filename string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext, slices.Contains(domain.AudioExtensions, ext)
}

func (s *Stager) Stage(sessionID, filename string, r io.Reader) (string, error) {
	ext, ok := SupportedExtension(filename)
	if !ok {
		return "", ErrUnsupportedFormat
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("creating staging dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	n, err := io.Copy(tmp, src)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("writing audio: %w", err)
	}
	if s.maxBytes > 0 && n > s.maxBytes {
		return "", ErrTooLarge
	}
	if n == 0 {
		return "", ErrEmpty
	}

	if err := s.removeLocked(sessionID); err != nil {
		return "", err
	}

	path := s.Path(sessionID, ext)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("moving audio into place: %w", err)
	}

	return path, nil
}

// Remove deletes any staged clip for the session.
func (s *Stager) Remove(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(sessionID)
}

func (s *Stager) removeLocked(sessionID string) error {
	for _, ext := range domain.AudioExtensions {
		if err := os.Remove(s.Path(sessionID, ext)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing staged audio: %w", err)
		}
	}
	return nil
}
