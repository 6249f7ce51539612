//go:build !portaudio
// +build !portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Microphone stub when portaudio is not available
type Microphone struct {
	logger *slog.Logger
}

func NewMicrophone(sampleRate int, logger *slog.Logger) *Microphone {
	return &Microphone{logger: logger}
}

func (m *Microphone) Record(_ context.Context, _ time.Duration, _ bool) ([]byte, error) {
	return nil, fmt.Errorf("microphone recording not available: rebuild with -tags portaudio")
}
