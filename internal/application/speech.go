package application

import (
	"context"
	"fmt"
)

type SpeechToText interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// NoopSTT stands in when no transcription provider is configured.
type NoopSTT struct{}

func (n *NoopSTT) Transcribe(_ context.Context, _ string) (string, error) {
	return "", fmt.Errorf("speech-to-text not configured: set openai.api_key or mistral.api_key")
}
