//go:build portaudio
// +build portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gordonklaus/portaudio"
)

const framesPerBuffer = 1024

// Microphone records a clip from the default input device.
type Microphone struct {
	sampleRate int
	logger     *slog.Logger
}

func NewMicrophone(sampleRate int, logger *slog.Logger) *Microphone {
	return &Microphone{
		sampleRate: sampleRate,
		logger:     logger,
	}
}

// Record captures up to maxDuration of audio and returns it as WAV. With
// stopOnSilence, one second of silence after the first second ends the clip.
func (m *Microphone) Record(ctx context.Context, maxDuration time.Duration, stopOnSilence bool) ([]byte, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing portaudio: %w", err)
	}
	defer portaudio.Terminate()

	buffer := make([]int16, framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.sampleRate), framesPerBuffer, buffer)
	if err != nil {
		return nil, fmt.Errorf("opening stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("starting stream: %w", err)
	}
	defer stream.Stop()

	m.logger.Info("microphone recording", "sample_rate", m.sampleRate, "max_duration", maxDuration)

	maxSamples := int(maxDuration.Seconds() * float64(m.sampleRate))
	samples := make([]int16, 0, maxSamples)
	silentFor := 0

	for len(samples) < maxSamples {
		select {
		case <-ctx.Done():
			if len(samples) == 0 {
				return nil, ctx.Err()
			}
			return EncodeWAV(samples, m.sampleRate), nil
		default:
		}

		if err := stream.Read(); err != nil {
			return nil, fmt.Errorf("reading from stream: %w", err)
		}
		samples = append(samples, buffer...)

		if !stopOnSilence {
			continue
		}
		if isSilent(buffer, 500) {
			silentFor += len(buffer)
		} else {
			silentFor = 0
		}
		if silentFor > m.sampleRate && len(samples) > m.sampleRate {
			break
		}
	}

	return EncodeWAV(samples, m.sampleRate), nil
}
