//go:build portaudio
// +build portaudio

package audio

import (
	"context"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// PortaudioPlayer plays WAV bytes on the default output device.
type PortaudioPlayer struct{}

func NewPortaudioPlayer() *PortaudioPlayer {
	return &PortaudioPlayer{}
}

func (p *PortaudioPlayer) Play(ctx context.Context, wav []byte) error {
	samples, sampleRate, err := DecodeWAV(wav)
	if err != nil {
		return fmt.Errorf("decoding wav: %w", err)
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}
	defer portaudio.Terminate()

	const framesPerBuffer = 1024
	buffer := make([]int16, framesPerBuffer)

	stream, err := portaudio.OpenDefaultStream(0, 1, float64(sampleRate), framesPerBuffer, &buffer)
	if err != nil {
		return fmt.Errorf("opening stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("starting stream: %w", err)
	}
	defer stream.Stop()

	offset := 0
	for offset < len(samples) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n := copy(buffer, samples[offset:])
		for i := n; i < len(buffer); i++ {
			buffer[i] = 0
		}
		offset += n

		if err := stream.Write(); err != nil {
			return fmt.Errorf("writing to stream: %w", err)
		}
	}

	return nil
}
