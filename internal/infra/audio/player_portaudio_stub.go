//go:build !portaudio
// +build !portaudio

package audio

import (
	"context"
	"fmt"
)

// PortaudioPlayer stub when portaudio is not available.
type PortaudioPlayer struct{}

func NewPortaudioPlayer() *PortaudioPlayer {
	return &PortaudioPlayer{}
}

func (p *PortaudioPlayer) Play(_ context.Context, _ []byte) error {
	return fmt.Errorf("portaudio playback not available: rebuild with -tags portaudio")
}
