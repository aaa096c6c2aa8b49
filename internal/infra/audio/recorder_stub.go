//go:build !portaudio
// +build !portaudio

package audio

import "fmt"

// MicrophoneRecorder stub when portaudio is not available. Text turns still
// work; holding to talk reports the missing build tag.
type MicrophoneRecorder struct {
	sampleRate int
}

func NewMicrophoneRecorder(sampleRate int) *MicrophoneRecorder {
	return &MicrophoneRecorder{sampleRate: sampleRate}
}

func (m *MicrophoneRecorder) Start() error {
	return fmt.Errorf("microphone not available: rebuild with -tags portaudio")
}

func (m *MicrophoneRecorder) Stop() ([]int16, error) {
	return nil, nil
}
