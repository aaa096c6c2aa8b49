//go:build portaudio
// +build portaudio

package audio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// MicrophoneRecorder accumulates PCM16 frames from the default input
// device between Start and Stop.
type MicrophoneRecorder struct {
	sampleRate int

	mu      sync.Mutex
	stream  *portaudio.Stream
	samples []int16
	stop    chan struct{}
	done    chan struct{}
}

func NewMicrophoneRecorder(sampleRate int) *MicrophoneRecorder {
	return &MicrophoneRecorder{sampleRate: sampleRate}
}

func (m *MicrophoneRecorder) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stream != nil {
		return fmt.Errorf("already recording")
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}

	const framesPerBuffer = 1024
	buffer := make([]int16, framesPerBuffer)

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.sampleRate), framesPerBuffer, &buffer)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("opening stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("starting stream: %w", err)
	}

	m.stream = stream
	m.samples = m.samples[:0]
	m.stop = make(chan struct{})
	m.done = make(chan struct{})

	go func() {
		defer close(m.done)
		for {
			select {
			case <-m.stop:
				return
			default:
			}

			if err := stream.Read(); err != nil {
				return
			}

			frame := make([]int16, len(buffer))
			copy(frame, buffer)

			m.mu.Lock()
			m.samples = append(m.samples, frame...)
			m.mu.Unlock()
		}
	}()

	return nil
}

func (m *MicrophoneRecorder) Stop() ([]int16, error) {
	m.mu.Lock()
	stream := m.stream
	stop := m.stop
	done := m.done
	m.mu.Unlock()

	if stream == nil {
		return nil, nil
	}

	close(stop)
	stream.Stop()
	<-done
	stream.Close()
	portaudio.Terminate()

	m.mu.Lock()
	defer m.mu.Unlock()
	samples := make([]int16, len(m.samples))
	copy(samples, m.samples)
	m.stream = nil

	return samples, nil
}
