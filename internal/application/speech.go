package application

import (
	"context"
	"fmt"
)

// Transcriber turns a WAV utterance into text. onPartial may be called with
// interim results while recognition is in progress; it may be nil.
type Transcriber interface {
	Transcribe(ctx context.Context, wav []byte, onPartial func(string)) (string, error)
}

// Synthesizer turns reflection text into raw PCM speech.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// NoopTranscriber is used with sources that only produce text turns.
type NoopTranscriber struct{}

func (n *NoopTranscriber) Transcribe(_ context.Context, _ []byte, _ func(string)) (string, error) {
	return "", fmt.Errorf("speech recognition not configured for this source")
}
