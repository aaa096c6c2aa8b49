package application

import "context"

// Processor applies the post-processing chain (padding, tempo, reverb, gain)
// to raw synthesized PCM and returns playable WAV bytes.
type Processor interface {
	Process(ctx context.Context, pcm []byte) ([]byte, error)
}
