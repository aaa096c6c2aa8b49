package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// AfplayPlayer shells out to the macOS afplay binary.
type AfplayPlayer struct{}

func NewAfplayPlayer() *AfplayPlayer {
	return &AfplayPlayer{}
}

func (p *AfplayPlayer) Play(ctx context.Context, wav []byte) error {
	f, err := os.CreateTemp("", "voice-*.wav")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(wav); err != nil {
		f.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	cmd := exec.CommandContext(ctx, "afplay", f.Name())
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("afplay: %w (%s)", err, out)
	}

	return nil
}
