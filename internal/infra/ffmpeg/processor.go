package ffmpeg

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Chain holds the interactive post-processing parameters. The goal is a
// calm, prayer-room voice: no loudness normalization, a slight slowdown,
// silence around the speech, and convolution reverb from a recorded room.
type Chain struct {
	PrependMs int
	AppendMs  int
	Tempo     float64
	Deesser   float64
	Gain      float64
	Reverb    bool
}

// FilterGraph renders the chain as an ffmpeg filter string. The afir stage
// expects the impulse response as the command's second input.
func (c Chain) FilterGraph() string {
	filters := []string{
		fmt.Sprintf("adelay=%d|%d", c.PrependMs, c.PrependMs),
		"atempo=" + strconv.FormatFloat(c.Tempo, 'g', -1, 64),
		fmt.Sprintf("deesser=i=%s", strconv.FormatFloat(c.Deesser, 'g', -1, 64)),
	}
	if c.Reverb {
		filters = append(filters, "afir")
	}
	filters = append(filters,
		fmt.Sprintf("apad=pad_dur=%.2f", float64(c.AppendMs)/1000),
		"volume="+strconv.FormatFloat(c.Gain, 'g', -1, 64),
	)
	return strings.Join(filters, ",")
}

// Processor turns raw PCM16 speech into a processed WAV by shelling out
// to ffmpeg.
type Processor struct {
	bin        string
	irPath     string
	sampleRate int
	chain      Chain
	logger     *slog.Logger
}

func NewProcessor(bin, irPath string, sampleRate int, chain Chain, logger *slog.Logger) *Processor {
	return &Processor{
		bin:        bin,
		irPath:     irPath,
		sampleRate: sampleRate,
		chain:      chain,
		logger:     logger,
	}
}

func (p *Processor) Process(ctx context.Context, pcm []byte) ([]byte, error) {
	if len(pcm) == 0 {
		return nil, fmt.Errorf("empty audio")
	}

	if p.chain.Reverb {
		if _, err := os.Stat(p.irPath); err != nil {
			return nil, fmt.Errorf("impulse response unavailable: %w", err)
		}
	}

	id := uuid.NewString()
	inPath := filepath.Join(os.TempDir(), "voice-"+id+".pcm")
	outPath := filepath.Join(os.TempDir(), "voice-"+id+".wav")
	defer os.Remove(inPath)
	defer os.Remove(outPath)

	if err := os.WriteFile(inPath, pcm, 0o600); err != nil {
		return nil, fmt.Errorf("writing input audio: %w", err)
	}

	args := []string{
		"-y",
		"-f", "s16le",
		"-ar", strconv.Itoa(p.sampleRate),
		"-ac", "1",
		"-i", inPath,
	}
	if p.chain.Reverb {
		args = append(args, "-i", p.irPath, "-filter_complex", p.chain.FilterGraph())
	} else {
		args = append(args, "-af", p.chain.FilterGraph())
	}
	args = append(args, outPath)

	p.logger.Debug("running ffmpeg", "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, p.bin, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w: %s", err, tail(output))
	}

	processed, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("reading processed audio: %w", err)
	}

	return processed, nil
}

// tail keeps error output readable; ffmpeg banners run long.
func tail(output []byte) string {
	const max = 400
	s := strings.TrimSpace(string(output))
	if len(s) > max {
		s = "..." + s[len(s)-max:]
	}
	return s
}
