package ffmpeg

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Master is the batch profile: silence padding, a gentle EQ that tames
// harshness, optional convolution reverb, then broadcast loudness
// normalization. Output is MP3, ready to publish.
type Master struct {
	bin            string
	irPath         string
	prependMs      int
	appendMs       int
	loudnessTarget string
	truePeak       string
	reverb         bool
	logger         *slog.Logger
}

func NewMaster(bin, irPath string, prependMs, appendMs int, loudnessTarget, truePeak string, reverb bool, logger *slog.Logger) *Master {
	return &Master{
		bin:            bin,
		irPath:         irPath,
		prependMs:      prependMs,
		appendMs:       appendMs,
		loudnessTarget: loudnessTarget,
		truePeak:       truePeak,
		reverb:         reverb,
		logger:         logger,
	}
}

func (m *Master) FilterGraph() string {
	filters := []string{
		fmt.Sprintf("adelay=%d|%d", m.prependMs, m.prependMs),
		fmt.Sprintf("apad=pad_dur=%.2f", float64(m.appendMs)/1000),
		"highshelf=f=6000:g=-2",
		"lowpass=f=12000",
	}
	if m.reverb {
		filters = append(filters, "afir")
	}
	filters = append(filters, fmt.Sprintf("loudnorm=I=%s:LRA=7:TP=%s", m.loudnessTarget, m.truePeak))
	return strings.Join(filters, ",")
}

// Process masters MP3 speech into the final MP3.
func (m *Master) Process(ctx context.Context, mp3 []byte) ([]byte, error) {
	if len(mp3) == 0 {
		return nil, fmt.Errorf("empty audio")
	}

	reverb := m.reverb
	if reverb {
		if _, err := os.Stat(m.irPath); err != nil {
			m.logger.Warn("impulse response unavailable, skipping reverb", "path", m.irPath, "error", err)
			reverb = false
		}
	}

	id := uuid.NewString()
	inPath := filepath.Join(os.TempDir(), "voicegen-"+id+"-in.mp3")
	outPath := filepath.Join(os.TempDir(), "voicegen-"+id+"-out.mp3")
	defer os.Remove(inPath)
	defer os.Remove(outPath)

	if err := os.WriteFile(inPath, mp3, 0o600); err != nil {
		return nil, fmt.Errorf("writing input audio: %w", err)
	}

	graphed := *m
	graphed.reverb = reverb

	args := []string{"-y", "-i", inPath}
	if reverb {
		args = append(args, "-i", m.irPath, "-filter_complex", graphed.FilterGraph())
	} else {
		args = append(args, "-af", graphed.FilterGraph())
	}
	args = append(args, "-codec:a", "libmp3lame", "-b:a", "128k", outPath)

	m.logger.Debug("running ffmpeg", "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, m.bin, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w: %s", err, tail(output))
	}

	mastered, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("reading mastered audio: %w", err)
	}

	return mastered, nil
}
