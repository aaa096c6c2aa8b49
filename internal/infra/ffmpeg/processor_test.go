package ffmpeg_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"the-voice/internal/infra/ffmpeg"
)

func TestChain_FilterGraph(t *testing.T) {
	chain := ffmpeg.Chain{
		PrependMs: 900,
		AppendMs:  900,
		Tempo:     0.95,
		Deesser:   0.4,
		Gain:      2.0,
		Reverb:    true,
	}

	got := chain.FilterGraph()
	want := "adelay=900|900,atempo=0.95,deesser=i=0.4,afir,apad=pad_dur=0.90,volume=2"
	if got != want {
		t.Errorf("filter graph:\n got %q\nwant %q", got, want)
	}
}

func TestChain_FilterGraphNoReverb(t *testing.T) {
	chain := ffmpeg.Chain{
		PrependMs: 500,
		AppendMs:  1200,
		Tempo:     1.0,
		Deesser:   0.4,
		Gain:      1.5,
	}

	got := chain.FilterGraph()
	if strings.Contains(got, "afir") {
		t.Errorf("graph should not convolve without reverb: %q", got)
	}
	if !strings.Contains(got, "apad=pad_dur=1.20") {
		t.Errorf("graph missing tail pad: %q", got)
	}
}

func TestMaster_FilterGraph(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	m := ffmpeg.NewMaster("ffmpeg", "ir/chapel_mono.wav", 800, 1500, "-16", "-1.5", true, logger)

	got := m.FilterGraph()
	want := "adelay=800|800,apad=pad_dur=1.50,highshelf=f=6000:g=-2,lowpass=f=12000,afir,loudnorm=I=-16:LRA=7:TP=-1.5"
	if got != want {
		t.Errorf("filter graph:\n got %q\nwant %q", got, want)
	}
}

func TestProcessor_EmptyAudio(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	p := ffmpeg.NewProcessor("ffmpeg", "ir.wav", 24000, ffmpeg.Chain{}, logger)

	if _, err := p.Process(context.Background(), nil); err == nil {
		t.Error("expected error for empty audio")
	}
}

func TestProcessor_MissingImpulseResponse(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	chain := ffmpeg.Chain{PrependMs: 900, AppendMs: 900, Tempo: 0.95, Deesser: 0.4, Gain: 2.0, Reverb: true}
	p := ffmpeg.NewProcessor("ffmpeg", filepath.Join(t.TempDir(), "nope.wav"), 24000, chain, logger)

	if _, err := p.Process(context.Background(), []byte{0, 0}); err == nil {
		t.Error("expected error for missing impulse response")
	}
}

func TestLocate_PrefersBundledBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("bundle layout is unix-shaped")
	}

	// A fake ffmpeg next to the test binary must win over PATH.
	exe, err := os.Executable()
	if err != nil {
		t.Fatalf("resolving executable: %v", err)
	}
	bundled := filepath.Join(filepath.Dir(exe), "ffmpeg")
	if err := os.WriteFile(bundled, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Skipf("cannot place fake binary next to executable: %v", err)
	}
	defer os.Remove(bundled)

	path, err := ffmpeg.Locate()
	if err != nil {
		t.Fatalf("Locate error: %v", err)
	}
	if path != bundled {
		t.Errorf("Locate: got %q, want bundled %q", path, bundled)
	}
}
