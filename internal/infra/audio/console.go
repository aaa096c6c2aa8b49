package audio

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"the-voice/internal/domain"
)

// Recorder captures microphone PCM between Start and Stop. The portaudio
// implementation lives behind the portaudio build tag.
type Recorder interface {
	Start() error
	Stop() ([]int16, error)
}

// ConsoleSource implements push-to-talk on a terminal: an empty line starts
// the recorder, the next line stops it and yields the captured utterance.
// A non-empty line is a typed text turn that bypasses recognition.
type ConsoleSource struct {
	recorder   Recorder
	sampleRate int
	logger     *slog.Logger
	in         io.Reader
	out        io.Writer
	lines      chan string
	errs       chan error
}

func NewConsoleSource(recorder Recorder, sampleRate int, in io.Reader, out io.Writer, logger *slog.Logger) *ConsoleSource {
	return &ConsoleSource{
		recorder:   recorder,
		sampleRate: sampleRate,
		logger:     logger,
		in:         in,
		out:        out,
		lines:      make(chan string),
		errs:       make(chan error, 1),
	}
}

func (c *ConsoleSource) Name() string {
	return "console"
}

func (c *ConsoleSource) Start(ctx context.Context) error {
	go func() {
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case c.lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			c.errs <- err
		}
		close(c.lines)
	}()
	return nil
}

func (c *ConsoleSource) Stop() error {
	return nil
}

func (c *ConsoleSource) NextUtterance(ctx context.Context) ([]byte, error) {
	line, err := c.nextLine(ctx)
	if err != nil {
		return nil, err
	}

	if text := strings.TrimSpace(line); text != "" {
		return []byte(domain.TextPrefix + text), nil
	}

	// Empty line: hold-to-talk begins. Recording runs until the next line,
	// whatever it contains.
	if err := c.recorder.Start(); err != nil {
		return nil, fmt.Errorf("starting recorder: %w", err)
	}
	fmt.Fprintln(c.out, "Recording… press Enter to stop.")

	if _, err := c.nextLine(ctx); err != nil {
		c.recorder.Stop()
		return nil, err
	}

	samples, err := c.recorder.Stop()
	if err != nil {
		return nil, fmt.Errorf("stopping recorder: %w", err)
	}

	if len(samples) == 0 {
		c.logger.Warn("no audio captured")
		return nil, nil
	}

	return EncodeWAV(samples, c.sampleRate), nil
}

func (c *ConsoleSource) nextLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-c.errs:
		return "", fmt.Errorf("reading input: %w", err)
	case line, ok := <-c.lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	}
}
