package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"the-voice/internal/domain"
)

const idlePrompt = "Press Enter to speak, or type a message."

type Companion struct {
	source      Source
	transcriber Transcriber
	reflector   Reflector
	synth       Synthesizer
	processor   Processor
	player      Player
	notifier    Notifier
	logger      *slog.Logger
}

func NewCompanion(
	source Source,
	transcriber Transcriber,
	reflector Reflector,
	synth Synthesizer,
	processor Processor,
	player Player,
	notifier Notifier,
	logger *slog.Logger,
) *Companion {
	return &Companion{
		source:      source,
		transcriber: transcriber,
		reflector:   reflector,
		synth:       synth,
		processor:   processor,
		player:      player,
		notifier:    notifier,
		logger:      logger,
	}
}

// Run drives the turn loop. Turns are strictly sequential: the source is
// not consulted again until the previous turn has played or failed, so at
// most one turn is ever in flight.
func (c *Companion) Run(ctx context.Context) error {
	c.logger.Info("starting audio source", "source", c.source.Name())
	if err := c.source.Start(ctx); err != nil {
		return fmt.Errorf("starting audio: %w", err)
	}
	defer c.source.Stop()

	c.notify(ctx, idlePrompt)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := c.processOneTurn(ctx); err != nil {
				if errors.Is(err, io.EOF) {
					c.logger.Info("input closed, stopping")
					return nil
				}
				c.logger.Error("turn failed", "error", err)
				c.notify(ctx, fmt.Sprintf("Error: %s", err.Error()))
			}
			c.notify(ctx, idlePrompt)
		}
	}
}

// processOneTurn runs a single capture through the full pipeline. Any stage
// error aborts the turn; later stages are not attempted.
func (c *Companion) processOneTurn(ctx context.Context) error {
	utterance, err := c.source.NextUtterance(ctx)
	if err != nil {
		return fmt.Errorf("getting utterance: %w", err)
	}

	if len(utterance) == 0 {
		return nil
	}

	turn := &domain.Turn{}

	if text, isText := domain.TextUtterance(utterance); isText {
		c.logger.Info("received text turn", "text", text)
		turn.Transcript = text
	} else {
		turn.RawAudio = utterance
		c.logger.Info("received audio", "bytes", len(utterance))
		c.notify(ctx, "Listening…")

		turn.Transcript, err = c.transcriber.Transcribe(ctx, utterance, func(partial string) {
			c.notify(ctx, partial)
		})
		if err != nil {
			return fmt.Errorf("transcribing: %w", err)
		}

		c.logger.Info("transcribed", "text", turn.Transcript)
	}

	if strings.TrimSpace(turn.Transcript) == "" {
		c.notify(ctx, "Could not hear clearly.")
		return nil
	}

	c.notify(ctx, turn.Transcript)

	turn.Reflection, err = c.reflector.Reflect(ctx, turn.Transcript)
	if err != nil {
		return fmt.Errorf("reflecting: %w", err)
	}

	c.logger.Info("reflection ready", "chars", len(turn.Reflection))
	c.notify(ctx, "Preparing voice…")

	turn.Synthesis, err = c.synth.Synthesize(ctx, turn.Reflection)
	if err != nil {
		return fmt.Errorf("synthesizing: %w", err)
	}

	turn.Processed, err = c.processor.Process(ctx, turn.Synthesis)
	if err != nil {
		return fmt.Errorf("processing audio: %w", err)
	}

	if err := c.player.Play(ctx, turn.Processed); err != nil {
		return fmt.Errorf("playing: %w", err)
	}

	return nil
}

func (c *Companion) notify(ctx context.Context, message string) {
	if err := c.notifier.Notify(ctx, message); err != nil {
		c.logger.Error("notifying", "error", err)
	}
}
