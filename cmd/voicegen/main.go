package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"the-voice/config"
	"the-voice/internal/application"
	"the-voice/internal/infra/ffmpeg"
	"the-voice/internal/infra/gemini"
	"the-voice/internal/infra/ir"
	"the-voice/internal/infra/openai"
	"the-voice/internal/infra/volcengine"
)

// voicegen is the batch companion to the interactive app: it turns a line
// of text into a mastered MP3. With arguments the text is synthesized as
// given; without, an interactive loop sends each line through the
// reflection model first.
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	outDir := flag.String("out", "output", "directory for generated audio")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log)

	credsPath, err := config.DefaultCredentialsPath()
	if err != nil {
		logger.Error("resolving credentials path", "error", err)
		os.Exit(1)
	}
	creds, err := config.EnsureCredentials(credsPath, os.Stdin, os.Stdout)
	if err != nil {
		logger.Error("collecting credentials", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	master, err := createMaster(cfg.Effects, logger)
	if err != nil {
		logger.Error("setting up mastering", "error", err)
		os.Exit(1)
	}

	gen := &generator{
		tts: volcengine.NewLegacyTTSClient(
			cfg.Speech.LegacyTTSURL,
			creds.SpeechAppID,
			creds.SpeechAccessKey,
			creds.SpeechSecretKey,
			cfg.Speech.LegacyCluster,
			cfg.Speech.Speaker,
		),
		master: master,
		outDir: *outDir,
		logger: logger,
	}

	if flag.NArg() > 0 {
		// Direct text, no reflection pass.
		if _, err := gen.generate(ctx, strings.Join(flag.Args(), " ")); err != nil {
			logger.Error("generating audio", "error", err)
			os.Exit(1)
		}
		return
	}

	runInteractive(ctx, gen, createReflector(cfg.LLM, creds.LLMAPIKey))
}

type generator struct {
	tts    *volcengine.LegacyTTSClient
	master *ffmpeg.Master
	outDir string
	logger *slog.Logger
}

func (g *generator) generate(ctx context.Context, text string) (string, error) {
	g.logger.Info("synthesizing", "chars", len(text))
	mp3, err := g.tts.Synthesize(ctx, text)
	if err != nil {
		return "", fmt.Errorf("synthesizing: %w", err)
	}

	g.logger.Info("mastering")
	mastered, err := g.master.Process(ctx, mp3)
	if err != nil {
		return "", fmt.Errorf("mastering: %w", err)
	}

	if err := os.MkdirAll(g.outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	path := filepath.Join(g.outDir, uuid.NewString()+"_prayer.mp3")
	if err := os.WriteFile(path, mastered, 0o644); err != nil {
		return "", fmt.Errorf("writing output: %w", err)
	}

	g.logger.Info("done", "path", path)
	return path, nil
}

func runInteractive(ctx context.Context, gen *generator, reflector application.Reflector) {
	fmt.Println("Enter your text below (or 'q' to quit):")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "q", "quit", "exit":
			return
		}

		reflection, err := reflector.Reflect(ctx, line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		fmt.Printf("\n---\n%s\n---\n", reflection)

		if _, err := gen.generate(ctx, reflection); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}

		if ctx.Err() != nil {
			return
		}
	}
}

func createMaster(cfg config.EffectsConfig, logger *slog.Logger) (*ffmpeg.Master, error) {
	bin, err := ffmpeg.Locate()
	if err != nil {
		return nil, err
	}

	reverb := cfg.ReverbEnabled()
	var irPath string
	if reverb {
		store := ir.NewStore(cfg.IRDir, logger)
		if err := store.Scan(); err != nil {
			logger.Warn("impulse responses unavailable, skipping reverb", "error", err)
			reverb = false
		} else if irPath, err = store.Find(cfg.ImpulseResponse); err != nil {
			logger.Warn("impulse response missing, skipping reverb", "error", err)
			reverb = false
		}
	}

	return ffmpeg.NewMaster(bin, irPath, cfg.PrependMs, cfg.AppendMs, cfg.LoudnessTarget, cfg.TruePeak, reverb, logger), nil
}

func createReflector(cfg config.LLMConfig, apiKey string) application.Reflector {
	switch cfg.Provider {
	case "openai":
		return openai.NewReflector(apiKey, cfg.Model)
	default:
		return gemini.NewClient(apiKey, cfg.Model)
	}
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
