package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"the-voice/config"
	"the-voice/internal/application"
	"the-voice/internal/infra/audio"
	"the-voice/internal/infra/console"
	"the-voice/internal/infra/ffmpeg"
	"the-voice/internal/infra/gemini"
	"the-voice/internal/infra/ir"
	"the-voice/internal/infra/openai"
	"the-voice/internal/infra/volcengine"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log)

	// Credentials are settled interactively before any client exists, so
	// nothing can reach the network half-configured.
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
		logger.Info("shutting down")
		cancel()
	}()

	source := createSource(cfg.Audio, logger)

	transcriber := createTranscriber(cfg.Speech, creds)

	synth := volcengine.NewTTSClient(
		cfg.Speech.TTSURL,
		creds.SpeechAppID,
		creds.SpeechAccessKey,
		cfg.Speech.TTSResourceID,
		cfg.Speech.Speaker,
		cfg.Speech.TTSSampleRate,
		cfg.Speech.SpeechRate,
	)

	reflector := createReflector(cfg.LLM, creds.LLMAPIKey)

	processor, err := createProcessor(cfg.Effects, cfg.Speech.TTSSampleRate, logger)
	if err != nil {
		logger.Error("setting up audio processing", "error", err)
		os.Exit(1)
	}

	companion := application.NewCompanion(
		source,
		transcriber,
		reflector,
		synth,
		processor,
		createPlayer(cfg.Audio, logger),
		console.NewNotifier(os.Stdout),
		logger,
	)

	logger.Info("starting voice companion",
		"audio_source", cfg.Audio.Source,
		"llm_provider", cfg.LLM.Provider,
	)

	if err := companion.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("companion error", "error", err)
		os.Exit(1)
	}
}

func createSource(cfg config.AudioConfig, logger *slog.Logger) application.Source {
	switch cfg.Source {
	case "http":
		return audio.NewHTTPSource(cfg.HTTPAddr, cfg.AuthToken, logger)
	case "file":
		return audio.NewFileSource(cfg.FileDir)
	case "console":
		return audio.NewConsoleSource(audio.NewMicrophoneRecorder(cfg.SampleRate), cfg.SampleRate, os.Stdin, os.Stdout, logger)
	default:
		logger.Warn("unknown audio source, using console", "source", cfg.Source)
		return audio.NewConsoleSource(audio.NewMicrophoneRecorder(cfg.SampleRate), cfg.SampleRate, os.Stdin, os.Stdout, logger)
	}
}

func createTranscriber(cfg config.SpeechConfig, creds *config.Credentials) application.Transcriber {
	if !cfg.RecognitionEnabled() {
		return &application.NoopTranscriber{}
	}
	return volcengine.NewASRClient(
		cfg.ASRURL,
		creds.SpeechAppID,
		creds.SpeechAccessKey,
		cfg.ASRResourceID,
		cfg.Language,
	)
}

func createReflector(cfg config.LLMConfig, apiKey string) application.Reflector {
	switch cfg.Provider {
	case "openai":
		return openai.NewReflector(apiKey, cfg.Model)
	default:
		return gemini.NewClient(apiKey, cfg.Model)
	}
}

func createPlayer(cfg config.AudioConfig, logger *slog.Logger) application.Player {
	switch cfg.Playback {
	case "portaudio":
		return audio.NewPortaudioPlayer()
	case "afplay":
		return audio.NewAfplayPlayer()
	default:
		logger.Warn("unknown playback backend, using afplay", "playback", cfg.Playback)
		return audio.NewAfplayPlayer()
	}
}

func createProcessor(cfg config.EffectsConfig, sampleRate int, logger *slog.Logger) (application.Processor, error) {
	bin, err := ffmpeg.Locate()
	if err != nil {
		return nil, err
	}

	var irPath string
	if cfg.ReverbEnabled() {
		store := ir.NewStore(cfg.IRDir, logger)
		if err := store.Scan(); err != nil {
			return nil, err
		}
		irPath, err = store.Find(cfg.ImpulseResponse)
		if err != nil {
			return nil, err
		}
	}

	chain := ffmpeg.Chain{
		PrependMs: cfg.PrependMs,
		AppendMs:  cfg.AppendMs,
		Tempo:     cfg.Tempo,
		Deesser:   cfg.Deesser,
		Gain:      cfg.Gain,
		Reverb:    cfg.ReverbEnabled(),
	}

	return ffmpeg.NewProcessor(bin, irPath, sampleRate, chain, logger), nil
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
