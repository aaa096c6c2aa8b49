package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Audio   AudioConfig   `yaml:"audio"`
	Speech  SpeechConfig  `yaml:"speech"`
	LLM     LLMConfig     `yaml:"llm"`
	Effects EffectsConfig `yaml:"effects"`
	Log     LogConfig     `yaml:"log"`
}

type AudioConfig struct {
	Source     string `yaml:"source"`
	HTTPAddr   string `yaml:"http_addr"`
	FileDir    string `yaml:"file_dir"`
	SampleRate int    `yaml:"sample_rate"`
	Playback   string `yaml:"playback"`
	AuthToken  string `yaml:"auth_token"`
}

type SpeechConfig struct {
	ASRURL        string `yaml:"asr_url"`
	ASRResourceID string `yaml:"asr_resource_id"`
	TTSURL        string `yaml:"tts_url"`
	TTSResourceID string `yaml:"tts_resource_id"`
	LegacyTTSURL  string `yaml:"legacy_tts_url"`
	LegacyCluster string `yaml:"legacy_cluster"`
	Speaker       string `yaml:"speaker"`
	Language      string `yaml:"language"`
	TTSSampleRate int    `yaml:"tts_sample_rate"`
	SpeechRate    int    `yaml:"speech_rate"`

	// UseRecognition off means the source only ever produces text turns,
	// so no recognition client is needed.
	UseRecognition *bool `yaml:"use_recognition"`
}

type LLMConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

type EffectsConfig struct {
	IRDir           string  `yaml:"ir_dir"`
	ImpulseResponse string  `yaml:"impulse_response"`
	PrependMs       int     `yaml:"prepend_ms"`
	AppendMs        int     `yaml:"append_ms"`
	Tempo           float64 `yaml:"tempo"`
	Gain            float64 `yaml:"gain"`
	Deesser         float64 `yaml:"deesser"`
	UseReverb       *bool   `yaml:"use_reverb"`
	LoudnessTarget  string  `yaml:"loudness_target"`
	TruePeak        string  `yaml:"true_peak"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	// Keys from .env become visible to ${VAR} references inside the yaml file.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Audio.Source == "" {
		c.Audio.Source = "console"
	}
	if c.Audio.HTTPAddr == "" {
		c.Audio.HTTPAddr = ":8080"
	}
	if c.Audio.FileDir == "" {
		c.Audio.FileDir = "./audio"
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}
	if c.Audio.Playback == "" {
		c.Audio.Playback = "afplay"
	}
	if c.Speech.ASRURL == "" {
		c.Speech.ASRURL = "wss://openspeech.bytedance.com/api/v3/sauc/bigmodel_nostream"
	}
	if c.Speech.TTSURL == "" {
		c.Speech.TTSURL = "https://openspeech.bytedance.com/api/v3/tts/unidirectional"
	}
	if c.Speech.ASRResourceID == "" {
		c.Speech.ASRResourceID = "volc.bigasr.sauc.duration"
	}
	if c.Speech.TTSResourceID == "" {
		c.Speech.TTSResourceID = "seed-tts-1.0"
	}
	if c.Speech.LegacyTTSURL == "" {
		c.Speech.LegacyTTSURL = "https://openspeech.bytedance.com/api/v1/tts"
	}
	if c.Speech.LegacyCluster == "" {
		c.Speech.LegacyCluster = "volcano_tts"
	}
	if c.Speech.Speaker == "" {
		c.Speech.Speaker = "en_male_sylus_emo_v2_mars_bigtts"
	}
	if c.Speech.Language == "" {
		c.Speech.Language = "en-US"
	}
	if c.Speech.TTSSampleRate == 0 {
		c.Speech.TTSSampleRate = 24000
	}
	if c.Speech.SpeechRate == 0 {
		c.Speech.SpeechRate = -20
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "gemini"
	}
	if c.LLM.Model == "" {
		switch c.LLM.Provider {
		case "openai":
			c.LLM.Model = "gpt-4o-mini"
		default:
			c.LLM.Model = "gemini-2.0-flash"
		}
	}
	if c.Effects.IRDir == "" {
		c.Effects.IRDir = "./ir"
	}
	if c.Effects.ImpulseResponse == "" {
		c.Effects.ImpulseResponse = "chapel_mono"
	}
	if c.Effects.PrependMs == 0 {
		c.Effects.PrependMs = 900
	}
	if c.Effects.AppendMs == 0 {
		c.Effects.AppendMs = 900
	}
	if c.Effects.Tempo == 0 {
		c.Effects.Tempo = 0.95
	}
	if c.Effects.Gain == 0 {
		c.Effects.Gain = 2.0
	}
	if c.Effects.Deesser == 0 {
		c.Effects.Deesser = 0.4
	}
	if c.Effects.UseReverb == nil {
		enabled := true
		c.Effects.UseReverb = &enabled
	}
	if c.Effects.LoudnessTarget == "" {
		c.Effects.LoudnessTarget = "-16"
	}
	if c.Effects.TruePeak == "" {
		c.Effects.TruePeak = "-1.5"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// ReverbEnabled avoids nil checks at call sites.
func (e EffectsConfig) ReverbEnabled() bool {
	return e.UseReverb == nil || *e.UseReverb
}

func (s SpeechConfig) RecognitionEnabled() bool {
	return s.UseRecognition == nil || *s.UseRecognition
}
