package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"the-voice/config"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("audio:\n  source: console\n"), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Audio.SampleRate != 16000 {
		t.Errorf("SampleRate: got %d, want 16000", cfg.Audio.SampleRate)
	}
	if cfg.Speech.TTSSampleRate != 24000 {
		t.Errorf("TTSSampleRate: got %d, want 24000", cfg.Speech.TTSSampleRate)
	}
	if cfg.LLM.Provider != "gemini" {
		t.Errorf("Provider: got %s, want gemini", cfg.LLM.Provider)
	}
	if cfg.LLM.Model != "gemini-2.0-flash" {
		t.Errorf("Model: got %s, want gemini-2.0-flash", cfg.LLM.Model)
	}
	if !cfg.Effects.ReverbEnabled() {
		t.Error("reverb should default to enabled")
	}
	if cfg.Effects.Tempo != 0.95 {
		t.Errorf("Tempo: got %f, want 0.95", cfg.Effects.Tempo)
	}
	if !cfg.Speech.RecognitionEnabled() {
		t.Error("recognition should default to enabled")
	}
}

func TestLoad_RecognitionDisabled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "speech:\n  use_recognition: false\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Speech.RecognitionEnabled() {
		t.Error("use_recognition: false should disable recognition")
	}
}

func TestLoad_OpenAIModelDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("llm:\n  provider: openai\n"), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("Model: got %s, want gpt-4o-mini", cfg.LLM.Model)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_VOICE_SPEAKER", "en_male_bruce_moon_bigtts")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "speech:\n  speaker: ${TEST_VOICE_SPEAKER}\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Speech.Speaker != "en_male_bruce_moon_bigtts" {
		t.Errorf("Speaker: got %s, want expanded env value", cfg.Speech.Speaker)
	}
}

func TestCredentials_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	want := &config.Credentials{
		LLMAPIKey:       "llm-key",
		SpeechAppID:     "app-id",
		SpeechAccessKey: "access-key",
		SpeechSecretKey: "secret-key",
	}

	if err := want.Save(path); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := config.LoadCredentials(path)
	if err != nil {
		t.Fatalf("LoadCredentials error: %v", err)
	}

	if *got != *want {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("credentials file mode: got %o, want 0600", info.Mode().Perm())
	}
}

func TestLoadCredentials_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.json")

	creds, err := config.LoadCredentials(path)
	if err != nil {
		t.Fatalf("LoadCredentials error: %v", err)
	}

	if creds.Complete() {
		t.Error("empty credentials should not be complete")
	}
}

func TestEnsureCredentials_PromptsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	partial := &config.Credentials{
		LLMAPIKey:   "llm-key",
		SpeechAppID: "app-id",
	}
	if err := partial.Save(path); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	in := strings.NewReader("access-key\nsecret-key\n")
	var out strings.Builder

	creds, err := config.EnsureCredentials(path, in, &out)
	if err != nil {
		t.Fatalf("EnsureCredentials error: %v", err)
	}

	if !creds.Complete() {
		t.Fatal("credentials should be complete after prompt")
	}
	if creds.SpeechAccessKey != "access-key" || creds.SpeechSecretKey != "secret-key" {
		t.Errorf("prompted values not applied: %+v", creds)
	}
	if !strings.Contains(out.String(), "Speech access key") {
		t.Errorf("prompt output missing field label: %q", out.String())
	}

	// The completed record is persisted right away.
	saved, err := config.LoadCredentials(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if *saved != *creds {
		t.Errorf("persisted record mismatch: got %+v, want %+v", saved, creds)
	}
}

func TestEnsureCredentials_CompleteRecordSkipsPrompt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	full := &config.Credentials{
		LLMAPIKey:       "a",
		SpeechAppID:     "b",
		SpeechAccessKey: "c",
		SpeechSecretKey: "d",
	}
	if err := full.Save(path); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	var out strings.Builder
	creds, err := config.EnsureCredentials(path, strings.NewReader(""), &out)
	if err != nil {
		t.Fatalf("EnsureCredentials error: %v", err)
	}

	if out.Len() != 0 {
		t.Errorf("no prompt expected for complete record, got %q", out.String())
	}
	if *creds != *full {
		t.Errorf("record mismatch: got %+v", creds)
	}
}
