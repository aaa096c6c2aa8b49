package config

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Credentials holds the four secrets the companion needs: one for the LLM
// and three for the speech vendor. They live outside the yaml config, in a
// small JSON file under the user's home directory, and are only ever
// mutated through the settings prompt.
type Credentials struct {
	LLMAPIKey       string `json:"llm_api_key"`
	SpeechAppID     string `json:"speech_app_id"`
	SpeechAccessKey string `json:"speech_access_key"`
	SpeechSecretKey string `json:"speech_secret_key"`
}

func DefaultCredentialsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home dir: %w", err)
	}
	return filepath.Join(home, ".the-voice", "credentials.json"), nil
}

// LoadCredentials reads the credentials file. A missing file is not an
// error; it returns an empty record so the caller can prompt for it.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Credentials{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}

	return &creds, nil
}

func (c *Credentials) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating credentials dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}

	return nil
}

func (c *Credentials) Complete() bool {
	return len(c.missing()) == 0
}

func (c *Credentials) missing() []field {
	var out []field
	for _, f := range credentialFields {
		if strings.TrimSpace(*f.value(c)) == "" {
			out = append(out, f)
		}
	}
	return out
}

type field struct {
	label string
	value func(*Credentials) *string
}

var credentialFields = []field{
	{"LLM API key", func(c *Credentials) *string { return &c.LLMAPIKey }},
	{"Speech app ID", func(c *Credentials) *string { return &c.SpeechAppID }},
	{"Speech access key", func(c *Credentials) *string { return &c.SpeechAccessKey }},
	{"Speech secret key", func(c *Credentials) *string { return &c.SpeechSecretKey }},
}

// EnsureCredentials loads the record at path and, when fields are missing,
// prompts for them on in/out and persists the completed record immediately.
// It runs before any service client is constructed, so no network call can
// happen with incomplete credentials.
func EnsureCredentials(path string, in io.Reader, out io.Writer) (*Credentials, error) {
	creds, err := LoadCredentials(path)
	if err != nil {
		return nil, err
	}

	missing := creds.missing()
	if len(missing) == 0 {
		return creds, nil
	}

	fmt.Fprintf(out, "Settings: %d credential field(s) missing (%s)\n", len(missing), path)
	reader := bufio.NewReader(in)
	for _, f := range missing {
		fmt.Fprintf(out, "%s: ", f.label)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return nil, fmt.Errorf("reading %s: %w", f.label, err)
		}
		*f.value(creds) = strings.TrimSpace(line)
	}

	if !creds.Complete() {
		return nil, fmt.Errorf("credentials still incomplete after prompt")
	}

	if err := creds.Save(path); err != nil {
		return nil, err
	}

	return creds, nil
}
