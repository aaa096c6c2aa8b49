package ir

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Store indexes a directory of impulse-response WAV files by name. Files
// are addressed by their base name without extension, so config can say
// "chapel_mono" and resolve to ir/chapel_mono.wav.
type Store struct {
	dir    string
	logger *slog.Logger

	mu    sync.RWMutex
	index map[string]string
}

func NewStore(dir string, logger *slog.Logger) *Store {
	return &Store{
		dir:    dir,
		logger: logger,
		index:  make(map[string]string),
	}
}

func (s *Store) Scan() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("reading impulse response directory: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.index = make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.EqualFold(filepath.Ext(name), ".wav") {
			continue
		}
		key := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
		s.index[key] = filepath.Join(s.dir, name)
	}

	s.logger.Info("impulse responses loaded", "dir", s.dir, "count", len(s.index))
	return nil
}

// Find resolves a name (with or without .wav extension) to a file path.
func (s *Store) Find(name string) (string, error) {
	key := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))

	s.mu.RLock()
	path, ok := s.index[key]
	s.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("impulse response %q not found in %s", name, s.dir)
	}
	return path, nil
}

func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.index))
	for name := range s.index {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
