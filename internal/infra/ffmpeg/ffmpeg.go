package ffmpeg

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Locate finds the ffmpeg binary. A bundled copy next to the executable
// (or in the app bundle's Resources/bin) wins over whatever is on PATH,
// so a packaged build never depends on a system install.
func Locate() (string, error) {
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		candidates := []string{
			filepath.Join(exeDir, "ffmpeg"),
			filepath.Join(exeDir, "bin", "ffmpeg"),
			filepath.Join(exeDir, "..", "Resources", "bin", "ffmpeg"),
		}
		for _, path := range candidates {
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}
	}

	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return "", fmt.Errorf("ffmpeg not found next to the executable or on PATH: %w", err)
	}
	return path, nil
}
