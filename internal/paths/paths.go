package paths

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.rafiq.
func BaseDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".rafiq")
}

// PrefsDBPath returns the local preference store database path.
func PrefsDBPath() string {
	return filepath.Join(BaseDir(), "rafiq.db")
}

// LogDir returns the log directory.
func LogDir() string {
	return filepath.Join(BaseDir(), "logs")
}

// LogPath returns the daemon log file path.
func LogPath() string {
	return filepath.Join(LogDir(), "rafiqd.log")
}

// ConfigPath returns the config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnsureDirs creates the directory tree with proper permissions.
func EnsureDirs() error {
	for _, d := range []string{BaseDir(), LogDir()} {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
