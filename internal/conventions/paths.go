package conventions

import "path/filepath"

const (
	// DefaultDataDir is the default jobwatch data directory name (relative to home).
	DefaultDataDir = ".jobwatch"
	// ConfigFile is the client configuration filename.
	ConfigFile = "config.yaml"
	// JournalFile is the SQLite submissions journal filename.
	JournalFile = "jobwatch.db"
	// EnvFile is the dotenv file loaded from the working directory.
	EnvFile = ".env"
)

// ConfigPath returns the client configuration path inside a data directory.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, ConfigFile)
}

// JournalPath returns the journal database path inside a data directory.
func JournalPath(dataDir string) string {
	return filepath.Join(dataDir, JournalFile)
}
