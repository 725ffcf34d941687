package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const appDirName = "klirr"

type Config struct {
	// DataDir holds one yaml file per persisted key plus the FX rate cache
	DataDir string

	// InvoicesDir is where generated PDFs land unless --out is given
	InvoicesDir string
}

// DefaultDataDir returns the platform data directory for klirr,
// e.g. ~/.config/klirr on Linux. KLIRR_DATA_DIR overrides it.
func DefaultDataDir() string {
	if dir := os.Getenv("KLIRR_DATA_DIR"); dir != "" {
		return dir
	}
	base, err := os.UserConfigDir()
	if err != nil {
		// Fallback to current directory if config dir unavailable
		return filepath.Join(".", "."+appDirName)
	}
	return filepath.Join(base, appDirName)
}

// Load reads the optional .env file and resolves directories
func Load() (*Config, error) {
	// Missing .env is the normal case, not an error
	_ = godotenv.Load()

	dataDir := DefaultDataDir()
	return &Config{
		DataDir:     dataDir,
		InvoicesDir: filepath.Join(dataDir, "invoices"),
	}, nil
}

// EnsureDirectories creates the data and invoice output directories
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return err
	}
	return os.MkdirAll(c.InvoicesDir, 0o755)
}
