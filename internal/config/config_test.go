package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDataDirOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("KLIRR_DATA_DIR", dir)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataDir != dir {
		t.Errorf("data dir = %s, want %s", cfg.DataDir, dir)
	}
	if cfg.InvoicesDir != filepath.Join(dir, "invoices") {
		t.Errorf("invoices dir = %s", cfg.InvoicesDir)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(cfg.InvoicesDir); err != nil {
		t.Fatal(err)
	}
}
