package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/springroll-app/quill/internal/store"
)

func TestDefault(t *testing.T) {
	cfg := Default("/tmp/project")
	if cfg.MinPatternCount != 5 {
		t.Errorf("MinPatternCount = %d, want 5", cfg.MinPatternCount)
	}
	if cfg.MinStyleSamples != 10 {
		t.Errorf("MinStyleSamples = %d, want 10", cfg.MinStyleSamples)
	}
	if cfg.ExampleCount != 2 {
		t.Errorf("ExampleCount = %d, want 2", cfg.ExampleCount)
	}
	if cfg.DBPath != filepath.Join("/tmp/project", ".quill", store.DBFileName) {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	root := t.TempDir()
	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg != Default(root) {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestLoad_FileOverrides(t *testing.T) {
	root := t.TempDir()
	quillDir := filepath.Join(root, ".quill")
	if err := os.MkdirAll(quillDir, 0700); err != nil {
		t.Fatal(err)
	}
	content := "min_pattern_count: 3\nexample_count: 5\n"
	if err := os.WriteFile(filepath.Join(quillDir, FileName), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MinPatternCount != 3 {
		t.Errorf("MinPatternCount = %d, want 3", cfg.MinPatternCount)
	}
	if cfg.ExampleCount != 5 {
		t.Errorf("ExampleCount = %d, want 5", cfg.ExampleCount)
	}
	// Unset keys keep their defaults.
	if cfg.MinStyleSamples != 10 {
		t.Errorf("MinStyleSamples = %d, want 10", cfg.MinStyleSamples)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	root := t.TempDir()
	t.Setenv("QUILL_MIN_STYLE_SAMPLES", "20")
	t.Setenv("QUILL_DB_PATH", "/elsewhere/quill.db")

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MinStyleSamples != 20 {
		t.Errorf("MinStyleSamples = %d, want 20", cfg.MinStyleSamples)
	}
	if cfg.DBPath != "/elsewhere/quill.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
}

func TestLoad_InvalidEnvIgnored(t *testing.T) {
	root := t.TempDir()
	t.Setenv("QUILL_MIN_PATTERN_COUNT", "not-a-number")

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MinPatternCount != 5 {
		t.Errorf("MinPatternCount = %d, want default 5", cfg.MinPatternCount)
	}
}
