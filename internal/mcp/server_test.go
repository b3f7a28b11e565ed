package mcp

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewServer(t *testing.T) {
	tmpDir := t.TempDir()

	quillDir := filepath.Join(tmpDir, ".quill")
	if err := os.MkdirAll(quillDir, 0700); err != nil {
		t.Fatalf("Failed to create .quill dir: %v", err)
	}

	cfg := &Config{
		Name:    "test-server",
		Version: "v1.0.0",
		Root:    tmpDir,
	}

	server, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	defer server.Close()

	if server.server == nil {
		t.Error("Server.server is nil")
	}
	if server.store == nil {
		t.Error("Server.store is nil")
	}
	if server.root != tmpDir {
		t.Errorf("Server.root = %q, want %q", server.root, tmpDir)
	}
}

func TestNewServer_CreatesQuillDir(t *testing.T) {
	tmpDir := t.TempDir()

	server, err := NewServer(&Config{Name: "test-server", Version: "v1.0.0", Root: tmpDir})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	defer server.Close()

	quillDir := filepath.Join(tmpDir, ".quill")
	if _, err := os.Stat(quillDir); os.IsNotExist(err) {
		t.Error(".quill directory was not created")
	}
	// The directory gets a .gitignore so feedback data stays out of VCS.
	if _, err := os.Stat(filepath.Join(quillDir, ".gitignore")); os.IsNotExist(err) {
		t.Error(".quill/.gitignore was not created")
	}
}

func TestClose(t *testing.T) {
	tmpDir := t.TempDir()

	server, err := NewServer(&Config{Name: "test-server", Version: "v1.0.0", Root: tmpDir})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	if err := server.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	// Multiple closes should be safe.
	if err := server.Close(); err != nil {
		t.Errorf("Second Close() error = %v", err)
	}
}
