package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// DBFileName is the SQLite database file inside a .quill directory.
const DBFileName = "quill.db"

// GlobalQuillPath returns the path to the global .quill directory.
// On Unix: ~/.quill
// On Windows: %USERPROFILE%\.quill
func GlobalQuillPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".quill"), nil
}

// LocalQuillPath returns the path to the local .quill directory
// for the given project root.
func LocalQuillPath(projectRoot string) string {
	return filepath.Join(projectRoot, ".quill")
}

// DBPath returns the database path inside the .quill directory for root.
func DBPath(projectRoot string) string {
	return filepath.Join(LocalQuillPath(projectRoot), DBFileName)
}

// EnsureQuillDir creates the .quill directory for the given project root if
// it doesn't exist. Returns nil if the directory already exists or was
// successfully created.
func EnsureQuillDir(projectRoot string) error {
	if err := os.MkdirAll(LocalQuillPath(projectRoot), 0700); err != nil {
		return fmt.Errorf("failed to create .quill directory: %w", err)
	}
	return nil
}

// quillGitignore is the default .gitignore content for .quill directories.
const quillGitignore = `# SQLite database files (personal feedback data, never committed)
quill.db
quill.db-shm
quill.db-wal

# Exported training data
training-*.jsonl
`

// EnsureGitignore creates a .gitignore in the given .quill directory if one
// does not already exist. This prevents accidentally committing a user's
// feedback history to version control.
func EnsureGitignore(quillDir string) error {
	gitignorePath := filepath.Join(quillDir, ".gitignore")
	if _, err := os.Stat(gitignorePath); err == nil {
		return nil // already exists, respect user customizations
	}
	if err := os.WriteFile(gitignorePath, []byte(quillGitignore), 0600); err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}
	return nil
}
