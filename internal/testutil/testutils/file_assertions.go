// Package testutils holds filesystem helpers shared by package tests.
package testutils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteTree creates a temporary directory holding files (slash-separated
// relative path to content) and returns its path.
func WriteTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatalf("create directory for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return root
}

// FileAssertions provides utilities for asserting file system state in tests.
type FileAssertions struct {
	t       *testing.T
	baseDir string
}

// NewFileAssertions creates a new file assertions helper rooted at baseDir.
func NewFileAssertions(t *testing.T, baseDir string) *FileAssertions {
	return &FileAssertions{t: t, baseDir: baseDir}
}

func (fa *FileAssertions) path(rel string) string {
	return filepath.Join(fa.baseDir, filepath.FromSlash(strings.TrimPrefix(rel, "/")))
}

// Read returns the content of rel, failing the test when it cannot be read.
func (fa *FileAssertions) Read(rel string) string {
	fa.t.Helper()
	data, err := os.ReadFile(fa.path(rel))
	if err != nil {
		fa.t.Fatalf("Failed to read %s: %v", rel, err)
	}
	return string(data)
}

// AssertFileExists validates that a file exists.
func (fa *FileAssertions) AssertFileExists(rel string) *FileAssertions {
	fa.t.Helper()
	if _, err := os.Stat(fa.path(rel)); err != nil {
		fa.t.Errorf("Expected file to exist: %s", rel)
	}
	return fa
}

// AssertFileNotExists validates that a file does not exist.
func (fa *FileAssertions) AssertFileNotExists(rel string) *FileAssertions {
	fa.t.Helper()
	if _, err := os.Stat(fa.path(rel)); err == nil {
		fa.t.Errorf("Expected file to not exist: %s", rel)
	}
	return fa
}

// AssertFileContains validates that a file contains expected content.
func (fa *FileAssertions) AssertFileContains(rel, expected string) *FileAssertions {
	fa.t.Helper()
	content := fa.Read(rel)
	if !strings.Contains(content, expected) {
		fa.t.Errorf("Expected file %s to contain %q\nActual content:\n%s", rel, expected, content)
	}
	return fa
}
