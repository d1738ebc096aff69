// Package testutil provides fixture and golden-file helpers for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TestdataDir is resolved against the package under test.
const TestdataDir = "testdata"

// Fixture returns the path of a file under testdata/, failing the test if
// it does not exist.
func Fixture(t *testing.T, name string) string {
	t.Helper()

	path := filepath.Join(TestdataDir, filepath.FromSlash(name))
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Fixture not found: %s", path)
	}
	return path
}

// GoldenPath returns where the golden file for name lives.
func GoldenPath(name string) string {
	return filepath.Join(TestdataDir, "golden", filepath.FromSlash(name))
}

// CopyFixture copies a fixture into dir and returns the new path, for
// tests that modify their input.
func CopyFixture(t *testing.T, name, dir string) string {
	t.Helper()

	data, err := os.ReadFile(Fixture(t, name))
	if err != nil {
		t.Fatalf("Failed to read fixture: %v", err)
	}
	dst := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		t.Fatalf("Failed to copy fixture: %v", err)
	}
	return dst
}
