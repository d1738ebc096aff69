// Package paths locates mavosort's per-project state directory and
// canonicalizes input file paths used as collection names.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// StateDirName is the per-project directory holding config and state.
	StateDirName = ".mavosort"
	// StateDBName is the signature store inside StateDirName.
	StateDBName = "state.db"
	// HomeEnvVar overrides the state directory location.
	HomeEnvVar = "MAVOSORT_HOME"
)

// StateDir returns the state directory for root, honouring MAVOSORT_HOME.
func StateDir(root string) string {
	if home := os.Getenv(HomeEnvVar); home != "" {
		return home
	}
	return filepath.Join(root, StateDirName)
}

// EnsureStateDir creates the state directory if needed and returns it.
func EnsureStateDir(root string) (string, error) {
	dir := StateDir(root)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create state directory: %w", err)
	}
	return dir, nil
}

// StateDBPath returns the default signature store path for root.
func StateDBPath(root string) string {
	return filepath.Join(StateDir(root), StateDBName)
}

// CanonicalizePath converts a path to a root-relative path with forward
// slashes. Symlinks are resolved when the target exists. Paths outside
// root keep their absolute form.
func CanonicalizePath(path string, root string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	} else if !os.IsNotExist(err) {
		return "", err
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(rootAbs); err == nil {
		rootAbs = resolved
	}

	rel, err := filepath.Rel(rootAbs, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(abs), nil
	}
	return filepath.ToSlash(rel), nil
}

// NormalizePath converts backslashes to forward slashes.
func NormalizePath(path string) string {
	return strings.ReplaceAll(path, "\\", "/")
}
