package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	return joinHome(home, path), nil
}

// ExpandHomeIn is ExpandHome against an explicit home directory.
func ExpandHomeIn(home, path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	return joinHome(home, path)
}

func joinHome(home, path string) string {
	if path == "~" {
		return home
	}
	// ~/models/x.gguf
	return filepath.Join(home, strings.TrimPrefix(path, "~/"))
}

// IsRegularFile reports whether path is a regular file (symlinks followed).
func IsRegularFile(path string) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fi.Mode().IsRegular()
}

// FileSize returns the size of path in bytes, or -1 if it cannot be stat'ed.
func FileSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return -1
	}
	return fi.Size()
}
