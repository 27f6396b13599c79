// Package config loads sortinghat settings and resolves the paths they name.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves a path taken from flags or the config file: a leading
// ~ becomes the home directory, $VAR and ${VAR} are substituted, and the
// result is cleaned. ~user forms are left as written. An empty path stays empty.
func ExpandPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}

	if rest, ok := homeRelative(path); ok {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, rest)
		}
	}

	return filepath.Clean(os.ExpandEnv(path))
}

// homeRelative reports whether path starts at the home directory and returns
// the remainder.
func homeRelative(path string) (string, bool) {
	switch {
	case path == "~":
		return "", true
	case strings.HasPrefix(path, "~/"), strings.HasPrefix(path, "~"+string(filepath.Separator)):
		return path[2:], true
	default:
		return "", false
	}
}
