package domain

import (
	"path/filepath"
	"strings"
)

// DirectorySpec is a user-declared directory after validation and symlink resolution.
type DirectorySpec struct {
	// OriginalText is the token as the user wrote it.
	OriginalText string
	// ResolvedPath is the absolute, fully symlink-resolved directory.
	ResolvedPath string
	// ManagedTreeReentrant is set when a symlink hop landed back inside the managed root.
	ManagedTreeReentrant bool
}

// IsWithin reports whether path equals root or lies below it.
// Both arguments are expected to be clean absolute paths.
func IsWithin(root, path string) bool {
	if path == root {
		return true
	}
	if root == string(filepath.Separator) {
		return strings.HasPrefix(path, root)
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}

// IsStrictlyWithin reports whether path lies below root but is not root itself.
func IsStrictlyWithin(root, path string) bool {
	return path != root && IsWithin(root, path)
}

// RelSlash returns path relative to root using forward slashes.
// The caller must make sure path is within root.
func RelSlash(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
