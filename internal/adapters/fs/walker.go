// Package fs provides file system adapters for walking source trees and fingerprinting plans.
package fs

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
	"go.trai.ch/compplan/internal/core/domain"
	"go.trai.ch/compplan/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Walker = (*Walker)(nil)

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields all regular files below root in lexical order.
// An ignore pattern is matched against both the base name and the
// slash-separated path relative to root; a matching directory is pruned.
// Symlinks to directories are yielded neither as files nor descended.
func (w *Walker) WalkFiles(root string, ignores []string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		matchers, err := compileIgnores(ignores)
		if err != nil {
			yield("", err)
			return
		}

		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path == root {
				return nil
			}

			if ignored(matchers, d.Name(), domain.RelSlash(root, path)) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				return nil
			}
			if d.Type()&fs.ModeSymlink != 0 && !linksToFile(path) {
				return nil
			}
			if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
				return nil
			}

			if !yield(path, nil) {
				return filepath.SkipAll
			}
			return nil
		})
		if walkErr != nil {
			yield("", zerr.With(zerr.Wrap(walkErr, "failed to walk directory"), "root", root))
		}
	}
}

func compileIgnores(patterns []string) ([]glob.Glob, error) {
	matchers := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidIgnorePattern, err.Error()), "pattern", pattern)
		}
		matchers = append(matchers, g)
	}
	return matchers, nil
}

func ignored(matchers []glob.Glob, name, rel string) bool {
	for _, m := range matchers {
		if m.Match(name) || m.Match(rel) {
			return true
		}
	}
	return false
}

// linksToFile reports whether the symlink at path resolves to a regular file.
func linksToFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
