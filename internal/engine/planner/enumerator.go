package planner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/compplan/internal/core/domain"
	"go.trai.ch/compplan/internal/core/ports"
	"go.trai.ch/zerr"
)

// EntrySetEnumerator flattens ordered entry sets into one entry map.
type EntrySetEnumerator struct {
	walker   ports.Walker
	manifest ports.ManifestWriter
	logger   ports.Logger
	ignores  []string
}

// NewEntrySetEnumerator creates an enumerator skipping paths that match ignores.
func NewEntrySetEnumerator(
	walker ports.Walker,
	manifest ports.ManifestWriter,
	logger ports.Logger,
	ignores []string,
) *EntrySetEnumerator {
	return &EntrySetEnumerator{
		walker:   walker,
		manifest: manifest,
		logger:   logger,
		ignores:  ignores,
	}
}

// Enumerate walks every set in order and returns the combined entry map.
// When manifestFilename is set, the entry names are written as a JSON array
// to outputRoot/manifestFilename.
func (e *EntrySetEnumerator) Enumerate(
	ctx context.Context,
	sets []domain.EntrySet,
	outputRoot, manifestFilename string,
) (*domain.EntryMap, error) {
	entries := domain.NewEntryMap()

	for _, set := range sets {
		if err := e.enumerateSet(ctx, set, entries); err != nil {
			return nil, err
		}
	}

	if manifestFilename != "" {
		if err := e.manifest.WriteJSON(filepath.Join(outputRoot, manifestFilename), entries.Names()); err != nil {
			return nil, err
		}
	}

	return entries, nil
}

func (e *EntrySetEnumerator) enumerateSet(ctx context.Context, set domain.EntrySet, entries *domain.EntryMap) error {
	info, err := os.Stat(set.SourceRoot)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		e.logger.Warn(fmt.Sprintf("entries.missing: source root %s does not exist, skipping", set.SourceRoot))
		return nil
	case err != nil:
		return zerr.With(zerr.Wrap(domain.ErrEntryWalkFailed, err.Error()), "root", set.SourceRoot)
	case !info.IsDir():
		return zerr.With(zerr.Wrap(domain.ErrNotADirectory, set.SourceRoot), "path", set.SourceRoot)
	}

	for path, err := range e.walker.WalkFiles(set.SourceRoot, e.ignores) {
		if err != nil {
			return zerr.With(zerr.Wrap(domain.ErrEntryWalkFailed, err.Error()), "root", set.SourceRoot)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		name, ok := entryName(set, path)
		if !ok {
			continue
		}
		if existing, added := entries.Add(name, path); !added {
			return zerr.With(
				zerr.With(
					zerr.Wrap(domain.ErrDuplicateEntryName, fmt.Sprintf("%q is produced by %s and %s", name, existing, path)),
					"entry", name,
				),
				"files", []string{existing, path},
			)
		}
	}

	return nil
}

// entryName derives the entry name of a file, or false when the set does not select it.
func entryName(set domain.EntrySet, path string) (string, bool) {
	ext := filepath.Ext(path)
	if !set.Accepts(strings.TrimPrefix(ext, ".")) {
		return "", false
	}

	rel := domain.RelSlash(set.SourceRoot, path)
	stem := strings.TrimSuffix(rel, ext)
	if stem == "" || strings.HasSuffix(stem, "/") {
		return "", false
	}

	if set.OutputSubdir != "" {
		return set.OutputSubdir + "/" + stem, true
	}
	return stem, true
}
