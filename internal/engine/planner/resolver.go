package planner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"go.trai.ch/compplan/internal/core/domain"
	"go.trai.ch/compplan/internal/core/ports"
	"go.trai.ch/zerr"
)

// maxSymlinkHops bounds the length of a followed symlink chain.
const maxSymlinkHops = 255

// DirectoryResolver normalizes raw directory declarations relative to a managed root.
type DirectoryResolver struct {
	managedRoot string
	verbose     bool
	logger      ports.Logger
}

// NewDirectoryResolver creates a resolver bound to an absolute, canonical managed root.
func NewDirectoryResolver(managedRoot string, verbose bool, logger ports.Logger) *DirectoryResolver {
	return &DirectoryResolver{
		managedRoot: filepath.Clean(managedRoot),
		verbose:     verbose,
		logger:      logger,
	}
}

// Normalize turns a comma-separated declaration into validated directories.
// The label names the declaration in diagnostics (e.g. "chunkDirs").
// Missing directories are skipped with a warning; broken or cyclic symlink
// chains and non-directories abort the whole call.
func (r *DirectoryResolver) Normalize(raw, label string) ([]domain.DirectorySpec, error) {
	tokens := dedupe(domain.SplitList(raw))

	specs := make([]domain.DirectorySpec, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))

	for _, token := range tokens {
		spec, ok, err := r.resolve(token, label)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if _, dup := seen[spec.ResolvedPath]; dup {
			continue
		}
		seen[spec.ResolvedPath] = struct{}{}
		specs = append(specs, spec)
	}

	return specs, nil
}

func (r *DirectoryResolver) resolve(token, label string) (domain.DirectorySpec, bool, error) {
	path := token
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.managedRoot, path)
	}
	path = filepath.Clean(path)

	if _, err := os.Lstat(path); err != nil {
		if absent(err) {
			r.warnMissing(label, token, err)
			return domain.DirectorySpec{}, false, nil
		}
		return domain.DirectorySpec{}, false, zerr.With(
			zerr.Wrap(domain.ErrDirectoryStatFailed, err.Error()), "path", path,
		)
	}

	hops, err := followChain(path)
	if err != nil {
		return domain.DirectorySpec{}, false, err
	}

	final := hops[len(hops)-1]
	canonical, err := filepath.EvalSymlinks(final)
	if err != nil {
		return domain.DirectorySpec{}, false, zerr.With(
			zerr.Wrap(domain.ErrBrokenSymlink, formatChain(hops)+": "+err.Error()), "chain", hops,
		)
	}

	info, err := os.Stat(canonical)
	if err != nil {
		return domain.DirectorySpec{}, false, zerr.With(
			zerr.Wrap(domain.ErrDirectoryStatFailed, err.Error()), "path", canonical,
		)
	}
	if !info.IsDir() {
		return domain.DirectorySpec{}, false, zerr.With(
			zerr.Wrap(domain.ErrNotADirectory, canonical), "path", canonical,
		)
	}

	// A path without any symlink resolves to itself and cannot re-enter the tree.
	reentrant := false
	if canonical != path {
		reentrant = domain.IsWithin(r.managedRoot, canonical)
		for _, hop := range hops[1:] {
			reentrant = reentrant || domain.IsWithin(r.managedRoot, hop)
		}
	}

	return domain.DirectorySpec{
		OriginalText:         token,
		ResolvedPath:         canonical,
		ManagedTreeReentrant: reentrant,
	}, true, nil
}

func (r *DirectoryResolver) warnMissing(label, token string, cause error) {
	if r.logger == nil {
		return
	}
	msg := fmt.Sprintf("dir.missing: %s entry %q does not exist, skipping", label, token)
	if r.verbose {
		msg += ": " + cause.Error()
	}
	r.logger.Warn(msg)
}

// followChain resolves path hop by hop while it is a symlink.
// It returns every visited path, the start included.
func followChain(path string) ([]string, error) {
	chain := []string{path}
	visited := map[string]struct{}{path: {}}
	current := path

	for {
		info, err := os.Lstat(current)
		if err != nil {
			if absent(err) {
				return nil, zerr.With(
					zerr.Wrap(domain.ErrBrokenSymlink, formatChain(chain)), "chain", chain,
				)
			}
			return nil, zerr.With(
				zerr.Wrap(domain.ErrDirectoryStatFailed, err.Error()), "path", current,
			)
		}
		if info.Mode()&os.ModeSymlink == 0 {
			return chain, nil
		}
		if len(chain) > maxSymlinkHops {
			return nil, zerr.With(
				zerr.Wrap(domain.ErrSymlinkCycle, fmt.Sprintf("more than %d hops from %s", maxSymlinkHops, path)),
				"chain", chain,
			)
		}

		target, err := os.Readlink(current)
		if err != nil {
			return nil, zerr.With(
				zerr.Wrap(domain.ErrDirectoryStatFailed, err.Error()), "path", current,
			)
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(current), target)
		}
		target = filepath.Clean(target)

		chain = append(chain, target)
		if _, ok := visited[target]; ok {
			return nil, zerr.With(
				zerr.Wrap(domain.ErrSymlinkCycle, formatChain(chain)), "chain", chain,
			)
		}
		visited[target] = struct{}{}
		current = target
	}
}

// absent reports whether err means nothing exists at the path. A regular file
// in place of a parent directory counts as absent.
func absent(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

func formatChain(chain []string) string {
	return strings.Join(chain, " -> ")
}

func dedupe(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := tokens[:0]
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
