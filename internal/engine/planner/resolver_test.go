package planner_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/compplan/internal/core/domain"
	"go.trai.ch/compplan/internal/core/ports/mocks"
	"go.trai.ch/compplan/internal/engine/planner"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func TestDirectoryResolver_Normalize_DeduplicatesTokensAndAliases(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := canonicalTempDir(t)
	shared := mkdir(t, root, "shared")
	symlink(t, shared, filepath.Join(root, "alias"))

	resolver := planner.NewDirectoryResolver(root, false, quietLogger(ctrl))

	specs, err := resolver.Normalize(` shared, "shared",'shared' ,, alias, `+shared, "chunkDirs")
	require.NoError(t, err)

	require.Len(t, specs, 1)
	assert.Equal(t, domain.DirectorySpec{
		OriginalText: "shared",
		ResolvedPath: shared,
	}, specs[0])
}

func TestDirectoryResolver_Normalize_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := planner.NewDirectoryResolver(canonicalTempDir(t), false, mocks.NewMockLogger(ctrl))

	specs, err := resolver.Normalize(" , ,", "chunkDirs")
	require.NoError(t, err)
	assert.Empty(t, specs)
}

func TestDirectoryResolver_Normalize_MissingIsSkipped(t *testing.T) {
	tests := []struct {
		name        string
		verbose     bool
		wantDetails bool
	}{
		{name: "quiet", verbose: false, wantDetails: false},
		{name: "verbose", verbose: true, wantDetails: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			root := canonicalTempDir(t)
			kept := mkdir(t, root, "kept")

			var warnings []string
			resolver := planner.NewDirectoryResolver(root, tt.verbose, recordingLogger(ctrl, &warnings))

			specs, err := resolver.Normalize("gone,kept", "entryDirs")
			require.NoError(t, err)

			require.Len(t, specs, 1)
			assert.Equal(t, kept, specs[0].ResolvedPath)

			require.Len(t, warnings, 1)
			assert.Contains(t, warnings[0], "dir.missing")
			assert.Contains(t, warnings[0], "entryDirs")
			assert.Contains(t, warnings[0], `"gone"`)
			if tt.wantDetails {
				assert.Contains(t, warnings[0], "no such file or directory")
			} else {
				assert.NotContains(t, warnings[0], "no such file or directory")
			}
		})
	}
}

func TestDirectoryResolver_Normalize_PathThroughFileIsSkipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := canonicalTempDir(t)
	touch(t, root, "file.js")
	kept := mkdir(t, root, "kept")

	var warnings []string
	resolver := planner.NewDirectoryResolver(root, true, recordingLogger(ctrl, &warnings))

	specs, err := resolver.Normalize("file.js/sub, kept", "chunkDirs")
	require.NoError(t, err)

	require.Len(t, specs, 1)
	assert.Equal(t, kept, specs[0].ResolvedPath)

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "dir.missing")
	assert.Contains(t, warnings[0], `"file.js/sub"`)
	assert.Contains(t, warnings[0], "not a directory")
}

func TestDirectoryResolver_Normalize_FollowsChainOutsideRoot(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := canonicalTempDir(t)
	elsewhere := canonicalTempDir(t)

	target := mkdir(t, elsewhere, "real", "lib")
	symlink(t, "real/lib", filepath.Join(elsewhere, "hop2"))
	symlink(t, filepath.Join(elsewhere, "hop2"), filepath.Join(elsewhere, "hop1"))
	symlink(t, filepath.Join(elsewhere, "hop1"), filepath.Join(root, "lib"))

	resolver := planner.NewDirectoryResolver(root, false, quietLogger(ctrl))

	specs, err := resolver.Normalize("lib", "chunkDirs")
	require.NoError(t, err)

	require.Len(t, specs, 1)
	assert.Equal(t, target, specs[0].ResolvedPath)
	assert.Equal(t, "lib", specs[0].OriginalText)
	assert.False(t, specs[0].ManagedTreeReentrant)
}

func TestDirectoryResolver_Normalize_BrokenChainIsFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := canonicalTempDir(t)
	elsewhere := canonicalTempDir(t)

	missing := filepath.Join(elsewhere, "vanished")
	symlink(t, missing, filepath.Join(elsewhere, "hop"))
	symlink(t, filepath.Join(elsewhere, "hop"), filepath.Join(root, "lib"))

	resolver := planner.NewDirectoryResolver(root, false, quietLogger(ctrl))

	specs, err := resolver.Normalize("lib", "chunkDirs")
	require.Error(t, err)
	assert.Nil(t, specs)
	require.ErrorIs(t, err, domain.ErrBrokenSymlink)
	assert.ErrorContains(t, err, filepath.Join(root, "lib")+" -> "+filepath.Join(elsewhere, "hop")+" -> "+missing)

	var zErr *zerr.Error
	require.True(t, errors.As(err, &zErr))
	assert.Equal(t, []string{filepath.Join(root, "lib"), filepath.Join(elsewhere, "hop"), missing}, zErr.Metadata()["chain"])
}

func TestDirectoryResolver_Normalize_CycleIsFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := canonicalTempDir(t)

	symlink(t, filepath.Join(root, "b"), filepath.Join(root, "a"))
	symlink(t, filepath.Join(root, "a"), filepath.Join(root, "b"))

	resolver := planner.NewDirectoryResolver(root, false, quietLogger(ctrl))

	_, err := resolver.Normalize("a", "chunkDirs")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSymlinkCycle)
}

func TestDirectoryResolver_Normalize_NotADirectoryIsFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := canonicalTempDir(t)
	file := touch(t, root, "Widget.jsx")

	resolver := planner.NewDirectoryResolver(root, false, quietLogger(ctrl))

	_, err := resolver.Normalize("Widget.jsx", "entryDirs")
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrNotADirectory)
	assert.ErrorContains(t, err, file)
}

func TestDirectoryResolver_Normalize_FlagsReentrantSymlinks(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := canonicalTempDir(t)
	elsewhere := canonicalTempDir(t)

	inside := mkdir(t, root, "components", "shared")
	plain := mkdir(t, root, "plain")
	symlink(t, inside, filepath.Join(elsewhere, "back"))

	resolver := planner.NewDirectoryResolver(root, false, quietLogger(ctrl))

	specs, err := resolver.Normalize("plain,"+filepath.Join(elsewhere, "back"), "chunkDirs")
	require.NoError(t, err)

	require.Len(t, specs, 2)
	assert.Equal(t, plain, specs[0].ResolvedPath)
	assert.False(t, specs[0].ManagedTreeReentrant)
	assert.Equal(t, inside, specs[1].ResolvedPath)
	assert.True(t, specs[1].ManagedTreeReentrant)
}

func TestDirectoryResolver_Normalize_AbsoluteTokensStayAbsolute(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := canonicalTempDir(t)
	outside := mkdir(t, canonicalTempDir(t), "lib")

	resolver := planner.NewDirectoryResolver(root, false, quietLogger(ctrl))

	specs, err := resolver.Normalize(outside, "chunkDirs")
	require.NoError(t, err)

	require.Len(t, specs, 1)
	assert.Equal(t, outside, specs[0].ResolvedPath)
	assert.False(t, specs[0].ManagedTreeReentrant)
}
