package planner_test

import (
	"context"
	"errors"
	"iter"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/compplan/internal/adapters/fs"
	"go.trai.ch/compplan/internal/core/domain"
	"go.trai.ch/compplan/internal/core/ports/mocks"
	"go.trai.ch/compplan/internal/engine/planner"
	"go.uber.org/mock/gomock"
)

func TestEntrySetEnumerator_Enumerate(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := canonicalTempDir(t)

	entriesDir := mkdir(t, root, "_entries")
	app := touch(t, entriesDir, "App.jsx")
	nested := touch(t, entriesDir, "pages", "Home.es6")
	touch(t, entriesDir, "README.md")
	touch(t, entriesDir, "node_modules", "dep", "index.js")

	widgets := mkdir(t, root, "widgets")
	foo := touch(t, widgets, "Foo.jsx")
	bar := touch(t, widgets, "sub", "Bar.jsx")
	touch(t, widgets, "ignored.es6")

	manifest := mocks.NewMockManifestWriter(ctrl)
	manifest.EXPECT().
		WriteJSON(filepath.Join(root, "out", "entries.json"), []string{"App", "pages/Home", "widgets/Foo", "widgets/sub/Bar"}).
		Return(nil)

	enumerator := planner.NewEntrySetEnumerator(fs.NewWalker(), manifest, quietLogger(ctrl), domain.DefaultIgnorePatterns())

	entries, err := enumerator.Enumerate(context.Background(), []domain.EntrySet{
		domain.NewEntrySet(entriesDir, []string{"jsx", ".es6", "js"}, ""),
		domain.NewEntrySet(widgets, []string{"jsx"}, "/widgets/"),
	}, filepath.Join(root, "out"), "entries.json")
	require.NoError(t, err)

	assert.Equal(t, []string{"App", "pages/Home", "widgets/Foo", "widgets/sub/Bar"}, entries.Names())

	got, ok := entries.Get("App")
	require.True(t, ok)
	assert.Equal(t, app, got)
	got, _ = entries.Get("pages/Home")
	assert.Equal(t, nested, got)
	got, _ = entries.Get("widgets/Foo")
	assert.Equal(t, foo, got)
	got, _ = entries.Get("widgets/sub/Bar")
	assert.Equal(t, bar, got)
}

func TestEntrySetEnumerator_Enumerate_NoManifest(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := canonicalTempDir(t)
	touch(t, root, "A.jsx")

	// No WriteJSON expectation: an empty filename must not write anything.
	enumerator := planner.NewEntrySetEnumerator(fs.NewWalker(), mocks.NewMockManifestWriter(ctrl), quietLogger(ctrl), nil)

	entries, err := enumerator.Enumerate(context.Background(), []domain.EntrySet{
		domain.NewEntrySet(root, []string{"jsx"}, ""),
	}, root, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, entries.Names())
}

func TestEntrySetEnumerator_Enumerate_DuplicateAcrossSets(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := canonicalTempDir(t)

	first := touch(t, root, "one", "Shared.jsx")
	second := touch(t, root, "two", "Shared.jsx")

	enumerator := planner.NewEntrySetEnumerator(fs.NewWalker(), mocks.NewMockManifestWriter(ctrl), quietLogger(ctrl), nil)

	entries, err := enumerator.Enumerate(context.Background(), []domain.EntrySet{
		domain.NewEntrySet(filepath.Join(root, "one"), []string{"jsx"}, ""),
		domain.NewEntrySet(filepath.Join(root, "two"), []string{"jsx"}, ""),
	}, root, "entries.json")

	require.Error(t, err)
	assert.Nil(t, entries)
	require.ErrorIs(t, err, domain.ErrDuplicateEntryName)
	assert.ErrorContains(t, err, `"Shared"`)
	assert.ErrorContains(t, err, first)
	assert.ErrorContains(t, err, second)
}

func TestEntrySetEnumerator_Enumerate_DuplicateWithinSet(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := canonicalTempDir(t)

	touch(t, root, "Foo.es6")
	touch(t, root, "Foo.jsx")

	enumerator := planner.NewEntrySetEnumerator(fs.NewWalker(), mocks.NewMockManifestWriter(ctrl), quietLogger(ctrl), nil)

	_, err := enumerator.Enumerate(context.Background(), []domain.EntrySet{
		domain.NewEntrySet(root, []string{"jsx", "es6"}, ""),
	}, root, "")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateEntryName)
}

func TestEntrySetEnumerator_Enumerate_MissingRootIsSkipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := canonicalTempDir(t)
	touch(t, root, "present", "A.jsx")

	var warnings []string
	enumerator := planner.NewEntrySetEnumerator(fs.NewWalker(), mocks.NewMockManifestWriter(ctrl), recordingLogger(ctrl, &warnings), nil)

	entries, err := enumerator.Enumerate(context.Background(), []domain.EntrySet{
		domain.NewEntrySet(filepath.Join(root, "absent"), []string{"jsx"}, ""),
		domain.NewEntrySet(filepath.Join(root, "present"), []string{"jsx"}, ""),
	}, root, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"A"}, entries.Names())
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "entries.missing")
}

func TestEntrySetEnumerator_Enumerate_ManifestFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := canonicalTempDir(t)
	touch(t, root, "A.jsx")

	writeErr := errors.New("disk full")
	manifest := mocks.NewMockManifestWriter(ctrl)
	manifest.EXPECT().WriteJSON(gomock.Any(), gomock.Any()).Return(writeErr)

	enumerator := planner.NewEntrySetEnumerator(fs.NewWalker(), manifest, quietLogger(ctrl), nil)

	_, err := enumerator.Enumerate(context.Background(), []domain.EntrySet{
		domain.NewEntrySet(root, []string{"jsx"}, ""),
	}, root, "entries.json")
	require.ErrorIs(t, err, writeErr)
}

func TestEntrySetEnumerator_Enumerate_WalkError(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := canonicalTempDir(t)

	walker := mocks.NewMockWalker(ctrl)
	walker.EXPECT().WalkFiles(root, gomock.Any()).Return(iter.Seq2[string, error](func(yield func(string, error) bool) {
		yield("", errors.New("permission denied"))
	}))

	enumerator := planner.NewEntrySetEnumerator(walker, mocks.NewMockManifestWriter(ctrl), quietLogger(ctrl), nil)

	_, err := enumerator.Enumerate(context.Background(), []domain.EntrySet{
		domain.NewEntrySet(root, []string{"jsx"}, ""),
	}, root, "")
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrEntryWalkFailed)
	assert.ErrorContains(t, err, "permission denied")
}

func TestEntrySetEnumerator_Enumerate_Cancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := canonicalTempDir(t)
	touch(t, root, "A.jsx")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	enumerator := planner.NewEntrySetEnumerator(fs.NewWalker(), mocks.NewMockManifestWriter(ctrl), quietLogger(ctrl), nil)

	_, err := enumerator.Enumerate(ctx, []domain.EntrySet{
		domain.NewEntrySet(root, []string{"jsx"}, ""),
	}, root, "")
	require.ErrorIs(t, err, context.Canceled)
}
