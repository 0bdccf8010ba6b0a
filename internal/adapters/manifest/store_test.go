package manifest_test

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/compplan/internal/adapters/manifest"
	"go.trai.ch/compplan/internal/core/domain"
)

func TestStore_WriteJSON(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	store := manifest.NewStore()

	t.Run("writes entry names", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(tmpDir, "assets", "entries.json")
		require.NoError(t, store.WriteJSON(path, []string{"widgets/Foo", "widgets/sub/Bar"}))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "[\n  \"widgets/Foo\",\n  \"widgets/sub/Bar\"\n]\n", string(data))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(domain.FilePerm), info.Mode().Perm())
	})

	t.Run("replaces existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(tmpDir, "replace", "plan.json")
		require.NoError(t, store.WriteJSON(path, map[string]int{"a": 1}))
		require.NoError(t, store.WriteJSON(path, map[string]int{"b": 2}))

		data, err := os.ReadFile(path)
		require.NoError(t, err)

		var got map[string]int
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, map[string]int{"b": 2}, got)

		leftovers, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		assert.Len(t, leftovers, 1)
	})

	t.Run("marshal failure", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(tmpDir, "bad", "plan.json")
		err := store.WriteJSON(path, math.Inf(1))
		require.Error(t, err)
		assert.ErrorContains(t, err, domain.ErrManifestMarshalFailed.Error())

		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("parent is a file", func(t *testing.T) {
		t.Parallel()

		blocker := filepath.Join(tmpDir, "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), domain.PrivateFilePerm))

		err := store.WriteJSON(filepath.Join(blocker, "entries.json"), []string{})
		require.Error(t, err)
		assert.ErrorContains(t, err, domain.ErrManifestWriteFailed.Error())
	})
}
