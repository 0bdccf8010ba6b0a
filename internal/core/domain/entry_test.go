package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/compplan/internal/core/domain"
)

func TestEntrySet_Accepts(t *testing.T) {
	t.Parallel()

	set := domain.NewEntrySet("/src", []string{".jsx", " es6 "}, "")
	assert.True(t, set.Accepts("jsx"))
	assert.True(t, set.Accepts("es6"))
	assert.False(t, set.Accepts("js"))
}

func TestEntryMap_AddKeepsOrder(t *testing.T) {
	t.Parallel()

	m := domain.NewEntryMap()
	_, ok := m.Add("b", "/src/b.jsx")
	require.True(t, ok)
	_, ok = m.Add("a", "/src/a.jsx")
	require.True(t, ok)

	existing, ok := m.Add("b", "/other/b.jsx")
	assert.False(t, ok)
	assert.Equal(t, "/src/b.jsx", existing)

	assert.Equal(t, []string{"b", "a"}, m.Names())
	assert.Equal(t, 2, m.Len())

	path, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "/src/a.jsx", path)

	var visited []string
	for name := range m.All() {
		visited = append(visited, name)
	}
	assert.Equal(t, []string{"b", "a"}, visited)
}

func TestEntryMap_JSON(t *testing.T) {
	t.Parallel()

	m := domain.NewEntryMap()
	m.Add("widgets/Foo", "/src/widgets/Foo.jsx")
	m.Add("App", "/src/App.jsx")

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"widgets/Foo":"/src/widgets/Foo.jsx","App":"/src/App.jsx"}`, string(data))
	assert.Equal(t, `{"widgets/Foo":"/src/widgets/Foo.jsx","App":"/src/App.jsx"}`, string(data))

	decoded := domain.NewEntryMap()
	require.NoError(t, json.Unmarshal([]byte(`{"z":"/z.js","a":"/a.js"}`), decoded))
	assert.Equal(t, []string{"z", "a"}, decoded.Names())

	require.Error(t, json.Unmarshal([]byte(`["z"]`), decoded))
}
