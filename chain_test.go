// FILE: lixenwraith/chainconf/chain_test.go
package chainconf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMap() *Map {
	return newMap(map[string]Chain{
		"name":        {Text("app"), Text("fallback")},
		"shadowed":    {{}, Text("lower")},
		"absent":      {{}},
		"port":        {Text("0x1F90")},
		"ratio":       {Text("0.75")},
		"count":       {Text("3.9")},
		"enabled":     {Text("true")},
		"bad":         {Text("not-a-number")},
		"server.host": {Text("example.com")},
	})
}

func TestChain(t *testing.T) {
	c := Chain{{}, Text("a"), {}, Text("b")}

	head, ok := c.Head()
	assert.True(t, ok)
	assert.Equal(t, "a", head)
	assert.Equal(t, []string{"a", "b"}, c.Texts())

	_, ok = Chain{{}}.Head()
	assert.False(t, ok)
	_, ok = Chain(nil).Head()
	assert.False(t, ok)
}

func TestMapAccess(t *testing.T) {
	m := testMap()

	t.Run("Keys", func(t *testing.T) {
		assert.Equal(t, 9, m.Len())
		keys := m.Keys()
		assert.IsIncreasing(t, keys)
		assert.Contains(t, keys, "server.host")
	})

	t.Run("Lookup", func(t *testing.T) {
		v, ok := m.Lookup("name")
		assert.True(t, ok)
		assert.Equal(t, "app", v)

		v, ok = m.Lookup("shadowed")
		assert.True(t, ok)
		assert.Equal(t, "lower", v)

		_, ok = m.Lookup("absent")
		assert.False(t, ok)
		assert.True(t, m.Has("absent"))
		assert.False(t, m.Has("missing"))
	})

	t.Run("ChainIsCopy", func(t *testing.T) {
		c, ok := m.Chain("name")
		require.True(t, ok)
		c[0].Text = "changed"

		v, _ := m.Lookup("name")
		assert.Equal(t, "app", v)

		_, ok = m.Chain("missing")
		assert.False(t, ok)
	})

	t.Run("Range", func(t *testing.T) {
		var seen []string
		m.Range(func(key string, _ Chain) bool {
			seen = append(seen, key)
			return len(seen) < 3
		})
		assert.Equal(t, m.Keys()[:3], seen)
	})

	t.Run("EmptyMap", func(t *testing.T) {
		empty := newMap(nil)
		assert.Zero(t, empty.Len())
		assert.Empty(t, empty.Keys())
		_, ok := empty.Lookup("anything")
		assert.False(t, ok)
	})
}

func TestTypedAccessors(t *testing.T) {
	m := testMap()

	s, err := m.String("name")
	require.NoError(t, err)
	assert.Equal(t, "app", s)

	i, err := m.Int64("port")
	require.NoError(t, err)
	assert.Equal(t, int64(8080), i)

	i, err = m.Int64("count")
	require.NoError(t, err)
	assert.Equal(t, int64(3), i)

	f, err := m.Float64("ratio")
	require.NoError(t, err)
	assert.Equal(t, 0.75, f)

	b, err := m.Bool("enabled")
	require.NoError(t, err)
	assert.True(t, b)

	t.Run("Errors", func(t *testing.T) {
		_, err := m.String("absent")
		assert.ErrorIs(t, err, ErrKeyNotFound)

		_, err = m.Int64("missing")
		assert.ErrorIs(t, err, ErrKeyNotFound)

		_, err = m.Int64("bad")
		assert.ErrorContains(t, err, "cannot convert")

		_, err = m.Bool("bad")
		assert.Error(t, err)

		_, err = m.Float64("bad")
		assert.Error(t, err)
	})
}
