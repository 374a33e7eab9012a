package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openProfile(t *testing.T) *Profile {
	t.Helper()
	p, err := OpenProfile(filepath.Join(t.TempDir(), "profile.db"))
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p
}

func TestLocalImplementations(t *testing.T) {
	impls := map[string]func(t *testing.T) Local{
		"memory":  func(t *testing.T) Local { return NewMemory() },
		"profile": func(t *testing.T) Local { return openProfile(t) },
	}

	for name, open := range impls {
		t.Run(name, func(t *testing.T) {
			l := open(t)

			_, err := l.Get("missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, l.Set("k", "one"))
			v, err := l.Get("k")
			require.NoError(t, err)
			assert.Equal(t, "one", v)

			require.NoError(t, l.Set("k", "two"))
			v, err = l.Get("k")
			require.NoError(t, err)
			assert.Equal(t, "two", v)

			require.NoError(t, l.Set("empty", ""))
			v, err = l.Get("empty")
			require.NoError(t, err)
			assert.Equal(t, "", v)

			require.NoError(t, l.Remove("k"))
			_, err = l.Get("k")
			assert.ErrorIs(t, err, ErrNotFound)

			assert.NoError(t, l.Remove("never-set"))
		})
	}
}

func TestProfile_PersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.db")

	p1, err := OpenProfile(path)
	require.NoError(t, err)
	require.NoError(t, p1.Set(UserKey, `{"email":"a@x.com"}`))
	require.NoError(t, p1.Close())

	p2, err := OpenProfile(path)
	require.NoError(t, err)
	defer p2.Close()

	v, err := p2.Get(UserKey)
	require.NoError(t, err)
	assert.Equal(t, `{"email":"a@x.com"}`, v)
}

func TestMemory_Keys(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Set(CartPrefix+"a@x.com", "[]"))
	require.NoError(t, m.Set(CartPrefix+"b@x.com", "[]"))

	assert.ElementsMatch(t, []string{CartPrefix + "a@x.com", CartPrefix + "b@x.com"}, m.Keys())
}
