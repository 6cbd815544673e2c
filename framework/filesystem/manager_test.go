package filesystem_test

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-container/framework/filesystem"
)

func TestManager_RoundTrip(t *testing.T) {
	m := filesystem.NewManager(t.TempDir(), nil)

	assert.False(t, m.Exists("cache/data.json"))
	require.NoError(t, m.PutContents("cache/data.json", []byte(`{"a":1}`)))
	assert.True(t, m.Exists("cache/data.json"))

	got, err := m.GetContents("cache/data.json")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))

	viaFS, err := fs.ReadFile(m.FS(), "cache/data.json")
	require.NoError(t, err)
	assert.Equal(t, got, viaFS)

	require.NoError(t, m.Remove("cache/data.json"))
	assert.False(t, m.Exists("cache/data.json"))
	require.NoError(t, m.Remove("cache/data.json"), "removing twice is fine")
}

func TestManager_Overwrite(t *testing.T) {
	m := filesystem.NewManager(t.TempDir(), nil)

	require.NoError(t, m.PutContents("f.txt", []byte("one")))
	require.NoError(t, m.PutContents("f.txt", []byte("two")))

	got, err := m.GetContents("f.txt")
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))
}

func TestManager_MissingFile(t *testing.T) {
	m := filesystem.NewManager(t.TempDir(), nil)

	_, err := m.GetContents("nope.txt")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestManager_RejectsEscapes(t *testing.T) {
	m := filesystem.NewManager(t.TempDir(), nil)

	for _, path := range []string{"../secret", "a/../../secret", "/etc/passwd", ""} {
		t.Run(path, func(t *testing.T) {
			_, err := m.GetContents(path)
			assert.ErrorIs(t, err, filesystem.ErrOutsideRoot)
			assert.ErrorIs(t, m.PutContents(path, nil), filesystem.ErrOutsideRoot)
			assert.False(t, m.Exists(path))
		})
	}
}
