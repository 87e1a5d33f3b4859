package jsonstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SetGetDelete(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "tada", "session.json"))

	_, ok, err := s.Get("access_token")
	require.NoError(t, err)
	assert.False(t, ok, "empty store has no keys")

	require.NoError(t, s.SetMany(map[string]string{
		"access_token":  "a",
		"refresh_token": "r",
	}))
	require.NoError(t, s.SetMany(map[string]string{"user": `{"id":1}`}))

	v, ok, err := s.Get("access_token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	require.NoError(t, s.Delete("access_token", "refresh_token", "user"))
	for _, k := range []string{"access_token", "refresh_token", "user"} {
		_, ok, err := s.Get(k)
		require.NoError(t, err)
		assert.False(t, ok, k)
	}
}

func TestStore_PersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, Open(path).SetMany(map[string]string{"k": "v"}))

	v, ok, err := Open(path).Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
}

func TestStore_DeleteWithoutFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s := Open(path)

	require.NoError(t, s.Delete("user"))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "deleting from nothing does not create a file")
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	s := Open(path)

	_, _, err := s.Get("user")
	assert.Error(t, err)

	require.NoError(t, s.Delete("user"), "delete resets a corrupt file")
	_, ok, err := s.Get("user")
	require.NoError(t, err)
	assert.False(t, ok)
}
