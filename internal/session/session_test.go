package session

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AyushShukla12112005/trackctl/internal/models"
)

func TestStore_Roundtrip(t *testing.T) {
	s := NewStore(t.TempDir())

	_, err := s.Load()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.Empty(t, s.Token())

	sess := &Session{
		Token: "tok123",
		User:  models.User{ID: "u1", Name: "Ada", Email: "ada@example.com"},
	}
	require.NoError(t, s.Save(sess))
	assert.False(t, sess.SavedAt.IsZero())

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok123", got.Token)
	assert.Equal(t, "Ada", got.User.Name)
	assert.Equal(t, "tok123", s.Token())
}

func TestStore_FilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}

	dir := t.TempDir()
	s := NewStore(dir)
	require.NoError(t, s.Save(&Session{Token: "tok"}))

	info, err := os.Stat(filepath.Join(dir, "session.yaml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStore_Clear(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Clear(), "clearing an absent session is fine")

	require.NoError(t, s.Save(&Session{Token: "tok"}))
	require.NoError(t, s.Clear())

	_, err := s.Load()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}
