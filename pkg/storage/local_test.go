package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(LocalConfig{BasePath: filepath.Join(t.TempDir(), "data")})
	require.NoError(t, err)
	return s
}

func TestLocalStorage_WriteReadReplace(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	require.NoError(t, s.Write(ctx, "count.json", strings.NewReader("1\n")))
	require.NoError(t, s.Write(ctx, "count.json", strings.NewReader("2\n")))

	rc, err := s.Read(ctx, "count.json")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "2\n", string(data))

	entries, err := os.ReadDir(s.BasePath())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestLocalStorage_MissingKey(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	_, err := s.Read(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Stat(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := s.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, s.Delete(ctx, "missing"))
}

func TestLocalStorage_PathStaysInsideBase(t *testing.T) {
	s := newTestStorage(t)

	for _, key := range []string{"../escape", "../../etc/passwd", "/abs/file"} {
		p := s.Path(key)
		assert.True(t, strings.HasPrefix(p, s.BasePath()+string(os.PathSeparator)), "key %q mapped to %q", key, p)
	}
}

func TestLocalStorage_Stat(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	require.NoError(t, s.Write(ctx, "settings.yaml", strings.NewReader("factory: ulid\n")))

	info, err := s.Stat(ctx, "settings.yaml")
	require.NoError(t, err)
	assert.Equal(t, int64(len("factory: ulid\n")), info.Size)
}
