package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocal(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(Config{BasePath: t.TempDir(), BaseURL: "http://cdn.test/files"})
	require.NoError(t, err)
	return s
}

func TestLocalStorage_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestLocal(t)

	require.NoError(t, s.Save(ctx, "pictures/ab/cd/file.png", strings.NewReader("data"), "image/png"))

	ok, err := s.Exists(ctx, "pictures/ab/cd/file.png")
	require.NoError(t, err)
	assert.True(t, ok)

	r, err := s.Get(ctx, "pictures/ab/cd/file.png")
	require.NoError(t, err)
	body, _ := io.ReadAll(r)
	r.Close()
	assert.Equal(t, "data", string(body))

	require.NoError(t, s.Delete(ctx, "pictures/ab/cd/file.png"))

	err = s.Delete(ctx, "pictures/ab/cd/file.png")
	assert.True(t, errors.Is(err, ErrObjectNotFound))

	_, err = s.Get(ctx, "pictures/ab/cd/file.png")
	assert.True(t, errors.Is(err, ErrObjectNotFound))
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	s := newTestLocal(t)
	err := s.Save(context.Background(), "../escape.txt", strings.NewReader("x"), "")
	assert.Error(t, err)
}

func TestLocalStorage_ListSkipsTempFiles(t *testing.T) {
	ctx := context.Background()
	s := newTestLocal(t)

	require.NoError(t, s.Save(ctx, "pictures/aa/bb/one.jpeg", strings.NewReader("1"), ""))
	require.NoError(t, s.Save(ctx, "pictures/cc/dd/two.jpeg", strings.NewReader("2"), ""))
	require.NoError(t, s.Save(ctx, "other/three.jpeg", strings.NewReader("3"), ""))
	require.NoError(t, os.WriteFile(filepath.Join(s.basePath, "pictures", "aa", "bb", ".upload-123"), []byte("x"), 0o644))

	objects, err := s.List(ctx, "pictures/")
	require.NoError(t, err)

	var keys []string
	for _, o := range objects {
		keys = append(keys, o.Key)
	}
	assert.ElementsMatch(t, []string{"pictures/aa/bb/one.jpeg", "pictures/cc/dd/two.jpeg"}, keys)
}

func TestLocalStorage_GetURL(t *testing.T) {
	s := newTestLocal(t)
	url, err := s.GetURL(context.Background(), "pictures/aa/bb/one.jpeg")
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.test/files/pictures/aa/bb/one.jpeg", url)
}

func TestCleanKey(t *testing.T) {
	k, err := CleanKey(`pictures\ab\cd\x.png`)
	require.NoError(t, err)
	assert.Equal(t, "pictures/ab/cd/x.png", k)

	_, err = CleanKey("")
	assert.Error(t, err)
	_, err = CleanKey("a/../../b")
	assert.Error(t, err)
}
