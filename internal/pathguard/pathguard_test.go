package pathguard_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disiqueira/httpserver/internal/pathguard"
)

func setupRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("hi"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "logo.png"), []byte("img"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "deep.txt"), []byte("d"), 0o644))
	outside := filepath.Dir(root)
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("s"), 0o644))
	return root
}

func TestResolveRoot(t *testing.T) {
	root := setupRoot(t)
	p, err := pathguard.Resolve("/", root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "index.html"), p)
}

func TestResolveNested(t *testing.T) {
	root := setupRoot(t)
	p, err := pathguard.Resolve("/sub/deep.txt", root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "sub", "deep.txt"), p)
}

func TestResolveTraversalBlocked(t *testing.T) {
	root := setupRoot(t)
	_, err := pathguard.Resolve("/../secret.txt", root)
	require.Error(t, err)
	var guardErr *pathguard.Error
	require.ErrorAs(t, err, &guardErr)
	assert.Equal(t, pathguard.Forbidden, guardErr.Reason)
}

func TestResolveDoubleSlashBlocked(t *testing.T) {
	root := setupRoot(t)
	_, err := pathguard.Resolve("//etc/passwd", root)
	require.Error(t, err)
	var guardErr *pathguard.Error
	require.ErrorAs(t, err, &guardErr)
	assert.Equal(t, pathguard.Forbidden, guardErr.Reason)
}

func TestResolveNotFound(t *testing.T) {
	root := setupRoot(t)
	_, err := pathguard.Resolve("/missing.html", root)
	require.Error(t, err)
	var guardErr *pathguard.Error
	require.ErrorAs(t, err, &guardErr)
	assert.Equal(t, pathguard.NotFound, guardErr.Reason)
}

func TestResolveDirectoryRejected(t *testing.T) {
	root := setupRoot(t)
	_, err := pathguard.Resolve("/sub", root)
	require.Error(t, err)
	var guardErr *pathguard.Error
	require.ErrorAs(t, err, &guardErr)
	assert.Equal(t, pathguard.NotFound, guardErr.Reason)
}
