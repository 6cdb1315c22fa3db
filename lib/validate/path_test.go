package validate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachablePath(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "foto.jpg")
	empty := filepath.Join(dir, "vacio.jpg")
	require.NoError(t, os.WriteFile(full, []byte("jpeg"), 0o644))
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	info, err := AttachablePath(full)
	require.NoError(t, err)
	assert.Equal(t, int64(4), info.Size())

	_, err = AttachablePath(empty)
	assert.ErrorContains(t, err, "vacío")
	_, err = AttachablePath(dir)
	assert.ErrorContains(t, err, "carpetas")
	_, err = AttachablePath(filepath.Join(dir, "nada.jpg"))
	assert.ErrorContains(t, err, "no existe")
}

func TestEnsureAbsPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, filepath.Join(home, "casos", "a.mp3"), EnsureAbsPath("~/casos/a.mp3"))
	assert.Equal(t, "/tmp/x.mp4", EnsureAbsPath("/tmp/x.mp4"))
	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "b.png"), EnsureAbsPath("b.png"))
	assert.Equal(t, "sin/tilde", ExpandHome("sin/tilde"))
}
