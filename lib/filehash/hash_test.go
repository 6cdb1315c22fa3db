package filehash

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateHashMatchesHashBytes(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(p, []byte("hola"), 0o644))

	got, err := CalculateHash(p)
	require.NoError(t, err)
	assert.Equal(t, HashBytes([]byte("hola")), got)
	assert.Len(t, got, 64)
}

func TestCalculateHashMissingFile(t *testing.T) {
	_, err := CalculateHash(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestShort(t *testing.T) {
	assert.Equal(t, "abcd", Short("abcdef", 4))
	assert.Equal(t, "ab", Short("ab", 4))
	assert.Equal(t, "abcdef", Short("abcdef", 0))
}
