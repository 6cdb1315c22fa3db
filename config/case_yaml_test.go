package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/casos-paranormales/casos-cli/lib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCaseFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "casos.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

var longDescription = strings.Repeat("Una luz intensa cruzó el cielo. ", 3)

func TestLoadCaseFileResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "foto.jpg"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "relato.md"), []byte(longDescription), 0o644))

	path := writeCaseFile(t, dir, `
cases:
  - case_type: "3"
    case_name: Luces en Atacama
    country: Chile
    region: Antofagasta
    address: San Pedro de Atacama
    description_path: relato.md
    files:
      - foto.jpg
`)
	file, err := LoadCaseFile(path)
	require.NoError(t, err)
	require.Len(t, file.Cases, 1)
	c := file.Cases[0]
	assert.Equal(t, filepath.Join(dir, "foto.jpg"), c.Files[0])
	require.NoError(t, file.Validate())

	atts := c.Attachments()
	require.Len(t, atts, 1)
	assert.IsType(t, lib.Image{}, atts[0].Kind)
	assert.Equal(t, int64(1), atts[0].Size)
}

func TestCaseFileValidation(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.mp4", "b.mp4", "foto.jpg"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty", "cases: []\n", "al menos un caso"},
		{"blank name", `
cases:
  - case_type: "1"
    country: Chile
    address: Calama
    description: "` + longDescription + `"
    files: [foto.jpg]
`, "Ingresa un nombre para el caso"},
		{"short description", `
cases:
  - case_type: "1"
    case_name: x
    country: Chile
    address: Calama
    description: corta
    files: [foto.jpg]
`, "Mínimo 50 caracteres (5/50)"},
		{"two videos", `
cases:
  - case_type: "1"
    case_name: x
    country: Chile
    address: Calama
    description: "` + longDescription + `"
    files: [a.mp4, b.mp4]
`, "Máximo 1 video permitido"},
		{"missing file", `
cases:
  - case_type: "1"
    case_name: x
    country: Chile
    address: Calama
    description: "` + longDescription + `"
    files: [nada.jpg]
`, "el archivo no existe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := LoadCaseFile(writeCaseFile(t, dir, tt.body))
			require.NoError(t, err)
			err = file.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
