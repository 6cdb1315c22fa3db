package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/casos-paranormales/casos-cli/config"
	"github.com/casos-paranormales/casos-cli/lib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTypes = []lib.CaseType{{Id: 1, Name: "Fantasmas"}, {Id: 2, Name: "Ufología"}}

func TestCaseFileFromFlags(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "foto.jpg")
	require.NoError(t, os.WriteFile(img, []byte("jpeg"), 0o644))

	file, err := caseFileFromArgs(&config.Argument{
		CaseType:    "ufología",
		CaseName:    "Luces en el cerro",
		Country:     "México",
		Address:     "Cerro de la Silla",
		Description: strings.Repeat("Luces naranjas en formación triangular. ", 2),
		Path:        []string{img},
	})
	require.NoError(t, err)
	require.Len(t, file.Cases, 1)
	require.NoError(t, file.Validate())

	sub, err := buildSubmission(9, testTypes, &file.Cases[0])
	require.NoError(t, err)
	assert.Equal(t, int64(9), sub.UserId)
	assert.Equal(t, int64(2), sub.CaseTypeId)
	assert.Equal(t, "Cerro de la Silla", sub.Address)
	require.Len(t, sub.Files, 1)
	assert.Equal(t, "foto.jpg", sub.Files[0].Name)
	assert.Equal(t, lib.Image{}, sub.Files[0].Kind)
	assert.Equal(t, int64(4), sub.Files[0].Size)
}

func TestCaseFileFromYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "grabacion.mp3"), []byte("mp3"), 0o644))
	yml := `cases:
  - case_type: "1"
    case_name: Voces en el pasillo
    country: Perú
    address: Casona de Barranco
    description: Se escuchan voces cada noche alrededor de las tres de la madrugada.
    files:
      - grabacion.mp3
`
	path := filepath.Join(dir, "casos.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	file, err := caseFileFromArgs(&config.Argument{FilePath: path})
	require.NoError(t, err)
	require.NoError(t, file.Validate())

	sub, err := buildSubmission(3, testTypes, &file.Cases[0])
	require.NoError(t, err)
	assert.Equal(t, int64(1), sub.CaseTypeId)
	require.Len(t, sub.Files, 1)
	assert.Equal(t, filepath.Join(dir, "grabacion.mp3"), sub.Files[0].Path)
	assert.Equal(t, lib.Audio{}, sub.Files[0].Kind)
}

func TestBuildSubmissionUnknownType(t *testing.T) {
	spec := &config.CaseSpec{CaseType: "Criptozoología", CaseName: "x"}
	_, err := buildSubmission(1, testTypes, spec)
	var ve *lib.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Message, "Fantasmas")
}

func TestRenderProgressBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("░", 20), renderProgressBar(0))
	assert.Equal(t, strings.Repeat("█", 10)+strings.Repeat("░", 10), renderProgressBar(0.5))
	assert.Equal(t, strings.Repeat("█", 20), renderProgressBar(1.7))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "2.0 MB", formatBytes(2*1024*1024))
}
