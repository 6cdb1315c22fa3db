package lib

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectKind(t *testing.T) {
	assert.Equal(t, Image{}, DetectKind("foto.JPG", ""))
	assert.Equal(t, Video{}, DetectKind("clip.mov", ""))
	assert.Equal(t, Audio{}, DetectKind("psicofonia.mp3", ""))
	assert.Equal(t, Unknown{}, DetectKind("notas.txt", ""))
	// MIME 优先
	assert.Equal(t, Audio{}, DetectKind("grabacion.bin", "audio/wav; codecs=1"))
}

func TestKindFromRecord(t *testing.T) {
	assert.Equal(t, Image{}, KindFromRecord("image", "caso_1/fotos/a.bin"))
	assert.Equal(t, Video{}, KindFromRecord("video/mp4", "caso_1/videos/v"))
	assert.Equal(t, Audio{}, KindFromRecord("", "caso_1/audios/a.m4a?token=1"))
}

func TestStorageFolderAndIcons(t *testing.T) {
	assert.Equal(t, "fotos", StorageFolder(Image{}))
	assert.Equal(t, "videos", StorageFolder(Video{}))
	assert.Equal(t, "audios", StorageFolder(Audio{}))
	assert.Equal(t, "🛸", CaseIcon("Ufología"))
	assert.Equal(t, "👻", CaseIcon("Fantasmas"))
	assert.Equal(t, "🔮", CaseIcon(""))
}

func TestMediaExtensions(t *testing.T) {
	exts := MediaExtensions()
	assert.True(t, sort.StringsAreSorted(exts))
	assert.Contains(t, exts, ".jpg")
	assert.Contains(t, exts, ".mp4")
	assert.Contains(t, exts, ".wav")
	for _, ext := range exts {
		assert.NotEqual(t, Unknown{}, DetectKind("x"+ext, ""), ext)
	}
}
