package lib

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalBlobStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewLocalBlobStore(t.TempDir())

	stored, err := store.Upload(ctx, "multimedia", "caso_1/fotos/a.jpg", "image/jpeg", strings.NewReader("jpeg"), 4)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored, "file://"))

	_, err = store.Upload(ctx, "multimedia", "caso_1/fotos/a.jpg", "image/jpeg", strings.NewReader("otra"), 4)
	assert.Error(t, err)

	signed, err := store.SignURL(ctx, "multimedia", "caso_1/fotos/a.jpg", time.Hour)
	require.NoError(t, err)
	assert.Contains(t, signed, "expires=")

	body, size, err := OpenMedia(ctx, signed)
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))
	assert.Equal(t, int64(4), size)
}

func TestLocalBlobStoreRejectsEscapes(t *testing.T) {
	store := NewLocalBlobStore(t.TempDir())
	_, err := store.Upload(context.Background(), "multimedia", "../fuera.txt", "text/plain", strings.NewReader("x"), 1)
	assert.Error(t, err)
}

func TestLocalBlobStoreSignMissing(t *testing.T) {
	store := NewLocalBlobStore(t.TempDir())
	_, err := store.SignURL(context.Background(), "multimedia", "caso_9/fotos/nada.jpg", time.Hour)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalSignedURLExpires(t *testing.T) {
	ctx := context.Background()
	store := NewLocalBlobStore(t.TempDir())
	_, err := store.Upload(ctx, "multimedia", "caso_1/audios/b.mp3", "audio/mpeg", strings.NewReader("mp3"), 3)
	require.NoError(t, err)

	store.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	signed, err := store.SignURL(ctx, "multimedia", "caso_1/audios/b.mp3", time.Hour)
	require.NoError(t, err)

	_, _, err = OpenMedia(ctx, signed)
	assert.ErrorIs(t, err, ErrURLExpired)
}

func TestPlatformStorage(t *testing.T) {
	var uploadedPath, contentType, upsert string
	var uploaded []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/storage/v1/object/sign/"):
			var req map[string]int
			_ = json.NewDecoder(r.Body).Decode(&req)
			assert.Equal(t, 3600, req["expiresIn"])
			_, _ = w.Write([]byte(`{"signedURL":"/object/sign/multimedia/caso_1/fotos/a.jpg?token=abc"}`))
		case strings.HasPrefix(r.URL.Path, "/storage/v1/object/"):
			uploadedPath = r.URL.Path
			contentType = r.Header.Get(meta.HeaderContentType)
			upsert = r.Header.Get(meta.HeaderUpsert)
			uploaded, _ = io.ReadAll(r.Body)
			_, _ = w.Write([]byte(`{"Key":"multimedia/caso_1/fotos/a.jpg"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	s := NewPlatformStorage(NewClient(srv.URL, "anon"))
	ctx := context.Background()

	_, err := s.Upload(ctx, "multimedia", "caso_1/fotos/a.jpg", "image/jpeg", strings.NewReader("jpeg"), 4)
	require.NoError(t, err)
	assert.Equal(t, "/storage/v1/object/multimedia/caso_1/fotos/a.jpg", uploadedPath)
	assert.Equal(t, "image/jpeg", contentType)
	assert.Equal(t, "false", upsert)
	assert.Equal(t, "jpeg", string(uploaded))

	signed, err := s.SignURL(ctx, "multimedia", "caso_1/fotos/a.jpg", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/storage/v1/object/sign/multimedia/caso_1/fotos/a.jpg?token=abc", signed)
}

func TestStoragePath(t *testing.T) {
	cases := map[string]string{
		"caso_1/fotos/a.jpg":  "caso_1/fotos/a.jpg",
		"/caso_1/fotos/a.jpg": "caso_1/fotos/a.jpg",
		"https://x.supabase.co/storage/v1/object/public/multimedia/caso_1/fotos/a.jpg":          "caso_1/fotos/a.jpg",
		"https://x.supabase.co/storage/v1/object/sign/multimedia/caso_2/videos/v.mp4?token=abc": "caso_2/videos/v.mp4",
		"https://otro.example.com/imagen.jpg":                                                   "",
	}
	for stored, want := range cases {
		assert.Equal(t, want, StoragePath(stored, "multimedia"), stored)
	}
}

func TestObjectName(t *testing.T) {
	assert.Equal(t, "a.jpg", ObjectName("caso_1/fotos/a.jpg?token=1"))
	assert.Equal(t, "b.mp3", ObjectName("b.mp3"))
}

func TestDownloadMedia(t *testing.T) {
	ctx := context.Background()
	store := NewLocalBlobStore(t.TempDir())
	_, err := store.Upload(ctx, "multimedia", "caso_1/fotos/a.jpg", "image/jpeg", strings.NewReader("contenido"), 9)
	require.NoError(t, err)
	signed, err := store.SignURL(ctx, "multimedia", "caso_1/fotos/a.jpg", time.Hour)
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "sub", "a.jpg")
	var last, total int64
	n, err := DownloadMedia(ctx, DownloadMediaOptions{
		URL:      signed,
		DestPath: dest,
		Progress: func(consumed, t int64) { last, total = consumed, t },
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), n)
	assert.Equal(t, int64(9), last)
	assert.Equal(t, int64(9), total)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "contenido", string(data))
}

func TestDownloadMediaBadStatusLeavesNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	_, err := DownloadMedia(context.Background(), DownloadMediaOptions{URL: srv.URL + "/a.jpg", DestPath: filepath.Join(dir, "a.jpg")})
	require.Error(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOpenMediaUnsupportedScheme(t *testing.T) {
	_, _, err := OpenMedia(context.Background(), "ftp://x/a.jpg")
	assert.Error(t, err)
}
