package actions

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/casos-paranormales/casos-cli/lib"
	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaResolverRefreshesOnce(t *testing.T) {
	blobs := newMemBlobs()
	r := &MediaResolver{Blobs: blobs, Bucket: "multimedia", TTL: time.Minute}
	item := &MediaItem{File: lib.MediaFile{Id: 1, Url: "caso_1/fotos/a.jpg"}, URL: "mem://expired"}

	var loaded []string
	err := r.Fetch(context.Background(), item, func(ctx context.Context, url string) error {
		loaded = append(loaded, url)
		if url == "mem://expired" {
			return lib.ErrURLExpired
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"mem://expired", "mem://multimedia/caso_1/fotos/a.jpg?sig=1"}, loaded)
	assert.Equal(t, 1, blobs.signs)
	assert.Equal(t, "mem://multimedia/caso_1/fotos/a.jpg?sig=1", item.URL)
	assert.NoError(t, item.Err)
}

func TestMediaResolverGivesUpAfterSecondFailure(t *testing.T) {
	blobs := newMemBlobs()
	r := &MediaResolver{Blobs: blobs, Bucket: "multimedia"}
	item := &MediaItem{File: lib.MediaFile{Id: 1, Url: "caso_1/fotos/a.jpg"}, URL: "mem://old"}

	loads := 0
	err := r.Fetch(context.Background(), item, func(ctx context.Context, url string) error {
		loads++
		return errBoom
	})
	require.ErrorIs(t, err, lib.ErrMediaUnavailable)
	assert.Equal(t, 2, loads)
	assert.Equal(t, 1, blobs.signs)
	assert.ErrorIs(t, item.Err, lib.ErrMediaUnavailable)
	assert.Equal(t, meta.MsgMediaUnavailable, lib.ErrMediaUnavailable.Error())
}

func TestMediaResolverSignFailure(t *testing.T) {
	blobs := newMemBlobs()
	blobs.signErr = errBoom
	r := &MediaResolver{Blobs: blobs, Bucket: "multimedia"}
	item := &MediaItem{File: lib.MediaFile{Url: "caso_1/fotos/a.jpg"}}

	loads := 0
	err := r.Fetch(context.Background(), item, func(ctx context.Context, url string) error {
		loads++
		return nil
	})
	require.ErrorIs(t, err, lib.ErrMediaUnavailable)
	assert.Zero(t, loads)
}

func TestMediaResolverLegacyURL(t *testing.T) {
	r := &MediaResolver{Blobs: newMemBlobs(), Bucket: "multimedia"}
	url, err := r.Sign(context.Background(), lib.MediaFile{Url: "https://x.supabase.co/storage/v1/object/public/multimedia/caso_3/audios/b.mp3"})
	require.NoError(t, err)
	assert.Equal(t, "mem://multimedia/caso_3/audios/b.mp3?sig=1", url)

	url, err = r.Sign(context.Background(), lib.MediaFile{Url: "https://cdn.example.com/otra.png"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/otra.png", url)
}

func TestResolveCaseType(t *testing.T) {
	types := []lib.CaseType{{Id: 1, Name: "Criptozoología"}, {Id: 2, Name: "Parapsicología"}, {Id: 3, Name: "Ufología"}}

	ct, err := ResolveCaseType(types, "3")
	require.NoError(t, err)
	assert.Equal(t, "Ufología", ct.Name)

	ct, err = ResolveCaseType(types, "parapsicología")
	require.NoError(t, err)
	assert.Equal(t, int64(2), ct.Id)

	_, err = ResolveCaseType(types, "")
	var ve *lib.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, meta.MsgSelectCaseType, ve.Message)

	_, err = ResolveCaseType(types, "Astrología")
	assert.ErrorContains(t, err, "Ufología")
}

func TestListCasesFeaturedAndMine(t *testing.T) {
	ctx := context.Background()
	p := openLocal(t)
	mulder, err := p.CreateUser(ctx, lib.NewUser{Username: "mulder", PasswordHash: "x", Email: "m@fbi.gov"})
	require.NoError(t, err)
	scully, err := p.CreateUser(ctx, lib.NewUser{Username: "scully", PasswordHash: "x", Email: "s@fbi.gov"})
	require.NoError(t, err)
	loc, err := p.CreateLocation(ctx, lib.LocationInput{Country: "EEUU", Address: "Roswell"})
	require.NoError(t, err)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		owner := mulder.Id
		if i%2 == 1 {
			owner = scully.Id
		}
		_, err := p.CreateCase(ctx, lib.CaseInput{
			UserId:      owner,
			CaseTypeId:  3,
			CaseName:    "Caso " + string(rune('A'+i)),
			Description: strings.Repeat("x", 60),
			TimeHour:    lib.NewTimestamp(base.Add(time.Duration(i) * time.Hour)),
			LocationId:  loc.Id,
		})
		require.NoError(t, err)
	}

	res := ExecuteListCases(ctx, p, ListCasesInput{Featured: true, Query: lib.CaseQuery{Page: 3, Limit: 1}})
	require.NoError(t, res.Error)
	require.Len(t, res.Page.Cases, meta.FeaturedLimit)
	assert.Equal(t, "Caso G", res.Page.Cases[0].CaseName)

	res = ExecuteListCases(ctx, p, ListCasesInput{Mine: true, ViewerId: scully.Id})
	require.NoError(t, res.Error)
	assert.Equal(t, 3, res.Page.TotalCount)

	res = ExecuteListCases(ctx, p, ListCasesInput{Mine: true})
	assert.ErrorIs(t, res.Error, lib.ErrNotLoggedIn)

	res = ExecuteListCases(ctx, p, ListCasesInput{Query: lib.CaseQuery{SortBy: "password"}})
	var ve *lib.ValidationError
	assert.True(t, errors.As(res.Error, &ve))
}

func TestGetCaseAndDownloadMedia(t *testing.T) {
	ctx := context.Background()
	p := openLocal(t)
	user, err := p.CreateUser(ctx, lib.NewUser{Username: "mulder", PasswordHash: "x", Email: "m@fbi.gov"})
	require.NoError(t, err)
	loc, err := p.CreateLocation(ctx, lib.LocationInput{Country: "EEUU", Address: "Roswell"})
	require.NoError(t, err)
	c, err := p.CreateCase(ctx, lib.CaseInput{UserId: user.Id, CaseTypeId: 3, CaseName: "Roswell", Description: strings.Repeat("x", 60), LocationId: loc.Id})
	require.NoError(t, err)

	blobs := lib.NewLocalBlobStore(t.TempDir())
	_, err = blobs.Upload(ctx, "multimedia", "caso_1/fotos/1_0_abcd.jpg", "image/jpeg", strings.NewReader("foto"), 4)
	require.NoError(t, err)
	require.NoError(t, p.CreateFiles(ctx, []lib.FileInput{
		{CaseId: c.Id, Url: "caso_1/fotos/1_0_abcd.jpg", Type: "image"},
		{CaseId: c.Id, Url: "caso_1/audios/perdido.mp3", Type: "audio"},
	}))

	resolver := &MediaResolver{Blobs: blobs, Bucket: "multimedia", TTL: time.Minute}
	detail := ExecuteGetCase(ctx, p, resolver, c.Id)
	require.NoError(t, detail.Error)
	require.Len(t, detail.Media, 2)
	assert.Equal(t, lib.Image{}, detail.Media[0].Kind)
	assert.True(t, strings.HasPrefix(detail.Media[0].URL, "file://"))
	assert.ErrorIs(t, detail.Media[1].Err, lib.ErrNotFound)

	dir := t.TempDir()
	res := ExecuteDownloadMedia(ctx, p, resolver, c.Id, dir, nil)
	require.NoError(t, res.Error)
	require.Len(t, res.Saved, 1)
	data, err := os.ReadFile(filepath.Join(dir, "caso_1", "1_0_abcd.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "foto", string(data))
	require.Len(t, res.Unavailable, 1)
	assert.Equal(t, "perdido.mp3", res.Unavailable[0].Name())

	missing := ExecuteGetCase(ctx, p, resolver, 999)
	assert.ErrorIs(t, missing.Error, lib.ErrNotFound)
}

func TestDownloadMediaRefreshesExpiredHTTPURL(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Query().Get("sig") != "2" {
			http.Error(w, "expired", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte("audio"))
	}))
	defer srv.Close()

	blobs := newMemBlobs()
	blobs.signFunc = func(path string, n int) string {
		return srv.URL + "/" + path + "?sig=" + string(rune('0'+n))
	}
	r := &MediaResolver{Blobs: blobs, Bucket: "multimedia"}
	item := &MediaItem{File: lib.MediaFile{Url: "caso_2/audios/a.mp3"}}
	url, err := r.Sign(context.Background(), item.File)
	require.NoError(t, err)
	item.URL = url

	dest := filepath.Join(t.TempDir(), "a.mp3")
	err = r.Fetch(context.Background(), item, func(ctx context.Context, url string) error {
		_, err := lib.DownloadMedia(ctx, lib.DownloadMediaOptions{URL: url, DestPath: dest})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "audio", string(data))
}
