package location

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const remoteBody = `[
 {"name":{"common":"Perú"},"cca2":"PE","region":"Americas","subregion":"South America","capital":["Lima"],"population":32971846},
 {"name":{"common":"Argentina"},"cca2":"AR","region":"Americas","capital":["Buenos Aires"]},
 {"name":{"common":"Ñandutí"},"cca2":"XN"},
 {"name":{"common":"Noruega"},"cca2":"NO","region":"Europe","capital":[]},
 {"name":{"common":""},"cca2":"ZZ"}
]`

func newServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/all", r.URL.Path)
		assert.Equal(t, "name,cca2,region,subregion,capital,population", r.URL.Query().Get("fields"))
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestCountriesFetchAndSort(t *testing.T) {
	srv, hits := newServer(t, http.StatusOK, remoteBody)
	c := NewCatalog(Options{BaseURL: srv.URL + "/", TTL: time.Hour})

	got, fallback := c.Countries(context.Background())
	assert.False(t, fallback)
	assert.Equal(t, []string{"Argentina", "Noruega", "Ñandutí", "Perú"}, Names(got))
	assert.Equal(t, "Lima", got[3].Capital)
	assert.Equal(t, "South America", got[3].Subregion)
	assert.Empty(t, got[1].Capital)

	_, _ = c.Countries(context.Background())
	assert.EqualValues(t, 1, atomic.LoadInt32(hits))
}

func TestCountriesTTLExpiry(t *testing.T) {
	srv, hits := newServer(t, http.StatusOK, remoteBody)
	c := NewCatalog(Options{BaseURL: srv.URL, TTL: time.Hour})
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_, _ = c.Countries(context.Background())
	now = now.Add(2 * time.Hour)
	_, _ = c.Countries(context.Background())
	assert.EqualValues(t, 2, atomic.LoadInt32(hits))
}

func TestCountriesFallbackNotCached(t *testing.T) {
	srv, hits := newServer(t, http.StatusInternalServerError, `boom`)
	c := NewCatalog(Options{BaseURL: srv.URL, TTL: time.Hour})

	got, fallback := c.Countries(context.Background())
	assert.True(t, fallback)
	assert.Len(t, got, len(FallbackCountries))
	assert.Equal(t, "Alemania", got[0].Name)

	_, fallback = c.Countries(context.Background())
	assert.True(t, fallback)
	assert.EqualValues(t, 2, atomic.LoadInt32(hits))
	// 内置列表保持原顺序
	assert.Equal(t, "Argentina", FallbackCountries[0].Name)
}

func TestCountriesWithoutURL(t *testing.T) {
	got, fallback := NewCatalog(Options{}).Countries(context.Background())
	assert.True(t, fallback)
	assert.Contains(t, Names(got), "México")
}

func TestCountriesDiskCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "countries.json")
	srv, hits := newServer(t, http.StatusOK, remoteBody)

	first := NewCatalog(Options{BaseURL: srv.URL, TTL: time.Hour, CachePath: path})
	_, _ = first.Countries(context.Background())
	require.FileExists(t, path)

	second := NewCatalog(Options{BaseURL: srv.URL, TTL: time.Hour, CachePath: path})
	got, fallback := second.Countries(context.Background())
	assert.False(t, fallback)
	assert.Len(t, got, 4)
	assert.EqualValues(t, 1, atomic.LoadInt32(hits))

	// 过期的磁盘缓存会触发重新请求
	stale := NewCatalog(Options{BaseURL: srv.URL, TTL: time.Hour, CachePath: path})
	stale.now = func() time.Time { return time.Now().Add(3 * time.Hour) }
	_, _ = stale.Countries(context.Background())
	assert.EqualValues(t, 2, atomic.LoadInt32(hits))
}

func TestSearch(t *testing.T) {
	countries := sortByName(FallbackCountries)

	assert.Equal(t, []string{"Perú"}, Names(Search(countries, "peru")))
	assert.Equal(t, []string{"Japón"}, Names(Search(countries, " JAPON ")))
	// 代码完全匹配视同前缀匹配
	assert.Equal(t, []string{"Estados Unidos", "Australia", "Rusia"}, Names(Search(countries, "us")))
	assert.Equal(t, []string{"España", "Estados Unidos"}, Names(Search(countries, "es")))
	assert.Len(t, Search(countries, ""), len(FallbackCountries))
	assert.Empty(t, Search(countries, "atlantida"))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "canada", Fold("Canadá"))
	assert.Equal(t, "sudafrica", Fold("  Sudáfrica"))
	assert.Equal(t, "espana", Fold("España"))
}
