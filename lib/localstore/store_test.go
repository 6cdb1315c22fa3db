package localstore

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/casos-paranormales/casos-cli/lib"
	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "casos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedUser(t *testing.T, s *Store, username string) *lib.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), lib.NewUser{Username: username, PasswordHash: "hash", Email: username + "@x.io"})
	require.NoError(t, err)
	return u
}

func TestOpenSeedsCaseTypes(t *testing.T) {
	s := openStore(t)
	types, err := s.ListCaseTypes(context.Background())
	require.NoError(t, err)
	names := make([]string, 0, len(types))
	for _, ct := range types {
		names = append(names, ct.Name)
	}
	assert.Equal(t, []string{"Criptozoología", "Parapsicología", "Ufología"}, names)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "casos.db")
	s, err := Open(path)
	require.NoError(t, err)
	seedUser(t, s, "mulder")
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	u, err := s.FindUserByUsername(context.Background(), "mulder")
	require.NoError(t, err)
	assert.Equal(t, "hash", u.PasswordHash)
}

func TestUsers(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "scully")
	assert.NotZero(t, u.Id)

	_, err := s.CreateUser(ctx, lib.NewUser{Username: "scully", PasswordHash: "x"})
	assert.True(t, lib.IsCode(err, meta.CodeUniqueViolation))

	_, err = s.FindUserByUsername(ctx, "nadie")
	assert.ErrorIs(t, err, lib.ErrNotFound)

	got, err := s.GetUser(ctx, u.Id)
	require.NoError(t, err)
	assert.Equal(t, "scully@x.io", got.Email)
}

func TestFindLocation(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	loc, err := s.CreateLocation(ctx, lib.LocationInput{Country: "Perú", Region: "Cusco", Address: "Valle Sagrado, Urubamba"})
	require.NoError(t, err)

	got, err := s.FindLocation(ctx, "Perú", "urubamba")
	require.NoError(t, err)
	assert.Equal(t, loc.Id, got.Id)

	_, err = s.FindLocation(ctx, "Chile", "urubamba")
	assert.ErrorIs(t, err, lib.ErrNotFound)

	_, err = s.FindLocation(ctx, "Perú", "100%")
	assert.ErrorIs(t, err, lib.ErrNotFound)
}

func TestCasesQuery(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	owner := seedUser(t, s, "mulder")
	other := seedUser(t, s, "skinner")
	loc, err := s.CreateLocation(ctx, lib.LocationInput{Country: "México", Address: "Zona del Silencio"})
	require.NoError(t, err)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		userId := owner.Id
		if i%2 == 1 {
			userId = other.Id
		}
		name := fmt.Sprintf("Caso %d", i)
		desc := "luces en el cielo"
		if i == 3 {
			desc = "Un FANTASMA en la hacienda"
		}
		_, err := s.CreateCase(ctx, lib.CaseInput{
			UserId: userId, CaseTypeId: int64(1 + i%3), CaseName: name, Description: desc,
			TimeHour: lib.NewTimestamp(base.Add(time.Duration(i) * time.Hour)), LocationId: loc.Id,
		})
		require.NoError(t, err)
	}

	page, err := s.QueryCases(ctx, lib.CaseQuery{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 8, page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.HasNextPage)
	require.Len(t, page.Cases, meta.DefaultPageSize)
	assert.Equal(t, "Caso 7", page.Cases[0].CaseName)
	assert.Equal(t, "México", page.Cases[0].Location.Country)
	assert.Equal(t, "skinner", page.Cases[0].Owner.Username)

	page, err = s.QueryCases(ctx, lib.CaseQuery{Page: 2})
	require.NoError(t, err)
	assert.Len(t, page.Cases, 2)
	assert.False(t, page.HasNextPage)
	assert.True(t, page.HasPrevPage)

	page, err = s.QueryCases(ctx, lib.CaseQuery{Search: "fantasma"})
	require.NoError(t, err)
	require.Len(t, page.Cases, 1)
	assert.Equal(t, "Caso 3", page.Cases[0].CaseName)

	page, err = s.QueryCases(ctx, lib.CaseQuery{OwnerId: owner.Id, SortBy: meta.SortByCaseName, SortOrder: meta.SortOrderAsc})
	require.NoError(t, err)
	names := make([]string, 0)
	for _, c := range page.Cases {
		names = append(names, c.CaseName)
	}
	if diff := cmp.Diff([]string{"Caso 0", "Caso 2", "Caso 4", "Caso 6"}, names); diff != "" {
		t.Errorf("owner cases mismatch (-want +got):\n%s", diff)
	}

	page, err = s.QueryCases(ctx, lib.CaseQuery{CaseTypeId: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalCount)
}

func TestGetCaseWithFiles(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "mulder")
	loc, _ := s.CreateLocation(ctx, lib.LocationInput{Country: "Chile", Address: "San Clemente"})
	c, err := s.CreateCase(ctx, lib.CaseInput{UserId: u.Id, CaseTypeId: 3, CaseName: "Ovni", Description: "d", LocationId: loc.Id})
	require.NoError(t, err)
	assert.False(t, c.TimeHour.IsZero())

	require.NoError(t, s.CreateFiles(ctx, []lib.FileInput{
		{CaseId: c.Id, Url: "caso_1/fotos/a.jpg", Type: "image"},
		{CaseId: c.Id, Url: "caso_1/audios/b.mp3", Type: "audio"},
	}))

	got, err := s.GetCase(ctx, c.Id)
	require.NoError(t, err)
	assert.Equal(t, "Ufología", got.TypeName())
	require.Len(t, got.Files, 2)
	assert.Equal(t, "audio", got.Files[1].Type)

	_, err = s.GetCase(ctx, 999)
	assert.ErrorIs(t, err, lib.ErrNotFound)

	err = s.CreateFiles(ctx, []lib.FileInput{{CaseId: 999, Url: "x", Type: "image"}})
	assert.True(t, lib.IsCode(err, meta.CodeForeignKey))
}

func TestComments(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "mulder")
	loc, _ := s.CreateLocation(ctx, lib.LocationInput{Country: "Chile", Address: "Calama"})
	c, err := s.CreateCase(ctx, lib.CaseInput{UserId: u.Id, CaseTypeId: 1, CaseName: "x", Description: "d", LocationId: loc.Id})
	require.NoError(t, err)

	first, err := s.CreateComment(ctx, lib.CommentInput{CaseId: c.Id, Text: "primero", UserId: u.Id})
	require.NoError(t, err)
	assert.Nil(t, first.Dislikes)
	require.NotNil(t, first.Author)
	assert.Equal(t, "mulder", first.Author.Username)
	second, err := s.CreateComment(ctx, lib.CommentInput{CaseId: c.Id, Text: "segundo", UserId: u.Id})
	require.NoError(t, err)

	list, err := s.ListComments(ctx, c.Id)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.Id, list[0].Id)

	two := 2
	updated, err := s.UpdateCommentCounters(ctx, first.Id, 5, &two)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Likes)
	assert.Equal(t, 2, updated.DislikeCount())

	// dislikes 为 nil 时保留原值
	kept, err := s.UpdateCommentCounters(ctx, first.Id, 6, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, kept.Likes)
	require.NotNil(t, kept.Dislikes)
	assert.Equal(t, 2, *kept.Dislikes)

	_, err = s.UpdateCommentCounters(ctx, 999, 1, nil)
	assert.ErrorIs(t, err, lib.ErrNotFound)

	require.NoError(t, s.DeleteComment(ctx, first.Id))
	list, err = s.ListComments(ctx, c.Id)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
