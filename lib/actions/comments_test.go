package actions

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/casos-paranormales/casos-cli/lib"
	"github.com/casos-paranormales/casos-cli/lib/comments"
	"github.com/casos-paranormales/casos-cli/lib/localstore"
	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingCounters 计数更新总是失败的数据平台
type failingCounters struct {
	*localstore.Store
}

func (failingCounters) UpdateCommentCounters(ctx context.Context, id int64, likes int, dislikes *int) (*lib.Comment, error) {
	return nil, errBoom
}

func seedCase(t *testing.T, p *localstore.Store) (*lib.User, *lib.User, int64) {
	t.Helper()
	ctx := context.Background()
	author, err := p.CreateUser(ctx, lib.NewUser{Username: "mulder", PasswordHash: "x", Email: "m@fbi.gov"})
	require.NoError(t, err)
	other, err := p.CreateUser(ctx, lib.NewUser{Username: "skinner", PasswordHash: "x", Email: "w@fbi.gov"})
	require.NoError(t, err)
	loc, err := p.CreateLocation(ctx, lib.LocationInput{Country: "EEUU", Address: "Roswell"})
	require.NoError(t, err)
	c, err := p.CreateCase(ctx, lib.CaseInput{UserId: author.Id, CaseTypeId: 3, CaseName: "Roswell", Description: strings.Repeat("x", 60), LocationId: loc.Id})
	require.NoError(t, err)
	return author, other, c.Id
}

func TestAddComment(t *testing.T) {
	ctx := context.Background()
	p := openLocal(t)
	author, _, caseId := seedCase(t, p)

	_, err := ExecuteAddComment(ctx, p, author, caseId, "   ")
	var ve *lib.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, meta.MsgCommentEmpty, ve.Message)

	_, err = ExecuteAddComment(ctx, p, author, caseId, strings.Repeat("a", meta.CommentMaxChars+1))
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Máximo 500 caracteres (501/500)", ve.Message)

	_, err = ExecuteAddComment(ctx, p, nil, caseId, "hola")
	assert.ErrorIs(t, err, lib.ErrNotLoggedIn)

	c, err := ExecuteAddComment(ctx, p, author, caseId, "  La verdad está ahí fuera  ")
	require.NoError(t, err)
	assert.Equal(t, "La verdad está ahí fuera", c.Text)
	assert.Equal(t, "mulder", c.Author.Username)
	assert.Zero(t, c.Likes)
	assert.Zero(t, c.DislikeCount())

	res := ExecuteListComments(ctx, p, caseId)
	require.NoError(t, res.Error)
	require.Len(t, res.Comments, 1)
}

func TestReactPersistsCounters(t *testing.T) {
	ctx := context.Background()
	p := openLocal(t)
	author, other, caseId := seedCase(t, p)
	c, err := ExecuteAddComment(ctx, p, author, caseId, "Luces en el cielo")
	require.NoError(t, err)

	entry, err := ExecuteReact(ctx, p, other.Id, caseId, c.Id, comments.Like)
	require.NoError(t, err)
	assert.Equal(t, comments.Liked, entry.Reaction)
	assert.Equal(t, 1, entry.Likes)

	entry, err = ExecuteReact(ctx, p, other.Id, caseId, c.Id, comments.Dislike)
	require.NoError(t, err)
	assert.Equal(t, 1, entry.Likes)
	assert.Equal(t, 1, entry.Dislikes)

	list := ExecuteListComments(ctx, p, caseId)
	require.NoError(t, list.Error)
	assert.Equal(t, 1, list.Comments[0].Likes)
	assert.Equal(t, 1, list.Comments[0].DislikeCount())
}

func TestReactRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	p := openLocal(t)
	author, other, caseId := seedCase(t, p)
	c, err := ExecuteAddComment(ctx, p, author, caseId, "Luces en el cielo")
	require.NoError(t, err)

	entry, err := ExecuteReact(ctx, failingCounters{p}, other.Id, caseId, c.Id, comments.Like)
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, comments.None, entry.Reaction)
	assert.Zero(t, entry.Likes)
}

func TestDeleteCommentOnlyByAuthor(t *testing.T) {
	ctx := context.Background()
	p := openLocal(t)
	author, other, caseId := seedCase(t, p)
	c, err := ExecuteAddComment(ctx, p, author, caseId, "Borrar luego")
	require.NoError(t, err)

	_, err = ExecuteDeleteComment(ctx, p, other.Id, caseId, c.Id, func(string) bool { return true })
	assert.ErrorIs(t, err, comments.ErrNotAuthor)

	var prompt string
	deleted, err := ExecuteDeleteComment(ctx, p, author.Id, caseId, c.Id, func(p string) bool {
		prompt = p
		return false
	})
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, meta.MsgConfirmDelete, prompt)

	deleted, err = ExecuteDeleteComment(ctx, p, author.Id, caseId, c.Id, func(string) bool { return true })
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Empty(t, ExecuteListComments(ctx, p, caseId).Comments)
}
