package actions

import (
	"context"
	"errors"
	"testing"

	"github.com/casos-paranormales/casos-cli/lib"
	"github.com/casos-paranormales/casos-cli/lib/validate"
	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegister() RegisterInput {
	return RegisterInput{
		Username:        "scully",
		Password:        "secreto1",
		ConfirmPassword: "secreto1",
		Email:           "dana@fbi.gov",
		FirstName:       "Dana",
		LastName:        "Scully",
		Birthday:        "1964-02-23",
	}
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	p := openLocal(t)
	store := newSession(t)

	reg := ExecuteRegister(ctx, p, store, validRegister())
	require.NoError(t, reg.Error)
	require.True(t, reg.Success)
	assert.Equal(t, "scully", reg.User.Username)

	current, ok := store.Current()
	require.True(t, ok)
	assert.Equal(t, reg.User.Id, current.Id)

	record, err := p.FindUserByUsername(ctx, "scully")
	require.NoError(t, err)
	assert.NotEqual(t, "secreto1", record.PasswordHash)

	require.NoError(t, ExecuteLogout(store))
	_, ok = store.Current()
	assert.False(t, ok)

	login := ExecuteLogin(ctx, p, store, " scully ", "secreto1")
	require.NoError(t, login.Error)
	assert.True(t, login.Success)
	current, ok = store.Current()
	require.True(t, ok)
	assert.Equal(t, "scully", current.Username)
}

func TestRegisterValidation(t *testing.T) {
	in := validRegister()
	in.Username = "ab"
	in.ConfirmPassword = "otra"
	in.Email = "no-es-correo"

	res := ExecuteRegister(context.Background(), openLocal(t), newSession(t), in)
	require.Error(t, res.Error)
	assert.False(t, res.Success)
	assert.Equal(t, meta.MsgUsernameMin, res.FieldErrors[validate.FieldUsername])
	assert.Equal(t, meta.MsgPasswordMismatch, res.FieldErrors[validate.FieldConfirmPassword])
	assert.Equal(t, meta.MsgEmailInvalid, res.FieldErrors[validate.FieldEmail])

	var ve *lib.ValidationError
	assert.True(t, errors.As(res.Error, &ve))
	assert.Equal(t, "validación", lib.GetStep(res.Error))
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	p := openLocal(t)
	store := newSession(t)
	require.NoError(t, ExecuteRegister(ctx, p, store, validRegister()).Error)

	res := ExecuteRegister(ctx, p, newSession(t), validRegister())
	require.Error(t, res.Error)
	var ae *lib.AuthError
	require.True(t, errors.As(res.Error, &ae))
	assert.Equal(t, meta.MsgUsernameTaken, ae.Message)
	assert.Equal(t, meta.MsgUsernameTaken, res.FieldErrors[validate.FieldUsername])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	p := openLocal(t)
	require.NoError(t, ExecuteRegister(ctx, p, newSession(t), validRegister()).Error)

	for name, tc := range map[string]struct{ user, pass string }{
		"wrong password": {"scully", "incorrecta"},
		"unknown user":   {"mulder", "secreto1"},
		"empty":          {"", ""},
	} {
		t.Run(name, func(t *testing.T) {
			store := newSession(t)
			res := ExecuteLogin(ctx, p, store, tc.user, tc.pass)
			require.Error(t, res.Error)
			assert.False(t, res.Success)
			var ae *lib.AuthError
			require.True(t, errors.As(res.Error, &ae))
			assert.Equal(t, meta.MsgInvalidCredentials, ae.Message)
			_, ok := store.Current()
			assert.False(t, ok)
		})
	}
}

func TestWhoami(t *testing.T) {
	ctx := context.Background()
	p := openLocal(t)
	store := newSession(t)

	res := ExecuteWhoami(ctx, p, store)
	assert.ErrorIs(t, res.Error, lib.ErrNotLoggedIn)

	require.NoError(t, ExecuteRegister(ctx, p, store, validRegister()).Error)
	res = ExecuteWhoami(ctx, p, store)
	require.NoError(t, res.Error)
	assert.Equal(t, "Dana Scully (@scully)", res.User.DisplayName())

	require.NoError(t, store.Login(lib.User{Id: 999, Username: "fantasma"}))
	res = ExecuteWhoami(ctx, p, store)
	var ae *lib.AuthError
	require.True(t, errors.As(res.Error, &ae))
	assert.Equal(t, meta.MsgUserNotFound, ae.Message)
}
