package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawangupta079/skill-hire/internal/apperr"
	"github.com/pawangupta079/skill-hire/pkg/model"
)

func register(t *testing.T, f *fixture, email string, typ model.UserType) *model.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), model.RegisterReq{
		FirstName: "Ada", LastName: "Lovelace", Email: email, Password: "secret123", UserType: typ,
	})
	require.NoError(t, err)
	return u
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := register(t, f, "Ada@Example.com", "")
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, model.UserTypeCandidate, u.UserType)
	assert.NotEqual(t, "secret123", u.PasswordHash)

	_, err := f.users.Register(ctx, model.RegisterReq{FirstName: "A", Email: "ada@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	_, err = f.users.Register(ctx, model.RegisterReq{FirstName: "A", Email: "x@example.com", Password: "secret123", UserType: model.UserTypeAdmin})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	got, err := f.users.Authenticate(ctx, model.LoginReq{Email: "ada@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotNil(t, got.LastLogin)

	_, err = f.users.Authenticate(ctx, model.LoginReq{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	_, err = f.users.Authenticate(ctx, model.LoginReq{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestDeactivatedUserCannotLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.user(t, "a1", model.UserTypeAdmin)
	u := register(t, f, "ada@example.com", model.UserTypeRecruiter)

	_, err := f.users.SetActive(ctx, ActorFromUser(u), u.UserID, false)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = f.users.SetActive(ctx, admin, admin.ID, false)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	off, err := f.users.SetActive(ctx, admin, u.UserID, false)
	require.NoError(t, err)
	assert.False(t, off.IsActive)

	_, err = f.users.Authenticate(ctx, model.LoginReq{Email: "ada@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	_, err = f.users.PublicProfile(ctx, u.UserID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateProfileOnlyTouchesAllowedFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := register(t, f, "ada@example.com", model.UserTypeCandidate)
	actor := ActorFromUser(u)

	var patch map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(`{
		"first_name": "Augusta",
		"profile.bio": "mathematician",
		"profile": {"skills": ["analysis"], "resume": {"path": "/evil"}},
		"company": {"name": "Engines Ltd"},
		"email": "evil@example.com",
		"user_type": "admin",
		"is_active": false,
		"password_hash": "x"
	}`), &patch))

	updated, err := f.users.UpdateProfile(ctx, actor, patch)
	require.NoError(t, err)
	assert.Equal(t, "Augusta", updated.FirstName)
	assert.Equal(t, "mathematician", updated.Profile.Bio)
	assert.Equal(t, []string{"analysis"}, updated.Profile.Skills)
	assert.Nil(t, updated.Profile.Resume)
	assert.Equal(t, "Engines Ltd", updated.Company.Name)

	stored, err := f.store.GetUserByID(ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", stored.Email)
	assert.Equal(t, model.UserTypeCandidate, stored.UserType)
	assert.True(t, stored.IsActive)
	assert.Equal(t, u.PasswordHash, stored.PasswordHash)
	assert.Equal(t, "Augusta", stored.FirstName)

	_, err = f.users.UpdateProfile(ctx, actor, map[string]json.RawMessage{"profile.skills": json.RawMessage(`"not-a-list"`)})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	register(t, f, "ada@example.com", model.UserTypeCandidate)
	register(t, f, "grace@example.com", model.UserTypeRecruiter)

	page, err := f.users.List(ctx, model.ListUsersQuery{UserType: model.UserTypeRecruiter})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, "grace@example.com", page.Items[0].Email)

	page, err = f.users.List(ctx, model.ListUsersQuery{Search: "ADA"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
}
