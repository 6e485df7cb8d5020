package service

import (
	"context"
	"testing"

	apperrors "github.com/Kosench/shortlink/internal/errors"
	"github.com/Kosench/shortlink/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_GetProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	registerJane(t, f)

	user, err := f.users.GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)

	profile, err := f.userSvc.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane", profile.Username)
	assert.Equal(t, "Jane Doe", profile.Name)
	assert.True(t, profile.HasPassword)

	_, err = f.userSvc.GetProfile(ctx, uuid.New())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUserService_UpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	registerJane(t, f)

	user, err := f.users.GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)

	name := "  Jane Q. Doe "
	password := "new-password-123"
	profile, err := f.userSvc.UpdateProfile(ctx, user.ID, &model.UpdateProfileRequest{Name: &name, Password: &password})
	require.NoError(t, err)
	assert.Equal(t, "Jane Q. Doe", profile.Name)

	_, err = f.authSvc.Login(ctx, "jane", "correct-horse")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials, "old password stops working")

	_, err = f.authSvc.Login(ctx, "jane", password)
	assert.NoError(t, err)

	short := "short"
	_, err = f.userSvc.UpdateProfile(ctx, user.ID, &model.UpdateProfileRequest{Password: &short})
	assert.True(t, apperrors.IsValidationError(err))
}

func TestUserService_UpdateProfileSetsFirstPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.authSvc.ResolveOAuthIdentity(ctx, &model.OAuthIdentity{
		Provider:      "github",
		ProviderID:    "42",
		Email:         "octo@example.com",
		Name:          "Octo",
		EmailVerified: true,
	})
	require.NoError(t, err)

	password := "first-password"
	profile, err := f.userSvc.UpdateProfile(ctx, user.ID, &model.UpdateProfileRequest{Password: &password})
	require.NoError(t, err)
	assert.True(t, profile.HasPassword)
	assert.Equal(t, "github", profile.Provider)

	_, err = f.authSvc.Login(ctx, "octo@example.com", password)
	assert.NoError(t, err)
}

func TestUserService_DeleteAccountCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "jane@example.com", "jane")
	other := f.createUser(t, "john@example.com", "john")

	link, err := f.linkSvc.Allocate(ctx, "https://example.com", "", owner.ID)
	require.NoError(t, err)
	require.NoError(t, f.linkSvc.RecordClick(ctx, link.ID, "", "curl/8.0"))

	kept, err := f.linkSvc.Allocate(ctx, "https://example.com", "", other.ID)
	require.NoError(t, err)

	require.NoError(t, f.userSvc.DeleteAccount(ctx, owner.ID))

	_, err = f.linkSvc.Resolve(ctx, link.ShortCode)
	assert.True(t, apperrors.IsNotFound(err))

	var events int64
	require.NoError(t, f.db.Model(&model.ClickEvent{}).Where("short_link_id = ?", link.ID).Count(&events).Error)
	assert.Zero(t, events)

	_, err = f.linkSvc.Resolve(ctx, kept.ShortCode)
	assert.NoError(t, err, "other users' links are untouched")

	err = f.userSvc.DeleteAccount(ctx, owner.ID)
	assert.True(t, apperrors.IsNotFound(err))
}
