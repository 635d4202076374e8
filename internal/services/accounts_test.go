package services

import (
	"bytes"
	"context"
	"testing"

	"animax/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.users.SignupUser(ctx, SignupInput{
		UserName: "hinata",
		Email:    " Hinata@Leaf.jp ",
		Password: "byakugan",
		Bio:      "gentle fist",
	}, pngFile())
	require.NoError(t, err)
	assert.Equal(t, "hinata@leaf.jp", user.Email)
	require.True(t, user.HasProfilePicture())
	assert.Equal(t, "https://media.test/Animax/profilePictures/"+user.ID+".png", *user.ProfilePicture)
	assert.NotEqual(t, "byakugan", user.PasswordHash)

	_, err = f.users.SignupUser(ctx, SignupInput{UserName: "copy", Email: "hinata@leaf.jp", Password: "whatever"}, nil)
	requireKind(t, err, KindConflict)

	_, _, err = f.users.SigninUser(ctx, SigninInput{Email: "nobody@leaf.jp", Password: "x"})
	requireKind(t, err, KindNotFound)

	_, _, err = f.users.SigninUser(ctx, SigninInput{Email: "hinata@leaf.jp", Password: "wrong"})
	requireKind(t, err, KindUnauthorized)

	signedIn, token, err := f.users.SigninUser(ctx, SigninInput{Email: "hinata@leaf.jp", Password: "byakugan"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, signedIn.ID)

	claims, err := f.tokens.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, claims.Role)
	assert.Equal(t, user.ID, claims.User.ID)

	identity := models.Identity{ID: user.ID, Role: models.RoleUser, Email: user.Email}

	err = f.users.ResetUserPassword(ctx, identity, ResetPasswordInput{OldPassword: "nope", NewPassword: "new-secret"})
	requireKind(t, err, KindUnauthorized)
	require.NoError(t, f.users.ResetUserPassword(ctx, identity, ResetPasswordInput{OldPassword: "byakugan", NewPassword: "new-secret"}))
	_, _, err = f.users.SigninUser(ctx, SigninInput{Email: "hinata@leaf.jp", Password: "new-secret"})
	require.NoError(t, err)

	other := models.Identity{ID: "intruder", Role: models.RoleUser}
	bio := "hacked"
	_, err = f.users.UpdateUser(ctx, other, user.ID, UserUpdate{Bio: &bio}, nil)
	requireKind(t, err, KindForbidden)

	bio = "head of the clan"
	updated, err := f.users.UpdateUser(ctx, adminID, user.ID, UserUpdate{Bio: &bio}, nil)
	require.NoError(t, err)
	assert.Equal(t, "head of the clan", updated.Bio)

	requireKind(t, f.users.DeleteUser(ctx, other, user.ID), KindForbidden)
	require.NoError(t, f.users.DeleteUser(ctx, identity, user.ID))
	assert.Empty(t, f.store.Users)
	assert.Contains(t, f.media.DeletedURLs, *user.ProfilePicture)
}

func TestSignupUser_RejectsUnsupportedPicture(t *testing.T) {
	f := newFixture(t)

	_, err := f.users.SignupUser(context.Background(), SignupInput{
		UserName: "gaara",
		Email:    "gaara@sand.jp",
		Password: "shukaku",
	}, &MediaFile{Body: bytes.NewReader([]byte("%PDF-1.7")), Filename: "doc.pdf", ContentType: "application/pdf"})
	requireKind(t, err, KindValidation)
	assert.Empty(t, f.store.Users)
	assert.Empty(t, f.media.Uploaded)
}

func TestSuperAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin, err := f.admins.SignupSuperAdmin(ctx, SuperAdminSignupInput{UserName: "tsunade", Email: "hokage@leaf.jp", Password: "slug-princess"}, nil)
	require.NoError(t, err)
	assert.True(t, admin.IsSuperAdmin)

	_, err = f.admins.SignupSuperAdmin(ctx, SuperAdminSignupInput{UserName: "dup", Email: "hokage@leaf.jp", Password: "whatever"}, nil)
	requireKind(t, err, KindConflict)

	_, token, err := f.admins.SigninSuperAdmin(ctx, SigninInput{Email: "hokage@leaf.jp", Password: "slug-princess"})
	require.NoError(t, err)
	claims, err := f.tokens.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, claims.Role)

	identity := models.Identity{ID: admin.ID, Role: models.RoleSuperAdmin}
	got, err := f.admins.GetSuperAdminByID(ctx, identity, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "tsunade", got.UserName)

	_, err = f.admins.GetSuperAdminByID(ctx, viewerID, admin.ID)
	requireKind(t, err, KindForbidden)

	require.NoError(t, f.admins.ResetSuperAdminPassword(ctx, identity, ResetPasswordInput{OldPassword: "slug-princess", NewPassword: "fifth-hokage"}))
	_, _, err = f.admins.SigninSuperAdmin(ctx, SigninInput{Email: "hokage@leaf.jp", Password: "slug-princess"})
	requireKind(t, err, KindUnauthorized)
}

func TestSignin_EmailIsCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.users.SignupUser(ctx, SignupInput{UserName: "alice", Email: "Alice@Example.com", Password: "wonderland"}, nil)
	require.NoError(t, err)
	admin, err := f.admins.SignupSuperAdmin(ctx, SuperAdminSignupInput{UserName: "root", Email: "Root@Example.com", Password: "wonderland"}, nil)
	require.NoError(t, err)

	for _, email := range []string{"Alice@Example.com", "alice@example.com", " ALICE@EXAMPLE.COM "} {
		got, _, err := f.users.SigninUser(ctx, SigninInput{Email: email, Password: "wonderland"})
		require.NoError(t, err, email)
		assert.Equal(t, user.ID, got.ID)
	}

	got, _, err := f.admins.SigninSuperAdmin(ctx, SigninInput{Email: "Root@Example.com", Password: "wonderland"})
	require.NoError(t, err)
	assert.Equal(t, admin.ID, got.ID)
}

func TestSuperAdminSignupDisabled(t *testing.T) {
	f := newFixture(t)
	disabled := NewSuperAdminService(f.store, f.uploads, f.tokens, false)

	_, err := disabled.SignupSuperAdmin(context.Background(), SuperAdminSignupInput{UserName: "x", Email: "x@y.z", Password: "secret1"}, nil)
	requireKind(t, err, KindForbidden)
	assert.Empty(t, f.store.SuperAdmins)
}

func TestIdentityResolver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	resolver := NewIdentityResolver(f.store)

	user, err := f.users.SignupUser(ctx, SignupInput{UserName: "shino", Email: "shino@leaf.jp", Password: "insects"}, nil)
	require.NoError(t, err)

	identity, err := resolver.Resolve(ctx, models.RoleUser, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, identity.Email)

	_, err = resolver.Resolve(ctx, models.RoleSuperAdmin, user.ID)
	requireKind(t, err, KindNotFound)

	_, err = resolver.Resolve(ctx, "GUEST", user.ID)
	requireKind(t, err, KindUnauthorized)
}
