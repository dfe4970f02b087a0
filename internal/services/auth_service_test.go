package services

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitshop_backend/internal/auth"
	"fitshop_backend/internal/models"
	"fitshop_backend/internal/repositories"
	"fitshop_backend/internal/services/dto"
	"fitshop_backend/internal/testutil"
	"fitshop_backend/pkg/apperrors"
)

func newTestAuthService(t *testing.T) (AuthService, *auth.JWTManager, func() []string) {
	t.Helper()
	store, st := testutil.NewImageStore(t)
	jwt := auth.NewJWTManager("test-secret", 60)
	svc := NewAuthService(
		repositories.NewUserRepository(),
		NewPictureService(store, repositories.NewPictureRepository()),
		jwt,
	)
	return svc, jwt, func() []string { return storedKeys(t, st) }
}

func TestAuthService_Login(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc, jwt, _ := newTestAuthService(t)
	user := testutil.CreateUser(t, db, "buyer@test.com", "password123", models.UserRoleCustomer)

	resp, err := svc.Login(ctx, db, &dto.LoginRequest{Email: " Buyer@Test.com ", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.User.ID)

	claims, err := jwt.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, string(models.UserRoleCustomer), claims.Role)

	_, err = svc.Login(ctx, db, &dto.LoginRequest{Email: "buyer@test.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, db, &dto.LoginRequest{Email: "nobody@test.com", Password: "password123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc, _, _ := newTestAuthService(t)

	require.NoError(t, svc.EnsureAdmin(ctx, db, "", ""))
	require.NoError(t, svc.EnsureAdmin(ctx, db, "Admin@Fitshop.local", "supersecret"))
	require.NoError(t, svc.EnsureAdmin(ctx, db, "other@fitshop.local", "supersecret"))

	var admins []models.User
	require.NoError(t, db.Where("role = ?", models.UserRoleAdmin).Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.Equal(t, "admin@fitshop.local", admins[0].Email)

	_, err := svc.Login(ctx, db, &dto.LoginRequest{Email: "admin@fitshop.local", Password: "supersecret"})
	require.NoError(t, err)
}

func TestAuthService_UpdateAvatar(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc, _, keys := newTestAuthService(t)
	user := testutil.CreateCustomer(t, db)

	encoded := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(testutil.PNG(t, 640, 400))

	updated, err := svc.UpdateAvatar(ctx, db, user.ID, encoded)
	require.NoError(t, err)
	require.NotNil(t, updated.Avatar)
	first := updated.Avatar.Path

	updated, err = svc.UpdateAvatar(ctx, db, user.ID, encoded)
	require.NoError(t, err)
	assert.NotEqual(t, first, updated.Avatar.Path)
	assert.Equal(t, []string{updated.Avatar.Path}, keys())

	// a payload that is not an image leaves the avatar and its file alone
	_, err = svc.UpdateAvatar(ctx, db, user.ID, base64.StdEncoding.EncodeToString([]byte("plain text")))
	assert.ErrorIs(t, err, apperrors.ErrInvalidImage)
	assert.Equal(t, []string{updated.Avatar.Path}, keys())

	profile, err := svc.GetProfile(ctx, db, user.ID)
	require.NoError(t, err)
	require.NotNil(t, profile.Avatar)
	assert.Equal(t, updated.Avatar.ID, profile.Avatar.ID)
}
