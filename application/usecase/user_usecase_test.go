package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/peroapp/pero/application/port/inbound"
	"github.com/peroapp/pero/domain/apperror"
	"github.com/peroapp/pero/domain/entity"
	"github.com/peroapp/pero/infrastructure/service/password"
)

func newTestUserUseCase(repo *memoryUserRepository) inbound.UserUseCase {
	return NewUserUseCase(repo, password.NewBcryptPasswordService(bcrypt.MinCost), nopLogger{})
}

func stringPtr(s string) *string { return &s }

func TestUserCreate(t *testing.T) {
	repo := newMemoryUserRepository()
	users := newTestUserUseCase(repo)
	ctx := context.Background()

	created, err := users.Create(ctx, inbound.CreateUserRequest{
		Email:     "admin@x.com",
		Password:  "password123",
		FirstName: "Grace",
		Role:      entity.RoleAdmin,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, entity.RoleAdmin, created.Role)
	assert.Equal(t, "Grace", created.FirstName)

	_, err = users.Create(ctx, inbound.CreateUserRequest{Email: "admin@x.com", Password: "password123"})
	assert.ErrorIs(t, err, apperror.EmailAlreadyExists("admin@x.com"))

	_, err = users.Create(ctx, inbound.CreateUserRequest{Email: "b@x.com", Password: "password123", Role: "SUPERUSER"})
	assert.ErrorIs(t, err, apperror.InvalidRequest(""))
}

func TestUserCreateDefaultsRole(t *testing.T) {
	repo := newMemoryUserRepository()
	users := newTestUserUseCase(repo)

	created, err := users.Create(context.Background(), inbound.CreateUserRequest{
		Email:    "a@x.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, created.Role)
}

func TestUserGet(t *testing.T) {
	repo := newMemoryUserRepository()
	users := newTestUserUseCase(repo)
	ctx := context.Background()

	created, err := users.Create(ctx, inbound.CreateUserRequest{Email: "a@x.com", Password: "password123"})
	require.NoError(t, err)

	got, err := users.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, got.Email)

	_, err = users.Get(ctx, "missing")
	assert.ErrorIs(t, err, apperror.UserNotFound("missing"))
}

func TestUserUpdatePatchesOnlyProvidedFields(t *testing.T) {
	repo := newMemoryUserRepository()
	users := newTestUserUseCase(repo)
	ctx := context.Background()

	created, err := users.Create(ctx, inbound.CreateUserRequest{
		Email:     "a@x.com",
		Password:  "password123",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.NoError(t, err)

	updated, err := users.Update(ctx, created.ID, inbound.UpdateUserRequest{
		FirstName: stringPtr("Augusta"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Augusta", updated.FirstName)
	assert.Equal(t, "Lovelace", updated.LastName)
	assert.Equal(t, "a@x.com", updated.Email)

	_, err = users.Update(ctx, created.ID, inbound.UpdateUserRequest{Role: stringPtr("SUPERUSER")})
	assert.ErrorIs(t, err, apperror.InvalidRequest(""))
}

func TestUserUpdatePassword(t *testing.T) {
	repo := newMemoryUserRepository()
	users := newTestUserUseCase(repo)
	ctx := context.Background()

	created, err := users.Create(ctx, inbound.CreateUserRequest{Email: "a@x.com", Password: "password123"})
	require.NoError(t, err)

	err = users.UpdatePassword(ctx, created.ID, inbound.UpdatePasswordRequest{
		OldPassword: "wrong-password",
		NewPassword: "newpassword456",
	})
	assert.ErrorIs(t, err, apperror.InvalidOldPassword())

	err = users.UpdatePassword(ctx, created.ID, inbound.UpdatePasswordRequest{
		OldPassword: "password123",
		NewPassword: "newpassword456",
	})
	require.NoError(t, err)

	// the old password no longer matches
	err = users.UpdatePassword(ctx, created.ID, inbound.UpdatePasswordRequest{
		OldPassword: "password123",
		NewPassword: "another789",
	})
	assert.ErrorIs(t, err, apperror.InvalidOldPassword())
}

func TestUserDelete(t *testing.T) {
	repo := newMemoryUserRepository()
	users := newTestUserUseCase(repo)
	ctx := context.Background()

	created, err := users.Create(ctx, inbound.CreateUserRequest{Email: "a@x.com", Password: "password123"})
	require.NoError(t, err)

	require.NoError(t, users.Delete(ctx, created.ID))

	err = users.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, apperror.UserNotFound(created.ID))
}

func TestUserList(t *testing.T) {
	repo := newMemoryUserRepository()
	users := newTestUserUseCase(repo)
	ctx := context.Background()

	_, err := users.Create(ctx, inbound.CreateUserRequest{Email: "a@x.com", Password: "password123"})
	require.NoError(t, err)
	_, err = users.Create(ctx, inbound.CreateUserRequest{Email: "b@x.com", Password: "password123"})
	require.NoError(t, err)

	list, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
