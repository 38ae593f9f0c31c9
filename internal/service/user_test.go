package service

import (
	"context"
	"testing"

	"github.com/caredocs/caredocs/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(newFakeUserRepository())

	user, err := svc.Create(ctx, " Nurse@Example.com ", "Nurse Joy", model.RoleWorker, "long enough passphrase")
	require.NoError(t, err)
	assert.Equal(t, "nurse@example.com", user.Email)
	assert.Equal(t, model.RoleWorker, user.Role)
	require.True(t, user.HasPassword())
	assert.NoError(t, ComparePassword("long enough passphrase", *user.PasswordHash))

	_, err = svc.Create(ctx, "nurse@example.com", "Nurse Joy", model.RoleWorker, "long enough passphrase")
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	_, err = svc.Create(ctx, "not-an-email", "Nurse Joy", model.RoleWorker, "long enough passphrase")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.Create(ctx, "other@example.com", "Nurse Joy", "owner", "long enough passphrase")
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.Create(ctx, "other@example.com", "Nurse Joy", model.RoleAdmin, "short")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestUserService_UpdatePassword(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(newFakeUserRepository())

	user, err := svc.Create(ctx, "admin@example.com", "Admin", model.RoleAdmin, "first long passphrase")
	require.NoError(t, err)

	err = svc.UpdatePassword(ctx, user.ID, "wrong passphrase", "second long passphrase")
	assert.ErrorIs(t, err, ErrInvalidCurrentPassword)

	err = svc.UpdatePassword(ctx, user.ID, "first long passphrase", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)

	err = svc.UpdatePassword(ctx, user.ID, "first long passphrase", "second long passphrase")
	require.NoError(t, err)

	stored, err := svc.ByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword("second long passphrase", *stored.PasswordHash))
}
