package main

import (
	"context"
	"testing"

	"github.com/eerojala/My-video-game-collection/dbtest"
	"github.com/eerojala/My-video-game-collection/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestCreateAdmin(t *testing.T) {
	ctx := context.Background()
	s := dbtest.Store(t)

	user, err := createAdmin(ctx, s, "root", "toor123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)

	stored, err := s.Users.FindByUsername(ctx, "root")
	require.NoError(t, err)
	assert.True(t, stored.IsAdmin())
	assert.NotEqual(t, "toor123", stored.PasswordHash)
}

func TestCreateAdminPromotesExistingUser(t *testing.T) {
	ctx := context.Background()
	s := dbtest.Store(t)
	member := &models.User{Username: "mario", PasswordHash: "hash", Role: models.RoleMember, OwnedGames: datatypes.JSONSlice[string]{}}
	require.NoError(t, s.Users.Create(ctx, member))

	user, err := createAdmin(ctx, s, "mario", "whatever")
	require.NoError(t, err)
	assert.Equal(t, member.ID, user.ID)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Equal(t, "hash", user.PasswordHash)
}

func TestCreateAdminValidates(t *testing.T) {
	_, err := createAdmin(context.Background(), dbtest.Store(t), "ab", "12345")
	assert.Error(t, err)
}
