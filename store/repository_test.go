package store_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/eerojala/My-video-game-collection/dbtest"
	"github.com/eerojala/My-video-game-collection/models"
	"github.com/eerojala/My-video-game-collection/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestGetByIDDistinguishesMalformedFromMissing(t *testing.T) {
	ctx := context.Background()
	s := dbtest.Store(t)

	_, err := s.Platforms.GetByID(ctx, "invalid")
	assert.ErrorIs(t, err, store.ErrMalformedID)

	_, err = s.Platforms.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Games.Update(ctx, "12345", store.Fields{"name": "x"})
	assert.ErrorIs(t, err, store.ErrMalformedID)

	_, err = s.Games.Delete(ctx, uuid.NewString())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestNonCanonicalIDsAreMalformed(t *testing.T) {
	ctx := context.Background()
	s := dbtest.Store(t)

	platform := &models.Platform{Name: "Saturn", Creator: "Sega", Year: 1994}
	require.NoError(t, s.Platforms.Create(ctx, platform))
	u := uuid.MustParse(platform.ID)

	for _, id := range []string{
		strings.ToUpper(platform.ID),
		"{" + platform.ID + "}",
		"urn:uuid:" + platform.ID,
		strings.ReplaceAll(platform.ID, "-", ""),
	} {
		assert.False(t, store.ValidID(id), id)
		_, err := s.Platforms.GetByID(ctx, id)
		assert.ErrorIs(t, err, store.ErrMalformedID, id)
	}

	assert.True(t, store.ValidID(u.String()))
	got, err := s.Platforms.GetByID(ctx, u.String())
	require.NoError(t, err)
	assert.Equal(t, "Saturn", got.Name)
}

func TestPlatformCRUD(t *testing.T) {
	ctx := context.Background()
	s := dbtest.Store(t)

	platform := &models.Platform{Name: "Playstation", Creator: "Sony Computer Entertainment", Year: 1994}
	require.NoError(t, s.Platforms.Create(ctx, platform))
	require.True(t, store.ValidID(platform.ID), "expected uuid assigned, got %q", platform.ID)

	got, err := s.Platforms.GetByID(ctx, platform.ID)
	require.NoError(t, err)
	assert.Equal(t, "Playstation", got.Name)
	assert.Empty(t, got.Games)

	updated, err := s.Platforms.Update(ctx, platform.ID, store.Fields{
		"name":  "PlayStation",
		"games": datatypes.JSONSlice[string]{"a", "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, "PlayStation", updated.Name)
	assert.Equal(t, "Sony Computer Entertainment", updated.Creator)
	assert.Equal(t, []string{"a", "b"}, []string(updated.Games))

	deleted, err := s.Platforms.Delete(ctx, platform.ID)
	require.NoError(t, err)
	assert.Equal(t, platform.ID, deleted.ID)

	_, err = s.Platforms.GetByID(ctx, platform.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetAllScopes(t *testing.T) {
	ctx := context.Background()
	s := dbtest.Store(t)

	ps := &models.Platform{Name: "Playstation", Creator: "Sony", Year: 1994}
	neo := &models.Platform{Name: "Neo Geo", Creator: "SNK", Year: 1990}
	require.NoError(t, s.Platforms.Create(ctx, ps))
	require.NoError(t, s.Platforms.Create(ctx, neo))

	for _, g := range []*models.Game{
		{Name: "Crash Bandicoot", PlatformID: ps.ID, Year: 1996, Developers: []string{"Naughty Dog"}},
		{Name: "Baseball Stars 2", PlatformID: neo.ID, Year: 1992, Developers: []string{"SNK"}},
		{Name: "Neo Turf Masters", PlatformID: neo.ID, Year: 1996, Developers: []string{"Nazca"}},
	} {
		require.NoError(t, s.Games.Create(ctx, g))
	}

	all, err := s.Games.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	onNeo, err := s.Games.GetAll(ctx, store.Where("platform_id", neo.ID))
	require.NoError(t, err)
	assert.Len(t, onNeo, 2)

	matching, err := s.Games.GetAll(ctx, store.Contains("name", "TURF"))
	require.NoError(t, err)
	require.Len(t, matching, 1)
	assert.Equal(t, "Neo Turf Masters", matching[0].Name)

	n, err := s.Games.Count(ctx, store.Where("platform_id", ps.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	byID, err := s.Platforms.GetAll(ctx, store.IDIn([]string{neo.ID}))
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, "Neo Geo", byID[0].Name)
}

func TestUniqueIndexesReportDuplicates(t *testing.T) {
	ctx := context.Background()
	s := dbtest.Store(t)

	require.NoError(t, s.Users.Create(ctx, &models.User{Username: "mario", PasswordHash: "x", Role: models.RoleMember}))
	err := s.Users.Create(ctx, &models.User{Username: "mario", PasswordHash: "y", Role: models.RoleMember})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	found, err := s.Users.FindByUsername(ctx, "mario")
	require.NoError(t, err)
	assert.Equal(t, "x", found.PasswordHash)

	userID, gameID := uuid.NewString(), uuid.NewString()
	require.NoError(t, s.Entries.Create(ctx, &models.CollectionEntry{UserID: userID, GameID: gameID, Status: models.StatusBeaten}))
	err = s.Entries.Create(ctx, &models.CollectionEntry{UserID: userID, GameID: gameID, Status: models.StatusCompleted})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	owned, err := s.Entries.FindOwned(ctx, userID, gameID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBeaten, owned.Status)
}

func TestTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	s := dbtest.Store(t)
	boom := errors.New("boom")

	err := s.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.Platforms.Create(ctx, &models.Platform{Name: "Dreamcast", Creator: "Sega", Year: 1998}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := s.Platforms.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
