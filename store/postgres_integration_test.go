//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/eerojala/My-video-game-collection/models"
	"github.com/eerojala/My-video-game-collection/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openPostgres(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("collection_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	conn, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, store.Migrate(conn))
	return store.New(conn)
}

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()
	s := openPostgres(t)

	year := 2000
	p := models.PlatformInput{Name: "PlayStation 2", Creator: "Sony", Year: &year}.Platform()
	require.NoError(t, s.Platforms.Create(ctx, &p))

	_, err := s.Platforms.Update(ctx, p.ID, store.Fields{"games": datatypes.JSONSlice[string]{"a", "b"}})
	require.NoError(t, err)
	got, err := s.Platforms.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, []string(got.Games))

	found, err := s.Platforms.GetAll(ctx, store.Contains("name", "playstation"))
	require.NoError(t, err)
	assert.Len(t, found, 1)

	u1 := &models.User{Username: "dup", PasswordHash: "x", Role: models.RoleMember}
	u2 := &models.User{Username: "dup", PasswordHash: "y", Role: models.RoleMember}
	require.NoError(t, s.Users.Create(ctx, u1))
	assert.ErrorIs(t, s.Users.Create(ctx, u2), store.ErrDuplicate)

	_, err = s.Users.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, store.ErrMalformedID)
}

func TestPostgresTransactionRollback(t *testing.T) {
	ctx := context.Background()
	s := openPostgres(t)

	year := 2001
	err := s.Transaction(ctx, func(tx *store.Store) error {
		p := models.PlatformInput{Name: "Xbox", Creator: "Microsoft", Year: &year}.Platform()
		if err := tx.Platforms.Create(ctx, &p); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	n, err := s.Platforms.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
