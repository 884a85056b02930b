package store

import (
	"context"

	"github.com/eerojala/My-video-game-collection/models"
	"gorm.io/gorm"
)

// Store bundles one repository per entity kind over the same handle.
type Store struct {
	db        *gorm.DB
	Platforms *Repository[models.Platform]
	Games     *Repository[models.Game]
	Users     *UserRepository
	Entries   *EntryRepository
}

func New(db *gorm.DB) *Store {
	return &Store{
		db:        db,
		Platforms: NewRepository[models.Platform](db),
		Games:     NewRepository[models.Game](db),
		Users:     &UserRepository{Repository: NewRepository[models.User](db)},
		Entries:   &EntryRepository{Repository: NewRepository[models.CollectionEntry](db)},
	}
}

// Transaction runs fn against a Store bound to one database transaction.
// Returning an error from fn rolls every write back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// Migrate creates or updates the tables for every entity kind.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Platform{}, &models.Game{}, &models.User{}, &models.CollectionEntry{})
}

type UserRepository struct {
	*Repository[models.User]
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

type EntryRepository struct {
	*Repository[models.CollectionEntry]
}

// FindOwned returns the entry recording that userID owns gameID.
func (r *EntryRepository) FindOwned(ctx context.Context, userID, gameID string) (*models.CollectionEntry, error) {
	var entry models.CollectionEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND game_id = ?", userID, gameID).
		First(&entry).Error
	if err != nil {
		return nil, translate(err)
	}
	return &entry, nil
}
