// Package integrity keeps the denormalized id lists (a platform's games, a
// user's owned entries) consistent with the rows they point at. Every
// operation runs in one store transaction.
package integrity

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/eerojala/My-video-game-collection/models"
	"github.com/eerojala/My-video-game-collection/store"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

var (
	ErrPlatformMissing = errors.New("integrity: referenced platform does not exist")
	ErrGameMissing     = errors.New("integrity: referenced game does not exist")
	ErrUserMissing     = errors.New("integrity: referenced user does not exist")
	ErrAlreadyOwned    = errors.New("integrity: user already owns game")
)

type Coordinator struct {
	store *store.Store
	log   *logrus.Logger
}

func New(s *store.Store, log *logrus.Logger) *Coordinator {
	return &Coordinator{store: s, log: log}
}

// CreateGame stores game and appends its id to the platform's list.
func (c *Coordinator) CreateGame(ctx context.Context, game *models.Game) error {
	return c.store.Transaction(ctx, func(tx *store.Store) error {
		platform, err := tx.Platforms.GetByID(ctx, game.PlatformID)
		if err != nil {
			return missing(err, ErrPlatformMissing)
		}
		if err := tx.Games.Create(ctx, game); err != nil {
			return fmt.Errorf("create game: %w", err)
		}
		return attachGame(ctx, tx, platform, game.ID)
	})
}

// UpdateGame replaces the editable fields of a game. When the platform
// changes the id moves from the old platform's list to the new one.
func (c *Coordinator) UpdateGame(ctx context.Context, id string, changes models.Game) (*models.Game, error) {
	var updated *models.Game
	err := c.store.Transaction(ctx, func(tx *store.Store) error {
		current, err := tx.Games.GetByID(ctx, id)
		if err != nil {
			return err
		}
		platform, err := tx.Platforms.GetByID(ctx, changes.PlatformID)
		if err != nil {
			return missing(err, ErrPlatformMissing)
		}

		updated, err = tx.Games.Update(ctx, id, store.Fields{
			"name":        changes.Name,
			"platform_id": changes.PlatformID,
			"year":        changes.Year,
			"developers":  changes.Developers,
			"publishers":  changes.Publishers,
		})
		if err != nil {
			return fmt.Errorf("update game: %w", err)
		}

		if current.PlatformID != platform.ID {
			if err := detachGame(ctx, tx, current.PlatformID, id); err != nil {
				return err
			}
			c.log.WithFields(logrus.Fields{
				"game_id": id,
				"from":    current.PlatformID,
				"to":      platform.ID,
			}).Debug("game moved between platforms")
		}
		return attachGame(ctx, tx, platform, id)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteGame removes a game, its id from its platform and every collection
// entry that references it.
func (c *Coordinator) DeleteGame(ctx context.Context, id string) (*models.Game, error) {
	var deleted *models.Game
	err := c.store.Transaction(ctx, func(tx *store.Store) error {
		game, err := tx.Games.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := detachGame(ctx, tx, game.PlatformID, id); err != nil {
			return err
		}
		if err := c.dropGame(ctx, tx, game); err != nil {
			return err
		}
		deleted = game
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// DeletePlatform removes a platform together with all of its games.
func (c *Coordinator) DeletePlatform(ctx context.Context, id string) (*models.Platform, error) {
	var deleted *models.Platform
	err := c.store.Transaction(ctx, func(tx *store.Store) error {
		platform, err := tx.Platforms.GetByID(ctx, id)
		if err != nil {
			return err
		}
		games, err := tx.Games.GetAll(ctx, store.Where("platform_id", id))
		if err != nil {
			return fmt.Errorf("list platform games: %w", err)
		}
		for i := range games {
			if err := c.dropGame(ctx, tx, &games[i]); err != nil {
				return err
			}
		}
		if _, err := tx.Platforms.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete platform: %w", err)
		}
		c.log.WithFields(logrus.Fields{
			"platform_id": id,
			"games":       len(games),
		}).Info("platform deleted with its games")
		deleted = platform
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// CreateEntry records that entry.UserID owns entry.GameID.
func (c *Coordinator) CreateEntry(ctx context.Context, entry *models.CollectionEntry) error {
	return c.store.Transaction(ctx, func(tx *store.Store) error {
		if _, err := tx.Games.GetByID(ctx, entry.GameID); err != nil {
			return missing(err, ErrGameMissing)
		}
		user, err := tx.Users.GetByID(ctx, entry.UserID)
		if err != nil {
			return missing(err, ErrUserMissing)
		}

		_, err = tx.Entries.FindOwned(ctx, entry.UserID, entry.GameID)
		switch {
		case err == nil:
			return ErrAlreadyOwned
		case !errors.Is(err, store.ErrNotFound):
			return fmt.Errorf("check ownership: %w", err)
		}

		if err := tx.Entries.Create(ctx, entry); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return ErrAlreadyOwned
			}
			return fmt.Errorf("create entry: %w", err)
		}
		_, err = tx.Users.Update(ctx, user.ID, store.Fields{
			"owned_games": withID(user.OwnedGames, entry.ID),
		})
		if err != nil {
			return fmt.Errorf("append owned game: %w", err)
		}
		return nil
	})
}

// DeleteEntry removes an entry and its id from the owner's list.
func (c *Coordinator) DeleteEntry(ctx context.Context, id string) (*models.CollectionEntry, error) {
	var deleted *models.CollectionEntry
	err := c.store.Transaction(ctx, func(tx *store.Store) error {
		entry, err := tx.Entries.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := dropEntry(ctx, tx, entry); err != nil {
			return err
		}
		deleted = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// dropGame deletes a game and its entries. The platform list is left to the
// caller.
func (c *Coordinator) dropGame(ctx context.Context, tx *store.Store, game *models.Game) error {
	entries, err := tx.Entries.GetAll(ctx, store.Where("game_id", game.ID))
	if err != nil {
		return fmt.Errorf("list entries of game %s: %w", game.ID, err)
	}
	for i := range entries {
		if err := dropEntry(ctx, tx, &entries[i]); err != nil {
			return err
		}
	}
	if _, err := tx.Games.Delete(ctx, game.ID); err != nil {
		return fmt.Errorf("delete game %s: %w", game.ID, err)
	}
	if len(entries) > 0 {
		c.log.WithFields(logrus.Fields{
			"game_id": game.ID,
			"entries": len(entries),
		}).Debug("cascaded collection entries")
	}
	return nil
}

func dropEntry(ctx context.Context, tx *store.Store, entry *models.CollectionEntry) error {
	user, err := tx.Users.GetByID(ctx, entry.UserID)
	switch {
	case err == nil:
		_, err = tx.Users.Update(ctx, user.ID, store.Fields{
			"owned_games": withoutID(user.OwnedGames, entry.ID),
		})
		if err != nil {
			return fmt.Errorf("remove owned game: %w", err)
		}
	case !errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("load entry owner: %w", err)
	}
	if _, err := tx.Entries.Delete(ctx, entry.ID); err != nil {
		return fmt.Errorf("delete entry %s: %w", entry.ID, err)
	}
	return nil
}

func attachGame(ctx context.Context, tx *store.Store, platform *models.Platform, gameID string) error {
	_, err := tx.Platforms.Update(ctx, platform.ID, store.Fields{
		"games": withID(platform.Games, gameID),
	})
	if err != nil {
		return fmt.Errorf("append game to platform: %w", err)
	}
	return nil
}

// detachGame tolerates a platform that is already gone.
func detachGame(ctx context.Context, tx *store.Store, platformID, gameID string) error {
	platform, err := tx.Platforms.GetByID(ctx, platformID)
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrMalformedID) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load platform: %w", err)
	}
	_, err = tx.Platforms.Update(ctx, platformID, store.Fields{
		"games": withoutID(platform.Games, gameID),
	})
	if err != nil {
		return fmt.Errorf("remove game from platform: %w", err)
	}
	return nil
}

// missing maps a failed reference lookup onto sentinel. Malformed ids count
// as missing references.
func missing(err, sentinel error) error {
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrMalformedID) {
		return sentinel
	}
	return err
}

func withID(list []string, id string) datatypes.JSONSlice[string] {
	out := slices.Clone(list)
	if !slices.Contains(out, id) {
		out = append(out, id)
	}
	return datatypes.JSONSlice[string](out)
}

func withoutID(list []string, id string) datatypes.JSONSlice[string] {
	out := make([]string, 0, len(list))
	for _, existing := range list {
		if existing != id {
			out = append(out, existing)
		}
	}
	return datatypes.JSONSlice[string](out)
}
