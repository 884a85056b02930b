package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/eerojala/My-video-game-collection/apperr"
	"github.com/eerojala/My-video-game-collection/auth"
	"github.com/eerojala/My-video-game-collection/cache"
	"github.com/eerojala/My-video-game-collection/integrity"
	"github.com/eerojala/My-video-game-collection/models"
	"github.com/gin-gonic/gin"
)

var errPlatformMissing = apperr.Validation("No platform found matching given platform id", []apperr.Violation{
	{Field: "platform", Reason: "does not exist"},
})

func (h *Handler) GetGames(c *gin.Context) {
	scopes, key, err := gameFilters(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	cachedJSON(h, c, cache.CatalogKey(key...), func(ctx context.Context) ([]models.GameView, error) {
		games, err := h.store.Games.GetAll(ctx, scopes...)
		if err != nil {
			return nil, err
		}
		platformIDs := make([]string, 0, len(games))
		for _, g := range games {
			platformIDs = append(platformIDs, g.PlatformID)
		}
		platforms, err := h.platformsByID(ctx, platformIDs)
		if err != nil {
			return nil, err
		}
		views := make([]models.GameView, 0, len(games))
		for i := range games {
			views = append(views, games[i].View(platforms[games[i].PlatformID]))
		}
		return views, nil
	})
}

func (h *Handler) GetGame(c *gin.Context) {
	id := c.Param("id")
	cachedJSON(h, c, cache.CatalogKey("games", id), func(ctx context.Context) (models.GameView, error) {
		game, err := h.store.Games.GetByID(ctx, id)
		if err != nil {
			return models.GameView{}, gameMessages.lookup(err)
		}
		platform, err := h.platformOf(ctx, game)
		if err != nil {
			return models.GameView{}, err
		}
		return game.View(platform), nil
	})
}

func (h *Handler) CreateGame(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := h.authorize(c, auth.ResourceGames, auth.ActionWrite, "Must be logged in as admin to post a new game"); err != nil {
		h.fail(c, err)
		return
	}

	var input models.GameInput
	if err := bind(c, &input, gameMessages.invalid); err != nil {
		h.fail(c, err)
		return
	}

	game := input.Game()
	if err := h.coord.CreateGame(ctx, &game); err != nil {
		h.fail(c, gameWriteError(err))
		return
	}
	h.invalidateCatalog(ctx)

	h.respondGame(c, &game)
}

// UpdateGame replaces every field of the game. A new platform moves the game
// to that platform's list.
func (h *Handler) UpdateGame(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := h.authorize(c, auth.ResourceGames, auth.ActionWrite, "Must be logged in as admin to update a game"); err != nil {
		h.fail(c, err)
		return
	}
	if _, err := h.store.Games.GetByID(ctx, id); err != nil {
		h.fail(c, gameMessages.lookup(err))
		return
	}

	var input models.GameInput
	if err := bind(c, &input, gameMessages.invalid); err != nil {
		h.fail(c, err)
		return
	}

	game, err := h.coord.UpdateGame(ctx, id, input.Game())
	if err != nil {
		h.fail(c, gameWriteError(err))
		return
	}
	h.invalidateCatalog(ctx)

	h.respondGame(c, game)
}

// DeleteGame also removes the game from every collection holding it.
func (h *Handler) DeleteGame(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := h.authorize(c, auth.ResourceGames, auth.ActionWrite, "Must be logged in as admin to delete a game"); err != nil {
		h.fail(c, err)
		return
	}

	if _, err := h.coord.DeleteGame(ctx, c.Param("id")); err != nil {
		h.fail(c, gameMessages.lookup(err))
		return
	}
	h.invalidateCatalog(ctx)

	c.Status(http.StatusNoContent)
}

func (h *Handler) respondGame(c *gin.Context, game *models.Game) {
	platform, err := h.platformOf(c.Request.Context(), game)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, game.View(platform))
}

func gameWriteError(err error) error {
	if errors.Is(err, integrity.ErrPlatformMissing) {
		return errPlatformMissing
	}
	return gameMessages.lookup(err)
}
