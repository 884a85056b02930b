package handlers

import (
	"context"
	"net/http"

	"github.com/eerojala/My-video-game-collection/auth"
	"github.com/eerojala/My-video-game-collection/cache"
	"github.com/eerojala/My-video-game-collection/models"
	"github.com/gin-gonic/gin"
)

// GetPlatforms lists platforms with their game ids.
func (h *Handler) GetPlatforms(c *gin.Context) {
	cachedJSON(h, c, cache.CatalogKey("platforms"), func(ctx context.Context) ([]models.PlatformView, error) {
		platforms, err := h.store.Platforms.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		views := make([]models.PlatformView, 0, len(platforms))
		for i := range platforms {
			views = append(views, platforms[i].View())
		}
		return views, nil
	})
}

// GetPlatform returns one platform with its games populated.
func (h *Handler) GetPlatform(c *gin.Context) {
	id := c.Param("id")
	cachedJSON(h, c, cache.CatalogKey("platforms", id), func(ctx context.Context) (models.PlatformDetailView, error) {
		platform, err := h.store.Platforms.GetByID(ctx, id)
		if err != nil {
			return models.PlatformDetailView{}, platformMessages.lookup(err)
		}
		games, err := h.gamesByID(ctx, platform.Games)
		if err != nil {
			return models.PlatformDetailView{}, err
		}
		return platform.DetailView(games), nil
	})
}

func (h *Handler) CreatePlatform(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := h.authorize(c, auth.ResourcePlatforms, auth.ActionWrite, "Must be logged in as admin to post a new platform"); err != nil {
		h.fail(c, err)
		return
	}

	var input models.PlatformInput
	if err := bind(c, &input, platformMessages.invalid); err != nil {
		h.fail(c, err)
		return
	}

	platform := input.Platform()
	if err := h.store.Platforms.Create(ctx, &platform); err != nil {
		h.fail(c, err)
		return
	}
	h.invalidateCatalog(ctx)

	h.log.WithField("platform_id", platform.ID).Info("platform created")
	c.JSON(http.StatusOK, platform.View())
}

// UpdatePlatform changes name, creator and year. The games list is only
// maintained by game writes.
func (h *Handler) UpdatePlatform(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := h.authorize(c, auth.ResourcePlatforms, auth.ActionWrite, "Must be logged in as admin to update a platform"); err != nil {
		h.fail(c, err)
		return
	}
	if _, err := h.store.Platforms.GetByID(ctx, id); err != nil {
		h.fail(c, platformMessages.lookup(err))
		return
	}

	var input models.PlatformInput
	if err := bind(c, &input, platformMessages.invalid); err != nil {
		h.fail(c, err)
		return
	}

	platform, err := h.store.Platforms.Update(ctx, id, input.Fields())
	if err != nil {
		h.fail(c, platformMessages.lookup(err))
		return
	}
	h.invalidateCatalog(ctx)

	c.JSON(http.StatusOK, platform.View())
}

// DeletePlatform deletes the platform and every game on it.
func (h *Handler) DeletePlatform(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := h.authorize(c, auth.ResourcePlatforms, auth.ActionWrite, "Must be logged in as admin to delete a platform"); err != nil {
		h.fail(c, err)
		return
	}

	if _, err := h.coord.DeletePlatform(ctx, c.Param("id")); err != nil {
		h.fail(c, platformMessages.lookup(err))
		return
	}
	h.invalidateCatalog(ctx)

	c.Status(http.StatusNoContent)
}
