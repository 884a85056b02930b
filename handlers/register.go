package handlers

import (
	"errors"
	"net/http"

	"github.com/eerojala/My-video-game-collection/apperr"
	"github.com/eerojala/My-video-game-collection/auth"
	"github.com/eerojala/My-video-game-collection/models"
	"github.com/eerojala/My-video-game-collection/store"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// Register is the open signup. The role is always Member whatever the body
// says.
func (h *Handler) Register(c *gin.Context) {
	ctx := c.Request.Context()

	var input models.UserInput
	if err := bind(c, &input, userMessages.invalid); err != nil {
		h.fail(c, err)
		return
	}

	_, err := h.store.Users.FindByUsername(ctx, input.Username)
	switch {
	case err == nil:
		h.fail(c, apperr.Conflict(userMessages.invalid))
		return
	case !errors.Is(err, store.ErrNotFound):
		h.fail(c, err)
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	user := models.User{
		Username:     input.Username,
		PasswordHash: hash,
		Role:         models.RoleMember,
		OwnedGames:   datatypes.JSONSlice[string]{},
	}
	if err := h.store.Users.Create(ctx, &user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			err = apperr.Conflict(userMessages.invalid)
		}
		h.fail(c, err)
		return
	}

	h.log.WithField("user_id", user.ID).Info("user registered")
	c.JSON(http.StatusOK, user.View())
}
