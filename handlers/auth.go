package handlers

import (
	"errors"
	"net/http"

	"github.com/eerojala/My-video-game-collection/apperr"
	"github.com/eerojala/My-video-game-collection/auth"
	"github.com/eerojala/My-video-game-collection/middleware"
	"github.com/eerojala/My-video-game-collection/models"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const invalidCredentials = "Invalid username or password"

func (h *Handler) Login(c *gin.Context) {
	var input models.LoginInput
	if err := c.ShouldBindBodyWith(&input, binding.JSON); err != nil {
		h.metrics.RecordLogin(false)
		h.fail(c, apperr.Unauthorized(invalidCredentials))
		return
	}

	user, token, err := h.auth.Login(c.Request.Context(), input.Username, input.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		h.metrics.RecordLogin(false)
		h.fail(c, apperr.Unauthorized(invalidCredentials))
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	h.metrics.RecordLogin(true)
	c.Set(middleware.UserIDKey, user.ID)
	c.JSON(http.StatusOK, models.LoginView{
		Token:    token,
		Username: user.Username,
		ID:       user.ID,
		Role:     user.Role,
	})
}
