package handlers

import (
	"net/http"

	"github.com/eerojala/My-video-game-collection/models"
	"github.com/gin-gonic/gin"
)

func (h *Handler) GetUsers(c *gin.Context) {
	users, err := h.store.Users.GetAll(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	views := make([]models.UserView, 0, len(users))
	for i := range users {
		views = append(views, users[i].View())
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) GetUserByID(c *gin.Context) {
	user, err := h.store.Users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, userMessages.lookup(err))
		return
	}
	c.JSON(http.StatusOK, user.View())
}
