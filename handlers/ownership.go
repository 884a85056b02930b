package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/eerojala/My-video-game-collection/apperr"
	"github.com/eerojala/My-video-game-collection/auth"
	"github.com/eerojala/My-video-game-collection/integrity"
	"github.com/eerojala/My-video-game-collection/middleware"
	"github.com/eerojala/My-video-game-collection/models"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"
)

const (
	mustOwnToUpdate = "Must be logged in as the owner or an admin to update a user game"
	mustOwnToDelete = "Must be logged in as the owner or an admin to delete a user game"
)

// GetUserGames lists collection entries, optionally ?user= and ?game=.
func (h *Handler) GetUserGames(c *gin.Context) {
	ctx := c.Request.Context()
	scopes, err := entryFilters(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	entries, err := h.store.Entries.GetAll(ctx, scopes...)
	if err != nil {
		h.fail(c, err)
		return
	}
	views, err := h.entryViews(ctx, entries)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) GetUserGame(c *gin.Context) {
	ctx := c.Request.Context()
	entry, err := h.store.Entries.GetByID(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, entryMessages.lookup(err))
		return
	}
	h.respondEntry(c, entry)
}

// AddUserGame adds a game to the caller's collection. The owner always comes
// from the token.
func (h *Handler) AddUserGame(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := h.authorize(c, auth.ResourceUserGames, auth.ActionCreate, "Must be logged in to add a game to a collection")
	if err != nil {
		h.fail(c, err)
		return
	}

	var input models.EntryInput
	if err := bind(c, &input, entryMessages.invalid); err != nil {
		h.fail(c, err)
		return
	}

	entry := models.CollectionEntry{
		UserID: user.ID,
		GameID: input.Game,
		Status: input.Status,
		Score:  input.Score,
	}
	err = h.coord.CreateEntry(ctx, &entry)
	switch {
	case errors.Is(err, integrity.ErrGameMissing):
		h.fail(c, apperr.Validation("No game found matching given game id", []apperr.Violation{
			{Field: "game", Reason: "does not exist"},
		}))
		return
	case errors.Is(err, integrity.ErrAlreadyOwned):
		h.fail(c, apperr.Conflict("Game already in the user's collection"))
		return
	case err != nil:
		h.fail(c, err)
		return
	}

	h.log.WithFields(logrus.Fields{"user_id": user.ID, "game_id": entry.GameID}).Info("game added to collection")
	h.respondEntry(c, &entry)
}

// UpdateUserGame changes status and score. The user and game of an entry
// never change.
func (h *Handler) UpdateUserGame(c *gin.Context) {
	ctx := c.Request.Context()
	entry, err := h.ownedEntry(c, mustOwnToUpdate)
	if err != nil {
		h.fail(c, err)
		return
	}

	var raw map[string]json.RawMessage
	if err := c.ShouldBindBodyWith(&raw, binding.JSON); err != nil {
		h.fail(c, apperr.Validation(entryMessages.invalid, []apperr.Violation{{Field: "body", Reason: "must be a JSON object"}}))
		return
	}
	var immutable []apperr.Violation
	for _, field := range []string{"user", "game"} {
		if _, ok := raw[field]; ok {
			immutable = append(immutable, apperr.Violation{Field: field, Reason: "cannot be changed"})
		}
	}
	if len(immutable) > 0 {
		h.fail(c, apperr.Validation("Cannot change the user or game of a user game", immutable))
		return
	}

	var input models.EntryUpdateInput
	if err := bind(c, &input, entryMessages.invalid); err != nil {
		h.fail(c, err)
		return
	}

	updated, err := h.store.Entries.Update(ctx, entry.ID, input.Fields())
	if err != nil {
		h.fail(c, entryMessages.lookup(err))
		return
	}
	h.respondEntry(c, updated)
}

func (h *Handler) DeleteUserGame(c *gin.Context) {
	ctx := c.Request.Context()
	entry, err := h.ownedEntry(c, mustOwnToDelete)
	if err != nil {
		h.fail(c, err)
		return
	}

	if _, err := h.coord.DeleteEntry(ctx, entry.ID); err != nil {
		h.fail(c, entryMessages.lookup(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// ownedEntry resolves the caller, loads the addressed entry and checks the
// caller owns it or is an admin.
func (h *Handler) ownedEntry(c *gin.Context, message string) (*models.CollectionEntry, error) {
	ctx := c.Request.Context()
	token := middleware.Token(c)
	callerID, ok := h.auth.ResolveIdentity(token)
	if !ok {
		return nil, apperr.Unauthorized(message)
	}
	c.Set(middleware.UserIDKey, callerID)

	entry, err := h.store.Entries.GetByID(ctx, c.Param("id"))
	if err != nil {
		return nil, entryMessages.lookup(err)
	}
	if !h.auth.IsOwnerOrAdmin(ctx, token, entry.UserID) {
		return nil, apperr.Forbidden(message)
	}
	return entry, nil
}

func (h *Handler) respondEntry(c *gin.Context, entry *models.CollectionEntry) {
	view, err := h.entryView(c.Request.Context(), entry)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

