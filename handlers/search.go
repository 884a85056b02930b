package handlers

import (
	"strings"

	"github.com/eerojala/My-video-game-collection/apperr"
	"github.com/eerojala/My-video-game-collection/store"
	"github.com/gin-gonic/gin"
)

// gameFilters reads ?platform=<id>&q=<text> from GET /api/games.
func gameFilters(c *gin.Context) (scopes []store.Scope, key []string, err error) {
	platform := c.Query("platform")
	query := strings.TrimSpace(c.Query("q"))

	if platform != "" {
		if !store.ValidID(platform) {
			return nil, nil, apperr.MalformedID(platformMessages.malformed)
		}
		scopes = append(scopes, store.Where("platform_id", platform))
	}
	if query != "" {
		scopes = append(scopes, store.Contains("name", query))
	}
	return scopes, []string{"games", "list", "platform=" + platform, "q=" + strings.ToLower(query)}, nil
}

// entryFilters reads ?user=<id>&game=<id> from GET /api/usergames.
func entryFilters(c *gin.Context) ([]store.Scope, error) {
	var scopes []store.Scope
	if user := c.Query("user"); user != "" {
		if !store.ValidID(user) {
			return nil, apperr.MalformedID(userMessages.malformed)
		}
		scopes = append(scopes, store.Where("user_id", user))
	}
	if game := c.Query("game"); game != "" {
		if !store.ValidID(game) {
			return nil, apperr.MalformedID(gameMessages.malformed)
		}
		scopes = append(scopes, store.Where("game_id", game))
	}
	return scopes, nil
}
