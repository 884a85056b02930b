package handlers

import (
	"context"

	"github.com/eerojala/My-video-game-collection/models"
	"github.com/eerojala/My-video-game-collection/store"
)

// byID loads the rows for ids in one query. Ids without a row are absent
// from the map.
func byID[T any](ctx context.Context, repo *store.Repository[T], ids []string, key func(*T) string) (map[string]*T, error) {
	out := make(map[string]*T, len(ids))
	wanted := unique(ids)
	if len(wanted) == 0 {
		return out, nil
	}
	items, err := repo.GetAll(ctx, store.IDIn(wanted))
	if err != nil {
		return nil, err
	}
	for i := range items {
		out[key(&items[i])] = &items[i]
	}
	return out, nil
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || !store.ValidID(id) {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (h *Handler) platformsByID(ctx context.Context, ids []string) (map[string]*models.Platform, error) {
	return byID(ctx, h.store.Platforms, ids, func(p *models.Platform) string { return p.ID })
}

func (h *Handler) gamesByID(ctx context.Context, ids []string) (map[string]*models.Game, error) {
	return byID(ctx, h.store.Games, ids, func(g *models.Game) string { return g.ID })
}

func (h *Handler) usersByID(ctx context.Context, ids []string) (map[string]*models.User, error) {
	return byID(ctx, h.store.Users.Repository, ids, func(u *models.User) string { return u.ID })
}

// platformOf returns nil when the game's platform is gone.
func (h *Handler) platformOf(ctx context.Context, game *models.Game) (*models.Platform, error) {
	platforms, err := h.platformsByID(ctx, []string{game.PlatformID})
	if err != nil {
		return nil, err
	}
	return platforms[game.PlatformID], nil
}

func (h *Handler) entryView(ctx context.Context, entry *models.CollectionEntry) (models.EntryView, error) {
	views, err := h.entryViews(ctx, []models.CollectionEntry{*entry})
	if err != nil {
		return models.EntryView{}, err
	}
	return views[0], nil
}

func (h *Handler) entryViews(ctx context.Context, entries []models.CollectionEntry) ([]models.EntryView, error) {
	userIDs := make([]string, 0, len(entries))
	gameIDs := make([]string, 0, len(entries))
	for _, e := range entries {
		userIDs = append(userIDs, e.UserID)
		gameIDs = append(gameIDs, e.GameID)
	}
	users, err := h.usersByID(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	games, err := h.gamesByID(ctx, gameIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.EntryView, 0, len(entries))
	for i := range entries {
		views = append(views, entries[i].View(users[entries[i].UserID], games[entries[i].GameID]))
	}
	return views, nil
}
