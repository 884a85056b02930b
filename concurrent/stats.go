// Package concurrent computes catalog statistics with independent queries
// fanned out over goroutines.
package concurrent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/eerojala/My-video-game-collection/models"
	"github.com/eerojala/My-video-game-collection/store"
)

// CatalogStats is served by GET /api/stats and feeds the catalog gauges.
type CatalogStats struct {
	Platforms   int64                   `json:"platforms"`
	Games       int64                   `json:"games"`
	Users       int64                   `json:"users"`
	Admins      int64                   `json:"admins"`
	Entries     int64                   `json:"userGames"`
	ByStatus    map[models.Status]int64 `json:"byStatus"`
	RecentGames int64                   `json:"recentGames"`
	TopPlatform *models.PlatformSummary `json:"topPlatform,omitempty"`
}

// RecentWindow bounds what RecentGames counts.
const RecentWindow = 30 * 24 * time.Hour

var statuses = []models.Status{models.StatusCompleted, models.StatusBeaten, models.StatusUnfinished}

// CalculateCatalogStats runs every count in its own goroutine and returns
// the first error any of them hit.
func CalculateCatalogStats(ctx context.Context, s *store.Store) (*CatalogStats, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stats := &CatalogStats{ByStatus: make(map[models.Status]int64, len(statuses))}
	byStatus := make([]int64, len(statuses))

	var tasks []func() error
	count := func(name string, dest *int64, fn func() (int64, error)) {
		tasks = append(tasks, func() error {
			n, err := fn()
			if err != nil {
				return fmt.Errorf("%s count: %w", name, err)
			}
			*dest = n
			return nil
		})
	}

	count("platforms", &stats.Platforms, func() (int64, error) { return s.Platforms.Count(ctx) })
	count("games", &stats.Games, func() (int64, error) { return s.Games.Count(ctx) })
	count("users", &stats.Users, func() (int64, error) { return s.Users.Count(ctx) })
	count("admins", &stats.Admins, func() (int64, error) {
		return s.Users.Count(ctx, store.Where("role", models.RoleAdmin))
	})
	count("user games", &stats.Entries, func() (int64, error) { return s.Entries.Count(ctx) })
	count("recent games", &stats.RecentGames, func() (int64, error) {
		since := time.Now().Add(-RecentWindow)
		return s.Games.Count(ctx, store.CreatedAfter(since))
	})
	for i, status := range statuses {
		count(string(status), &byStatus[i], func() (int64, error) {
			return s.Entries.Count(ctx, store.Where("status", status))
		})
	}

	// The platform lists already hold each platform's game ids.
	tasks = append(tasks, func() error {
		platforms, err := s.Platforms.GetAll(ctx)
		if err != nil {
			return fmt.Errorf("top platform: %w", err)
		}
		var top *models.Platform
		for i := range platforms {
			if len(platforms[i].Games) == 0 {
				continue
			}
			if top == nil || len(platforms[i].Games) > len(top.Games) {
				top = &platforms[i]
			}
		}
		if top != nil {
			summary := top.Summary()
			stats.TopPlatform = &summary
		}
		return nil
	})

	// One slot per task, so no sender ever blocks.
	errChan := make(chan error, len(tasks))
	var wg sync.WaitGroup
	for _, task := range tasks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := task(); err != nil {
				errChan <- err
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
		close(errChan)
	}()

	select {
	case <-done:
		if err, ok := <-errChan; ok {
			return nil, err
		}
		for i, status := range statuses {
			stats.ByStatus[status] = byStatus[i]
		}
		return stats, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("calculating stats: %w", ctx.Err())
	}
}
