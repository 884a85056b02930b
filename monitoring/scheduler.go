package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/eerojala/My-video-game-collection/concurrent"
	"github.com/eerojala/My-video-game-collection/store"
	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
)

// StatsJob keeps the catalog gauges current.
type StatsJob struct {
	sched   gocron.Scheduler
	store   *store.Store
	metrics *Metrics
	log     *logrus.Logger
}

func NewStatsJob(s *store.Store, m *Metrics, log *logrus.Logger) *StatsJob {
	return &StatsJob{store: s, metrics: m, log: log}
}

// Refresh recomputes the catalog stats once.
func (j *StatsJob) Refresh(ctx context.Context) error {
	stats, err := concurrent.CalculateCatalogStats(ctx, j.store)
	if err != nil {
		return err
	}
	j.metrics.ObserveCatalog(stats)
	return nil
}

// Start refreshes immediately and then every interval.
func (j *StatsJob) Start(ctx context.Context, interval time.Duration) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := j.Refresh(ctx); err != nil {
				j.log.WithError(err).Warn("[Scheduler] catalog stats refresh failed")
			}
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("schedule stats job: %w", err)
	}

	sched.Start()
	j.sched = sched
	return nil
}

func (j *StatsJob) Stop() error {
	if j.sched == nil {
		return nil
	}
	return j.sched.Shutdown()
}
