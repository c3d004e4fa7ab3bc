package lifecycleimpl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/adhocore/gronx"
	"github.com/go-co-op/gocron/v2"
)

const (
	sweepTimeout = 10 * time.Minute
	purgeTimeout = 5 * time.Minute
)

// sweepDefinition picks the cron expression when one is configured and is a
// valid five-field spec, the fixed interval otherwise.
func (s *Impl) sweepDefinition() (gocron.JobDefinition, string) {
	if expr := s.Config.Lifecycle.SweepCron; expr != "" {
		if len(strings.Fields(expr)) == 5 && gronx.New().IsValid(expr) {
			return gocron.CronJob(expr, false), expr
		}
		s.Logger.Warn("Invalid LIFECYCLE_SWEEP_CRON, falling back to interval", "cron", expr)
	}

	interval := s.Config.Lifecycle.SweepInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return gocron.DurationJob(interval), interval.String()
}

// ScheduleSweep starts the periodic fallback sweep. It stops with ctx.
func (s *Impl) ScheduleSweep(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create sweep scheduler: %w", err)
	}

	definition, every := s.sweepDefinition()
	_, err = scheduler.NewJob(
		definition,
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				s.Logger.Info("Context cancelled, stopping sweep job")
				return
			}

			sweepCtx, cancel := context.WithTimeout(ctx, sweepTimeout)
			defer cancel()

			if _, err := s.Sweep(sweepCtx); err != nil {
				s.Logger.Error("Scheduled sweep failed", "error", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}

	scheduler.Start()
	s.Logger.Info("Sweep scheduled", "every", every)

	go func() {
		<-ctx.Done()
		s.Logger.Info("Stopping sweep scheduler")
		if err := scheduler.Shutdown(); err != nil {
			s.Logger.Error("Failed to shut down sweep scheduler", "error", err)
		}
	}()

	return nil
}

// SchedulePurge sets up a daily job that deletes old tombstones and the
// expired stories nothing points at any more.
func (s *Impl) SchedulePurge(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create purge scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DailyJob(
			1,
			gocron.NewAtTimes(gocron.NewAtTime(s.Config.Lifecycle.PurgeHour, 0, 0)),
		),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				s.Logger.Info("Context cancelled, stopping purge job")
				return
			}

			purgeCtx, cancel := context.WithTimeout(ctx, purgeTimeout)
			defer cancel()

			s.Purge(purgeCtx)
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule purge: %w", err)
	}

	scheduler.Start()

	go func() {
		<-ctx.Done()
		s.Logger.Info("Stopping purge scheduler")
		if err := scheduler.Shutdown(); err != nil {
			s.Logger.Error("Failed to shut down purge scheduler", "error", err)
		}
	}()

	return nil
}

// Purge removes tombstones older than the retention window, then the story
// scopes they belonged to.
func (s *Impl) Purge(ctx context.Context) {
	retention := s.Config.Lifecycle.TombstoneRetention

	items, err := s.Content.PurgeTombstones(ctx, retention)
	if err != nil {
		s.Logger.Error("Failed to purge tombstones", "error", err)
		return
	}

	scopes, err := s.Scopes.PurgeExpired(ctx, retention)
	if err != nil {
		s.Logger.Error("Failed to purge expired scopes", "error", err)
		return
	}

	s.Logger.Info("Purge completed", "tombstones_deleted", items, "scopes_deleted", scopes)
}
