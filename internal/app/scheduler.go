package app

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
)

// StartScheduler runs the reporting cycle on the configured cron schedule,
// blocking until ctx is cancelled. Cycle failures are logged and the
// schedule keeps running; the next tick retries from scratch.
func (a *App) StartScheduler(ctx context.Context) error {
	schedule := a.Config.Report.Schedule

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if _, err := a.RunCycle(ctx, CycleOptions{}); err != nil {
			a.Logger.Error().Err(err).Msg("Scheduled cycle failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	c.Start()
	a.Logger.Info().Str("schedule", schedule).Msg("Scheduler started")

	<-ctx.Done()

	stopCtx := c.Stop()
	<-stopCtx.Done() // wait for any in-flight cycle to finish
	a.Logger.Info().Msg("Scheduler stopped")

	return nil
}
