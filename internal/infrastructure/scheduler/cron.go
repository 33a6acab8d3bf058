// Package scheduler drives recurring background jobs off a cron expression.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"BlackGlass/internal/ports"
)

// Cron runs a single job on a cron schedule. Used to keep the feed cache
// warm so interactive queries mostly avoid network fetches.
type Cron struct {
	spec   string
	runner *cron.Cron
}

var _ ports.Scheduler = (*Cron)(nil)

// NewCron builds a scheduler from a cron expression ("@every 30m", "0 * * * *", ...).
func NewCron(spec string) *Cron {
	return &Cron{spec: spec}
}

// Start registers the job and begins the schedule.
func (c *Cron) Start(_ context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}
	if c.runner != nil {
		return nil
	}

	c.runner = cron.New()
	if _, err := c.runner.AddFunc(c.spec, func() { job(time.Now()) }); err != nil {
		c.runner = nil
		return fmt.Errorf("invalid cron expression %q: %w", c.spec, err)
	}

	c.runner.Start()
	return nil
}

// Stop halts the schedule, waiting for a running job to finish.
func (c *Cron) Stop(ctx context.Context) error {
	if c.runner == nil {
		return nil
	}

	stopped := c.runner.Stop()
	c.runner = nil

	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
