package bootstrap

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"reservation-engine/internal/pkg/config"
	"reservation-engine/internal/usecase/commands"

	"go.uber.org/fx"
)

var JobsModule = fx.Module("jobs",
	fx.Invoke(StartJobs),
)

type periodicJob struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) error
}

// StartJobs drives the expiry sweep and the outbox relay on their configured
// intervals. A non-positive interval disables the job.
func StartJobs(lc fx.Lifecycle, cfg config.Config, cmds *commands.ReservationCommands, relay *commands.OutboxRelay, logger *slog.Logger) {
	jobs := []periodicJob{
		{
			name:     "expiry_sweep",
			interval: cfg.Sweep.Interval,
			run: func(ctx context.Context) error {
				_, err := cmds.SweepExpired(ctx, cfg.Sweep.BatchSize, cfg.Sweep.Workers)
				return err
			},
		},
		{
			name:     "outbox_relay",
			interval: cfg.Outbox.Interval,
			run: func(ctx context.Context) error {
				_, err := relay.RelayOnce(ctx)
				return err
			},
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			for _, job := range jobs {
				if job.interval <= 0 {
					logger.Info("job disabled", "job", job.name)
					continue
				}
				wg.Add(1)
				go func() {
					defer wg.Done()
					runPeriodic(ctx, logger, job)
				}()
			}
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			wg.Wait()
			return nil
		},
	})
}

func runPeriodic(ctx context.Context, logger *slog.Logger, job periodicJob) {
	ticker := time.NewTicker(job.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := job.run(ctx); err != nil && ctx.Err() == nil {
				logger.ErrorContext(ctx, "periodic job failed", "job", job.name, "error", err)
			}
		}
	}
}
