package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"supplychain/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultTickPeriod is used when the job is created with a non-positive period.
const DefaultTickPeriod = time.Second

// periodSchedule fires at a fixed interval. Unlike cron.Every it keeps
// sub-second periods instead of rounding them up to a second.
type periodSchedule struct {
	period time.Duration
}

func (s periodSchedule) Next(t time.Time) time.Time {
	return t.Add(s.period)
}

// TrackingJob runs the tracking scheduler's tick on a fixed period. A tick
// that is still running when the next one is due causes that tick to be
// skipped.
type TrackingJob struct {
	handler *commands.TrackShipmentsCommandHandler
	period  time.Duration
	cron    *cron.Cron
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

func NewTrackingJob(handler *commands.TrackShipmentsCommandHandler, period time.Duration, logger *slog.Logger) *TrackingJob {
	if period <= 0 {
		period = DefaultTickPeriod
	}

	logger = logger.With("component", "tracking_job")
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelWarn))

	return &TrackingJob{
		handler: handler,
		period:  period,
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		logger: logger,
	}
}

// Start schedules the tick. Starting a running job is a no-op.
func (j *TrackingJob) Start() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	j.cron.Schedule(periodSchedule{period: j.period}, cron.FuncJob(func() { j.tick(ctx) }))

	j.cancel = cancel
	j.running = true
	j.cron.Start()

	j.logger.InfoContext(ctx, "Tracking job started", "period", j.period)
}

// Stop halts the schedule and waits for an in-flight tick to return.
func (j *TrackingJob) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.running {
		return
	}

	j.cancel()
	<-j.cron.Stop().Done()
	for _, entry := range j.cron.Entries() {
		j.cron.Remove(entry.ID)
	}
	j.running = false

	j.logger.InfoContext(context.Background(), "Tracking job stopped")
}

// RunOnce executes a single tick outside the schedule.
func (j *TrackingJob) RunOnce(ctx context.Context) error {
	return j.handler.Handle(ctx, commands.NewTrackShipmentsCommand())
}

func (j *TrackingJob) Running() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}

func (j *TrackingJob) Period() time.Duration {
	return j.period
}

func (j *TrackingJob) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := j.RunOnce(ctx); err != nil {
		j.logger.ErrorContext(ctx, "Tracking tick failed", "error", err)
	}
}
