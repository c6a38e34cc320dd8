package jobs

import (
	"time"

	"supplychain/internal/core/application/usecases/commands"
)

// Status describes the tracking scheduler.
type Status struct {
	Running            bool
	TickPeriod         time.Duration
	ActiveSessionCount int
}

// JobManager coordinates the background jobs and reports their state.
type JobManager struct {
	trackingJob *TrackingJob
	tracker     *commands.TrackShipmentsCommandHandler
}

func NewJobManager(trackingJob *TrackingJob, tracker *commands.TrackShipmentsCommandHandler) *JobManager {
	return &JobManager{
		trackingJob: trackingJob,
		tracker:     tracker,
	}
}

// StartAll starts all scheduled jobs. Starting running jobs is a no-op.
func (jm *JobManager) StartAll() {
	jm.trackingJob.Start()
}

// StopAll stops all scheduled jobs and waits for in-flight runs.
func (jm *JobManager) StopAll() {
	jm.trackingJob.Stop()
}

func (jm *JobManager) Status() Status {
	return Status{
		Running:            jm.trackingJob.Running(),
		TickPeriod:         jm.trackingJob.Period(),
		ActiveSessionCount: jm.tracker.ActiveSessions(),
	}
}
