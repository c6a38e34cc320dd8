// Package jobs provides scheduled background tasks for the order engine.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// TrackingJob runs the tracking scheduler tick: newly approved orders start
// transit, in-transit orders advance one step and report telemetry, arrived
// shipments are delivered and their payment is released after a delay.
//
// # Usage
//
//	trackingJob := jobs.NewTrackingJob(trackHandler, 500*time.Millisecond, logger)
//	jobManager := jobs.NewJobManager(trackingJob, trackHandler)
//
//	jobManager.StartAll()
//	defer jobManager.StopAll()
//
// # Scheduling
//
// The tick period is configurable and may be shorter than a second. Ticks
// never overlap: a tick still running when the next one is due causes the
// next one to be skipped.
//
// # Error Handling
//
// The tick handler logs per-order failures itself; the job only logs errors
// that prevented a tick from reading the order store. A panic inside a tick
// is recovered and logged.
package jobs
