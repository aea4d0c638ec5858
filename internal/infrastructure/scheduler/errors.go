package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when trying to trigger a job on a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrJobQueueFull is returned when the job queue is full
	ErrJobQueueFull = errors.New("job queue is full")

	// ErrJobNotFound is returned when no job is registered under the name
	ErrJobNotFound = errors.New("job not found")

	// ErrJobAlreadyQueued is returned when a run of the job is still pending or in progress
	ErrJobAlreadyQueued = errors.New("job already queued")

	// ErrDuplicateJob is returned when a name is registered twice
	ErrDuplicateJob = errors.New("job already registered")

	// ErrInvalidSchedule is returned for cron expressions that do not parse
	ErrInvalidSchedule = errors.New("invalid cron schedule")
)
