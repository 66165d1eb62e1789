package scheduler

import "errors"

var (
	// ErrJobNotFound is returned when a job is not found
	ErrJobNotFound = errors.New("job not found")

	// ErrDuplicateJob is returned when a job name is registered twice
	ErrDuplicateJob = errors.New("job already registered")

	// ErrInvalidSchedule is returned for a cron spec that does not parse
	ErrInvalidSchedule = errors.New("invalid schedule")
)
