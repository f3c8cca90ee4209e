package jobtable

import "errors"

// Predefined errors
var (
	// ErrSlotOccupied indicates slot 0 (the active job) is already occupied.
	ErrSlotOccupied = errors.New("jobtable: active slot already occupied")

	// ErrJobNotFound indicates the requested job number has no live job.
	ErrJobNotFound = errors.New("jobtable: job not found")
)
