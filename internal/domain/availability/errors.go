package availability

import "errors"

var (
	ErrNotFound      = errors.New("availability not found")
	ErrDuplicateDay  = errors.New("worker already has an availability on this day")
	ErrOutsideWindow = errors.New("day must fall within today through 30 days ahead")
	ErrDayRequired   = errors.New("day is required")
)
