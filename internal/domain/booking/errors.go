package booking

import "errors"

var (
	ErrNotFound             = errors.New("appointment not found")
	ErrAvailabilityNotFound = errors.New("availability not found")
	ErrSlotBooked           = errors.New("availability already booked")
	ErrPatientRequired      = errors.New("patient_id is required")
	ErrAvailabilityRequired = errors.New("availability_id is required")
	ErrInvalidStatus        = errors.New("invalid appointment status")
)
