package records

import "errors"

// Errors surfaced to the front desk; the messages are shown to users
// verbatim, so they are worded for humans.
var (
	ErrNotFound     = errors.New("appointment not found")
	ErrSlotConflict = errors.New("The selected time slot conflicts with an existing appointment.")
	ErrNotCheckable = errors.New("Only scheduled appointments can be checked in.")
	ErrNotCheckedIn = errors.New("The patient has not been checked in yet.")
	ErrBadStatus    = errors.New("unknown appointment status")
	ErrBadTimeRange = errors.New("appointment end must be after its start")
)
