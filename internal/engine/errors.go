package engine

import "errors"

// Guard rejections. State is unchanged whenever one is returned.
var (
	ErrNoMatch           = errors.New("no match in progress")
	ErrUnknownMode       = errors.New("unknown game mode")
	ErrAlreadyCarrying   = errors.New("groomer already carrying a pet")
	ErrOutOfRange        = errors.New("target out of range")
	ErrTargetUnavailable = errors.New("target unavailable")
	ErrNotCarrying       = errors.New("groomer is not carrying a pet")
	ErrNoStationInRange  = errors.New("no grooming station in range")
	ErrStationBusy       = errors.New("grooming station busy")
	ErrCageOccupied      = errors.New("cage occupied")
	ErrCageOutOfRange    = errors.New("cage out of range")
	ErrCageEmpty         = errors.New("cage empty")
)
