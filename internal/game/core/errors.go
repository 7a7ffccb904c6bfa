package core

import "errors"

var (
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrInvalidPlayer      = errors.New("invalid player ID")
	ErrInvalidRange       = errors.New("invalid range")
	ErrInvalidHeight      = errors.New("invalid terrain height")
	ErrDuplicateSource    = errors.New("duplicate shroud source")
	ErrBoundsMismatch     = errors.New("map bounds of these shrouds do not match")
	ErrUnknownUnit        = errors.New("unknown unit")
	ErrMatchStarted       = errors.New("match already started")
	ErrMatchNotRunning    = errors.New("match not running")
)
