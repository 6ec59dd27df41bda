package model

import "errors"

// Configuration errors. These are reported before any loading work starts;
// a run that returns one has not touched its container.
var (
	ErrInvalidContainer     = errors.New("container dimensions must be positive")
	ErrInvalidForbiddenZone = errors.New("forbidden zone is not a valid box")
	ErrInvalidPackageGroup  = errors.New("package group must have a positive count and positive dimensions")
	ErrInvalidTypeLimit     = errors.New("type limit must be positive")
	ErrUnknownTypeStrategy  = errors.New("unknown package type strategy")
)
