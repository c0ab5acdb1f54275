package services

import "errors"

// Errors the HTTP layer maps on top of the engine's error kinds.
var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTournamentExists   = errors.New("tournament already exists")
	ErrVersionConflict    = errors.New("tournament was modified concurrently, reload and retry")
	ErrStageNotFound      = errors.New("stage not found")
)
