package store

import "errors"

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("already exists")
	// ErrTrialFinalized is returned when finalizing a trial that has already
	// left the running state. Finalization is a single-writer, one-shot
	// transition; a second attempt never overwrites score or parameters.
	ErrTrialFinalized = errors.New("trial already finalized")
)
