package storage

import "errors"

var (
	// ErrNotFound is returned when a league, run or pool does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when a league id, a player within a pool
	// snapshot, or a run id is inserted twice. Runs and salary history are
	// append-only; an identical pricing run maps to the same key.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidInput is returned when a record is missing its key fields.
	ErrInvalidInput = errors.New("invalid input")
)
