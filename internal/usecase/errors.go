package usecase

import "errors"

var (
	// ErrInvalidInput rejects caller arguments such as a blank player query
	// or an out-of-range limit.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound covers unknown tournament ids and division labels.
	ErrNotFound = errors.New("resource not found")
	// ErrDependencyUnavailable marks sweeps that failed against Club Locker.
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
