package backfill

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrProcessorRequired is returned when no processor is provided.
	ErrProcessorRequired = errors.New("processor required")

	// ErrThoughtRepositoryRequired is returned when a thought repository is not provided.
	ErrThoughtRepositoryRequired = errors.New("thought repository required")
)
