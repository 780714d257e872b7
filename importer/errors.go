package importer

import (
	"errors"
	"fmt"
)

var (
	ErrThoughtRepositoryRequired = errors.New("thought repository is required")
	ErrUserRequired              = errors.New("user id is required")
	ErrUnsupportedFormat         = errors.New("input is neither JSON nor CSV")
	ErrMissingText               = errors.New("missing rawTranscript, cleanedText or text")
	ErrInvalidDeadline           = errors.New("invalid deadline")
)

// RowError reports why a single input row was rejected.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
