package ingestion

import "errors"

var (
	// ErrThoughtRepositoryRequired is returned when a thought repository is not provided.
	ErrThoughtRepositoryRequired = errors.New("thought repository required")

	// ErrConnectionRepositoryRequired is returned when a connection repository is not provided.
	ErrConnectionRepositoryRequired = errors.New("connection repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrEmptyTranscript is returned when a transcript has no content.
	ErrEmptyTranscript = errors.New("transcript is empty")

	// ErrUserRequired is returned when no owning user is given.
	ErrUserRequired = errors.New("user required")

	// ErrPipelineBusy is reported through a ticket when the worker pool
	// rejected the task. The thought itself is already persisted.
	ErrPipelineBusy = errors.New("pipeline busy")

	// ErrMissingEmbedding is returned when connections are requested for a
	// thought without a vector.
	ErrMissingEmbedding = errors.New("thought has no embedding")

	// ErrUserMismatch is returned when a thought is not owned by the given user.
	ErrUserMismatch = errors.New("thought belongs to another user")
)
