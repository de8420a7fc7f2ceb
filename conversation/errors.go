package conversation

import "errors"

var (
	// ErrRepositoryRequired is returned when a conversation repository is
	// not provided.
	ErrRepositoryRequired = errors.New("conversation repository required")

	// ErrEmptyTitle is returned when renaming a conversation to an empty
	// title.
	ErrEmptyTitle = errors.New("empty conversation title")
)
