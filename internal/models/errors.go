package models

import "errors"

// Validation errors. Handlers answer these with 400.
var (
	ErrNoSources       = errors.New("at least one source is required")
	ErrEmptyURL        = errors.New("source url cannot be empty")
	ErrURLRequired     = errors.New("url is required")
	ErrPromptRequired  = errors.New("prompt is required")
	ErrUnknownPlatform = errors.New("unknown platform")
	ErrUnknownStatus   = errors.New("unknown session status")
	ErrInvalidSourceID = errors.New("invalid source id")
	ErrNoKnowledgeCore = errors.New("session has no knowledge core yet")
)

// IsValidation reports whether err was caused by bad caller input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrNoSources) ||
		errors.Is(err, ErrEmptyURL) ||
		errors.Is(err, ErrURLRequired) ||
		errors.Is(err, ErrPromptRequired) ||
		errors.Is(err, ErrUnknownPlatform) ||
		errors.Is(err, ErrUnknownStatus) ||
		errors.Is(err, ErrInvalidSourceID) ||
		errors.Is(err, ErrNoKnowledgeCore)
}
