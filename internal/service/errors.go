package service

import "errors"

var (
	// ErrGenerationInProgress rejects a second generation for the same
	// session or draft while one is still running.
	ErrGenerationInProgress = errors.New("a generation is already in progress for this session")
	// ErrCoreChanged discards a draft whose knowledge core was regenerated
	// while the draft was being written.
	ErrCoreChanged    = errors.New("knowledge core changed while the draft was generated")
	ErrSourceNotFound = errors.New("source not found")
	ErrExportDisabled = errors.New("export storage is not configured")
)
