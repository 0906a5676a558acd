package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrDeprecatedScrubber is a warning: the scrubber still works but uses
	// the legacy text-only signature.
	ErrDeprecatedScrubber = errors.New("deprecated scrubber signature")
	ErrInvalidScrubber    = errors.New("invalid scrubber")
	ErrNoNounChunks       = errors.New("noun chunks not supported")
)
