package discovery

import "errors"

// Sentinel errors for content discovery. Callers classify with errors.Is.
var (
	// ErrInvalidPattern indicates an include or exclude glob failed to compile.
	ErrInvalidPattern = errors.New("invalid glob pattern")

	// ErrRootWalkFailed indicates traversal of a content root failed as a whole.
	ErrRootWalkFailed = errors.New("content root walk failed")

	// ErrSiteDirNotFound indicates the configured site directory does not exist.
	ErrSiteDirNotFound = errors.New("site directory not found")
)
