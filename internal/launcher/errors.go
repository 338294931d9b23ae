package launcher

import (
	"errors"
	"fmt"
)

// Engine-wide error taxonomy. Components wrap these with context; callers
// test with errors.Is.
var (
	// ErrNotFound is returned when a path or id is not in an index.
	ErrNotFound = errors.New("entry not found")

	// ErrAlreadyIndexed is returned by AddFile when the path has an id.
	ErrAlreadyIndexed = errors.New("path already indexed")

	// ErrHostIndexUnavailable means the external host index never came up.
	// The merged search treats this as "external search disabled".
	ErrHostIndexUnavailable = errors.New("host index unavailable")
)

// QueryError carries the numeric code from a failed host-index query.
type QueryError struct {
	Code uint32
	Msg  string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("host index query failed: %s (code %d)", e.Msg, e.Code)
}

// IOError wraps a filesystem failure with the path it happened on.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ParseError reports a malformed config or query fragment.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string { return "parse: " + e.Msg }
