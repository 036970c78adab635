package paged

import "errors"

var (
	// ErrPageLen is returned by New when the page length is smaller
	// than one.
	ErrPageLen = errors.New("page length must be at least 1")

	// ErrPageSize is returned by SetPage when the item count does not
	// equal the page length for a non-terminal page, or exceeds the
	// remaining count for the terminal page.
	ErrPageSize = errors.New("wrong number of items for page")

	// ErrBounds is returned when an index or a page number falls outside
	// the range declared by the array.
	ErrBounds = errors.New("out of range")
)
