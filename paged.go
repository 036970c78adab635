// Package paged provides a sparse, page-oriented container that presents
// a fixed-length, randomly indexable sequence whose contents arrive
// incrementally and out of order, one fixed-size page at a time.
//
// The recommendation is to pair an Array with a controller object that
// populates it with pages of data (e.g. from paginated network or database
// fetches), while handing the array itself to the consumer as if it were
// fully materialized. See the source subpackage for such a controller.
package paged

import "fmt"

// New initializes an empty paged array with the given total count and page
// length. If 'opts' is nil, defaultOptions are used (pages numbered from 1,
// zero value of T as the placeholder, no observer).
func New[T any](totalCount, pageLen int, opts *Options[T]) (*Array[T], error) {
	if pageLen < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrPageLen, pageLen)
	}

	if totalCount < 0 {
		return nil, fmt.Errorf("%w: total count %d", ErrBounds, totalCount)
	}

	if opts == nil {
		opts = &Options[T]{Origin: 1}
	}

	return &Array[T]{
		count:       totalCount,
		pageLen:     pageLen,
		origin:      opts.Origin,
		pages:       map[int][]T{},
		placeholder: opts.Placeholder,
		observer:    opts.Observer,
	}, nil
}

// Options represents configuration settings for a paged array. A nil
// options value passed to New selects the defaults. When an explicit
// Options value is given, all fields are used verbatim (Origin 0 is a
// valid numbering origin).
type Options[T any] struct {
	// Origin is the page number of the first page. Commonly 0 or 1.
	Origin int

	// Placeholder is the value returned for any index whose page has
	// not been supplied yet.
	Placeholder T

	// Observer, if set, is notified on every positional read. See the
	// Observer interface.
	Observer Observer[T]
}
