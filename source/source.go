// Package source provides collaborators that populate a paged.Array on
// demand as its indices are accessed.
package source

// Fetcher implementations produce the items of one page of the sequence,
// numbered in the same scheme as the array being populated. This is the
// boundary behind which the real data source (network, database, file)
// lives.
type Fetcher[T any] interface {
	// FetchPage should return the full set of items for the given page.
	// The terminal page may be short.
	FetchPage(page int) ([]T, error)
}

var _ Fetcher[int] = (FetcherFunc[int])(nil)

// FetcherFunc adapts an ordinary function to the Fetcher interface.
type FetcherFunc[T any] func(page int) ([]T, error)

// FetchPage invokes the wrapped function.
func (fn FetcherFunc[T]) FetchPage(page int) ([]T, error) { return fn(page) }
