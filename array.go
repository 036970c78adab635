package paged

import "fmt"

// Array is a fixed-length sequence backed by a sparse set of fixed-size
// pages. Indices whose page has not been supplied read as the placeholder
// value. Array is NOT safe for concurrent use; callers needing
// multi-threaded access must serialize it externally.
type Array[T any] struct {
	// immutable sizing
	pageLen int
	origin  int

	// mutable state
	count       int
	pages       map[int][]T
	placeholder T
	observer    Observer[T]
}

// Range is the contiguous run of logical indices covered by one page.
type Range struct {
	Start int
	Len   int
}

// SetPage stores the items for the given page, replacing any previous
// contents of that page. The array keeps its own copy, so the caller is
// free to reuse the slice. Every page other than the terminal one must
// hold exactly PageLen() items; the terminal page may be short but never
// longer than the remaining count.
func (arr *Array[T]) SetPage(page int, items []T) error {
	r, err := arr.RangeForPage(page)
	if err != nil {
		return err
	}

	if page != arr.lastPage() && len(items) != arr.pageLen {
		return fmt.Errorf("%w: page %d needs %d items, got %d",
			ErrPageSize, page, arr.pageLen, len(items))
	} else if page == arr.lastPage() && len(items) > r.Len {
		return fmt.Errorf("%w: terminal page %d holds at most %d items, got %d",
			ErrPageSize, page, r.Len, len(items))
	}

	arr.pages[page] = append([]T(nil), items...)
	return nil
}

// PageForIndex returns the number of the page covering the given logical
// index.
func (arr *Array[T]) PageForIndex(index int) (int, error) {
	if index < 0 || index >= arr.count {
		return 0, fmt.Errorf("%w: index %d, count %d", ErrBounds, index, arr.count)
	}
	return arr.origin + index/arr.pageLen, nil
}

// RangeForPage returns the logical index range covered by the given page.
// The terminal page's range is clamped to the total count.
func (arr *Array[T]) RangeForPage(page int) (Range, error) {
	if page < arr.origin || page > arr.lastPage() {
		return Range{}, fmt.Errorf("%w: page %d, valid range [%d, %d]",
			ErrBounds, page, arr.origin, arr.lastPage())
	}

	r := Range{
		Start: (page - arr.origin) * arr.pageLen,
		Len:   arr.pageLen,
	}
	if page == arr.lastPage() {
		r.Len = arr.count - r.Start
	}
	return r, nil
}

// At performs a positional read of the given logical index. If the page
// covering the index has been supplied, the stored item is returned;
// otherwise the placeholder. A missing page is not an error. The observer,
// if any, is notified before the value is returned and may substitute it.
// At never blocks waiting for data.
func (arr *Array[T]) At(index int) (T, error) {
	if index < 0 || index >= arr.count {
		var zero T
		return zero, fmt.Errorf("%w: index %d, count %d", ErrBounds, index, arr.count)
	}

	slot := arr.placeholder
	if items, ok := arr.pages[arr.origin+index/arr.pageLen]; ok {
		if off := index % arr.pageLen; off < len(items) {
			slot = items[off]
		}
	}

	if arr.observer != nil {
		arr.observer.WillAccess(arr, index, &slot)
	}
	return slot, nil
}

// Existing returns the items of all supplied pages in ascending logical
// index order. Missing pages contribute nothing, so the result length is
// the sum of the stored page lengths, not the total count.
func (arr *Array[T]) Existing() []T {
	var out []T
	arr.EnumerateExisting(func(_ int, item T) bool {
		out = append(out, item)
		return true
	})
	return out
}

// EnumerateExisting visits each item of every supplied page together with
// its logical index, in ascending index order. The visitor returns false
// to stop the enumeration early. The observer is not notified.
func (arr *Array[T]) EnumerateExisting(visit func(index int, item T) bool) {
	for page := arr.origin; page <= arr.lastPage(); page++ {
		items, ok := arr.pages[page]
		if !ok {
			continue
		}

		r, _ := arr.RangeForPage(page)
		n := len(items)
		if n > r.Len {
			n = r.Len
		}

		for i := 0; i < n; i++ {
			if !visit(r.Start+i, items[i]) {
				return
			}
		}
	}
}

// ToArray materializes the full sequence: a slice of length TotalCount()
// holding the stored item for every index whose page is present and the
// placeholder everywhere else. The observer is not notified.
func (arr *Array[T]) ToArray() []T {
	out := make([]T, arr.count)
	for i := range out {
		out[i] = arr.placeholder
	}
	arr.EnumerateExisting(func(index int, item T) bool {
		out[index] = item
		return true
	})
	return out
}

// InvalidateContents drops all supplied pages, returning the array to its
// fully sparse state. Sizing parameters are unchanged; subsequent reads
// observe the placeholder again until pages are re-supplied.
func (arr *Array[T]) InvalidateContents() {
	arr.pages = map[int][]T{}
}

// SetTotalCount revises the total logical length, recomputing the page
// count. Pages that fall outside the new bound are retained in the backing
// map but become unreachable through the accessors.
func (arr *Array[T]) SetTotalCount(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: total count %d", ErrBounds, n)
	}
	arr.count = n
	return nil
}

// SetObserver registers or replaces the access observer. Passing nil
// removes it, after which reads skip the notification step.
func (arr *Array[T]) SetObserver(o Observer[T]) { arr.observer = o }

// TotalCount returns the total logical length of the sequence.
func (arr *Array[T]) TotalCount() int { return arr.count }

// PageLen returns the number of items per page.
func (arr *Array[T]) PageLen() int { return arr.pageLen }

// Origin returns the page number of the first page.
func (arr *Array[T]) Origin() int { return arr.origin }

// Pages returns the number of pages implied by the current total count.
func (arr *Array[T]) Pages() int {
	return (arr.count + arr.pageLen - 1) / arr.pageLen
}

// HasPage reports whether the given page has been supplied.
func (arr *Array[T]) HasPage(page int) bool {
	_, ok := arr.pages[page]
	return ok
}

// Placeholder returns the value reads observe for missing pages.
func (arr *Array[T]) Placeholder() T { return arr.placeholder }

// PageMap returns a copied snapshot of the page mapping.
func (arr *Array[T]) PageMap() map[int][]T {
	snap := make(map[int][]T, len(arr.pages))
	for page, items := range arr.pages {
		snap[page] = append([]T(nil), items...)
	}
	return snap
}

func (arr *Array[T]) String() string {
	return fmt.Sprintf("Array{count=%d, pageLen=%d, pages=%d/%d}",
		arr.count, arr.pageLen, len(arr.pages), arr.Pages())
}

func (arr *Array[T]) lastPage() int { return arr.origin + arr.Pages() - 1 }
