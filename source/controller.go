package source

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/paged-go/paged"
)

var defaultOptions = Options{
	Async:   false,
	Preload: 0,
}

// Options represents configuration settings for a Controller.
type Options struct {
	// Async fetches pages on a separate goroutine, leaving the
	// placeholder in place for the triggering read. When false, the
	// fetch happens inline and the read observes the fetched item
	// directly.
	Async bool

	// Preload is the number of pages loaded ahead of the one being
	// accessed. Zero disables read-ahead.
	Preload int

	// Log receives fetch activity. Discarded when nil.
	Log logrus.FieldLogger
}

// NewController creates a controller that populates 'arr' through 'fetch'
// and registers itself as the array's observer. If 'opts' is nil,
// defaultOptions are used.
func NewController[T any](arr *paged.Array[T], fetch Fetcher[T], opts *Options) *Controller[T] {
	if opts == nil {
		opts = &defaultOptions
	}

	log := opts.Log
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	c := &Controller[T]{
		arr:      arr,
		fetch:    fetch,
		async:    opts.Async,
		preload:  opts.Preload,
		log:      log,
		inflight: map[int]bool{},
		pending:  map[int][]T{},
	}
	arr.SetObserver(c)
	return c
}

// Controller implements paged.Observer by loading missing pages through a
// Fetcher as they are accessed. A page already stored, already being
// fetched, or fetched but not yet applied is never requested twice. Fetch
// failures leave the page missing, so a later access retries.
//
// The fetch goroutines of async mode never touch the array. A completed
// fetch parks its page in an internal pending set, and parked pages are
// applied at the start of the next observed read (or an explicit Flush),
// so the array is only ever mutated on the goroutine reading from it.
type Controller[T any] struct {
	arr   *paged.Array[T]
	fetch Fetcher[T]

	async   bool
	preload int
	log     logrus.FieldLogger

	mu       sync.Mutex
	inflight map[int]bool
	pending  map[int][]T
	gen      uint64
	stats    Stats
}

var _ paged.Observer[int] = (*Controller[int])(nil)

// Stats is a snapshot of controller activity counters.
type Stats struct {
	Fetches  int `json:"fetches"`
	Failures int `json:"failures"`
}

// WillAccess applies any pages that finished fetching since the last
// read, then loads the page covering 'index' if it is still missing, plus
// any configured read-ahead pages. When the items for the accessed page
// are at hand, the slot is rewritten so that the read observes live data.
func (c *Controller[T]) WillAccess(arr *paged.Array[T], index int, slot *T) {
	applied := c.drain()

	page, err := arr.PageForIndex(index)
	if err != nil {
		return
	}

	items, ok := c.ensure(page)
	if !ok {
		items, ok = applied[page]
	}
	if ok {
		r, err := arr.RangeForPage(page)
		if err == nil && index-r.Start < len(items) {
			*slot = items[index-r.Start]
		}
	}

	last := arr.Origin() + arr.Pages() - 1
	for ahead := 1; ahead <= c.preload; ahead++ {
		if page+ahead > last {
			break
		}
		c.ensure(page + ahead)
	}
}

// Flush applies pages that finished fetching in the background. Reads
// through the array do this automatically; Flush is for callers that need
// to drain completed fetches without performing a read.
func (c *Controller[T]) Flush() { c.drain() }

// Invalidate clears the array, the pending set, and the results of any
// in-flight fetches, forcing subsequent reads to fetch fresh pages. Like
// reads, it must be called on the goroutine that owns the array.
func (c *Controller[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.inflight = map[int]bool{}
	c.pending = map[int][]T{}
	c.arr.InvalidateContents()
}

// Stats returns a snapshot of the controller's activity counters.
func (c *Controller[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// drain applies parked pages to the array on the calling goroutine and
// returns the ones that were accepted.
func (c *Controller[T]) drain() map[int][]T {
	c.mu.Lock()
	pages := c.pending
	if len(pages) == 0 {
		c.mu.Unlock()
		return nil
	}
	c.pending = map[int][]T{}
	c.mu.Unlock()

	for page, items := range pages {
		if !c.apply(page, items) {
			delete(pages, page)
		}
	}
	return pages
}

// ensure triggers a fetch of the given page unless it is already stored,
// in flight, or parked. In sync mode the fetched items are applied and
// returned.
func (c *Controller[T]) ensure(page int) ([]T, bool) {
	c.mu.Lock()
	_, parked := c.pending[page]
	if parked || c.inflight[page] || c.arr.HasPage(page) {
		c.mu.Unlock()
		return nil, false
	}
	c.inflight[page] = true
	gen := c.gen
	c.mu.Unlock()

	if c.async {
		go c.fetchPage(page, gen)
		return nil, false
	}

	items, ok := c.fetchPage(page, gen)
	if !ok {
		return nil, false
	}
	return items, c.apply(page, items)
}

// fetchPage performs the fetch and records the outcome. The fetched items
// are not applied to the array here: in async mode they are parked for a
// later drain, in sync mode the caller applies them.
func (c *Controller[T]) fetchPage(page int, gen uint64) ([]T, bool) {
	items, err := c.fetch.FetchPage(page)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		// invalidated while the fetch was in flight
		return nil, false
	}
	delete(c.inflight, page)
	c.stats.Fetches++

	if err != nil {
		c.stats.Failures++
		c.log.WithError(err).WithField("page", page).Warn("page fetch failed")
		return nil, false
	}

	if c.async {
		c.pending[page] = items
	}
	return items, true
}

// apply stores fetched items into the array on the current goroutine.
func (c *Controller[T]) apply(page int, items []T) bool {
	if err := c.arr.SetPage(page, items); err != nil {
		c.mu.Lock()
		c.stats.Failures++
		c.mu.Unlock()
		c.log.WithError(err).WithField("page", page).Warn("fetched page rejected")
		return false
	}

	c.log.WithFields(logrus.Fields{
		"page":  page,
		"items": len(items),
	}).Debug("page loaded")
	return true
}
