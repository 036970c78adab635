package source_test

import (
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paged-go/paged"
	"github.com/paged-go/paged/source"
)

// fakeFetcher serves pages of consecutive letters and records every page
// it is asked for.
type fakeFetcher struct {
	mu      sync.Mutex
	arr     *paged.Array[string]
	fetched []int
	fail    bool
	delay   time.Duration
}

func (f *fakeFetcher) FetchPage(page int) ([]string, error) {
	time.Sleep(f.delay)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.fetched = append(f.fetched, page)
	if f.fail {
		return nil, errors.New("source unavailable")
	}

	r, err := f.arr.RangeForPage(page)
	if err != nil {
		return nil, err
	}

	items := make([]string, r.Len)
	for i := range items {
		items[i] = string(rune('a' + r.Start + i))
	}
	return items, nil
}

func (f *fakeFetcher) pages() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.fetched...)
}

func newFixture(t *testing.T, opts *source.Options) (*paged.Array[string], *fakeFetcher, *source.Controller[string]) {
	arr, err := paged.New[string](10, 3, nil)
	require.NoError(t, err)

	fetch := &fakeFetcher{arr: arr}
	ctrl := source.NewController[string](arr, fetch, opts)
	return arr, fetch, ctrl
}

func TestController_SyncLoad(t *testing.T) {
	arr, fetch, ctrl := newFixture(t, nil)

	// the very first access observes live data, not the placeholder
	got, err := arr.At(4)
	require.NoError(t, err)
	assert.Equal(t, "e", got)
	assert.Equal(t, []int{2}, fetch.pages())

	// same page again: served from the array, no second fetch
	got, err = arr.At(5)
	require.NoError(t, err)
	assert.Equal(t, "f", got)
	assert.Equal(t, []int{2}, fetch.pages())

	assert.Equal(t, source.Stats{Fetches: 1}, ctrl.Stats())
}

func TestController_TerminalPage(t *testing.T) {
	arr, fetch, _ := newFixture(t, nil)

	// index 9 lives on the short terminal page 4
	got, err := arr.At(9)
	require.NoError(t, err)
	assert.Equal(t, "j", got)
	assert.Equal(t, []int{4}, fetch.pages())
}

func TestController_Preload(t *testing.T) {
	arr, fetch, _ := newFixture(t, &source.Options{Preload: 1})

	_, err := arr.At(0)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, fetch.pages())
	assert.True(t, arr.HasPage(2))

	// read-ahead never runs past the terminal page
	_, err = arr.At(9)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 4}, fetch.pages())
}

func TestController_FetchFailure(t *testing.T) {
	arr, fetch, ctrl := newFixture(t, nil)
	fetch.fail = true

	got, err := arr.At(0)
	require.NoError(t, err)
	assert.Equal(t, "", got, "failed fetch leaves the placeholder")
	assert.False(t, arr.HasPage(1))
	assert.Equal(t, source.Stats{Fetches: 1, Failures: 1}, ctrl.Stats())

	// the page stays missing, so the next access retries
	fetch.fail = false
	got, err = arr.At(0)
	require.NoError(t, err)
	assert.Equal(t, "a", got)
	assert.Equal(t, []int{1, 1}, fetch.pages())
}

func TestController_AsyncLoad(t *testing.T) {
	arr, fetch, ctrl := newFixture(t, &source.Options{Async: true})

	// the triggering read returns the placeholder immediately
	got, err := arr.At(4)
	require.NoError(t, err)
	assert.Equal(t, "", got)

	// the fetch completes in the background but is only parked there;
	// Stats is safe to poll from another goroutine
	require.Eventually(t, func() bool {
		return ctrl.Stats().Fetches == 1
	}, time.Second, time.Millisecond)

	// the next read applies the parked page on this goroutine and
	// already observes live data
	got, err = arr.At(4)
	require.NoError(t, err)
	assert.Equal(t, "e", got)
	assert.True(t, arr.HasPage(2))
	assert.Equal(t, []int{2}, fetch.pages())
}

func TestController_AsyncFlush(t *testing.T) {
	arr, _, ctrl := newFixture(t, &source.Options{Async: true})

	_, err := arr.At(0)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return ctrl.Stats().Fetches == 1
	}, time.Second, time.Millisecond)

	// drain without reading
	require.False(t, arr.HasPage(1))
	ctrl.Flush()
	assert.True(t, arr.HasPage(1))
	assert.Equal(t, []string{"a", "b", "c"}, arr.Existing())
}

func TestController_AsyncOverlappingReads(t *testing.T) {
	// reads keep hitting the array while fetches are in flight; page
	// delivery must stay on the reading goroutine (run with -race)
	arr, err := paged.New[string](9, 3, nil)
	require.NoError(t, err)

	fetch := &fakeFetcher{arr: arr, delay: time.Millisecond}
	ctrl := source.NewController[string](arr, fetch, &source.Options{Async: true})

	deadline := time.Now().Add(5 * time.Second)
	for len(arr.Existing()) < arr.TotalCount() {
		require.False(t, time.Now().After(deadline), "pages never arrived")

		for i := 0; i < arr.TotalCount(); i++ {
			_, err := arr.At(i)
			require.NoError(t, err)
		}
		time.Sleep(time.Millisecond)
	}

	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"}, arr.Existing())
	assert.Equal(t, source.Stats{Fetches: 3}, ctrl.Stats())
}

func TestController_Invalidate(t *testing.T) {
	arr, fetch, ctrl := newFixture(t, nil)

	_, err := arr.At(0)
	require.NoError(t, err)
	require.True(t, arr.HasPage(1))

	ctrl.Invalidate()
	assert.Empty(t, arr.Existing())

	// the next access fetches the page again
	got, err := arr.At(0)
	require.NoError(t, err)
	assert.Equal(t, "a", got)
	assert.Equal(t, []int{1, 1}, fetch.pages())
}
