package paged

// Observer implementations are notified synchronously on every positional
// read of an Array. The array holds a non-owning reference; remove the
// observer with SetObserver(nil) before discarding it.
type Observer[T any] interface {
	// WillAccess is called before At returns. 'slot' holds the value the
	// array is about to return (the placeholder when the owning page is
	// missing) and may be overwritten to substitute the returned value.
	// The usual implementation triggers a load of the covering page and,
	// when the items are available immediately, rewrites the slot.
	WillAccess(arr *Array[T], index int, slot *T)
}

var _ Observer[int] = (ObserverFunc[int])(nil)

// ObserverFunc adapts an ordinary function to the Observer interface.
type ObserverFunc[T any] func(arr *Array[T], index int, slot *T)

// WillAccess invokes the wrapped function.
func (fn ObserverFunc[T]) WillAccess(arr *Array[T], index int, slot *T) {
	fn(arr, index, slot)
}
