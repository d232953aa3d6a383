// Package query provides the fetch-on-demand primitive every screen uses to
// run a backend query and observe {data, loading, error}.
package query

import (
	"context"
	"sync"
)

// FetchFunc produces one result for a query. Filter state is captured by the
// closure; swapping the closure never triggers a run by itself.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Options configure a Query. The zero value means enabled with an automatic
// initial run.
type Options struct {
	// Disabled suppresses every run, including explicit Reload calls.
	Disabled bool
	// SkipInitial suppresses only the automatic run on Activate; Reload
	// remains callable.
	SkipInitial bool
}

// Query caches the latest result of a fetch function. Reload calls may
// overlap; a generation stamp guarantees that only the newest call's outcome
// is written back, so a slow stale response cannot clobber fresher data.
//
// A failed reload keeps the previous data: consumers seeing data alongside a
// non-empty error are showing the last good result after a failed refresh.
type Query[T any] struct {
	mu          sync.Mutex
	fetch       FetchFunc[T]
	disabled    bool
	skipInitial bool

	data    T
	hasData bool
	loading bool
	errMsg  string
	gen     uint64

	subscribers []func()
}

// New creates a query over fetch. A nil fetch behaves as disabled.
func New[T any](fetch FetchFunc[T], opts Options) *Query[T] {
	q := &Query[T]{
		fetch:       fetch,
		disabled:    opts.Disabled || fetch == nil,
		skipInitial: opts.SkipInitial,
	}
	q.loading = !q.disabled && !q.skipInitial
	return q
}

// OnChange registers a callback invoked after every state transition.
func (q *Query[T]) OnChange(fn func()) {
	q.mu.Lock()
	q.subscribers = append(q.subscribers, fn)
	q.mu.Unlock()
}

func (q *Query[T]) notifyLocked() func() {
	subs := make([]func(), len(q.subscribers))
	copy(subs, q.subscribers)
	return func() {
		for _, fn := range subs {
			fn()
		}
	}
}

// SetFetch replaces the fetch function (filters changed). Deliberately does
// not trigger a run; the caller decides when to Reload.
func (q *Query[T]) SetFetch(fetch FetchFunc[T]) {
	q.mu.Lock()
	q.fetch = fetch
	if fetch != nil {
		q.disabled = false
	}
	q.mu.Unlock()
}

// Activate performs the automatic initial run unless suppressed.
func (q *Query[T]) Activate(ctx context.Context) {
	q.mu.Lock()
	if q.disabled || q.skipInitial {
		q.loading = false
		notify := q.notifyLocked()
		q.mu.Unlock()
		notify()
		return
	}
	q.mu.Unlock()

	q.Reload(ctx)
}

// Reload runs the fetch function and installs the result. Overlapping calls
// are not serialized; the newest call wins regardless of completion order.
func (q *Query[T]) Reload(ctx context.Context) {
	q.mu.Lock()
	fetch := q.fetch
	if q.disabled || fetch == nil {
		q.loading = false
		notify := q.notifyLocked()
		q.mu.Unlock()
		notify()
		return
	}

	q.gen++
	gen := q.gen
	q.loading = true
	q.errMsg = ""
	notify := q.notifyLocked()
	q.mu.Unlock()
	notify()

	result, err := fetch(ctx)

	q.mu.Lock()
	if gen != q.gen {
		// Superseded by a newer reload; its outcome is authoritative.
		q.mu.Unlock()
		return
	}
	if err != nil {
		q.errMsg = err.Error()
	} else {
		q.data = result
		q.hasData = true
		q.errMsg = ""
	}
	q.loading = false
	notify = q.notifyLocked()
	q.mu.Unlock()
	notify()
}

// Data returns the latest result and whether one has been loaded.
func (q *Query[T]) Data() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.data, q.hasData
}

// Loading reports whether a run is in flight.
func (q *Query[T]) Loading() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.loading
}

// Err returns the failure message of the most recent run, or "".
func (q *Query[T]) Err() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.errMsg
}
