// Package controller provides the reusable state units behind every resource
// screen of the dashboard: a filtered/paginated list controller, an action
// controller for mutations, and a debounced searcher. Controllers own their
// state, are safe for concurrent use, and surface fetch failures through
// state rather than returned errors so passive consumers (banners, grids)
// can render them.
package controller

import (
	"context"
	"sync"

	"github.com/clinicdesk/clinicdesk/pkg/clinic"
	"github.com/clinicdesk/clinicdesk/pkg/pagination"
)

// ListFunc fetches one page of a resource for the given filter.
type ListFunc[T any] func(ctx context.Context, f clinic.Filter) (*clinic.ListPage[T], error)

// ListController owns the filter state and the most recent page snapshot for
// one resource type. Fetch failures clear the snapshot and are exposed via
// Err; a nil snapshot means "never loaded or last fetch failed", which
// consumers must treat differently from an empty result page.
type ListController[T any] struct {
	mu       sync.Mutex
	fetch    ListFunc[T]
	fallback string

	filters clinic.Filter
	data    *clinic.ListPage[T]
	busy    bool
	lastErr string

	// seq numbers fetches; a response whose number is below the latest
	// started fetch is stale and discarded, so the newest request always
	// wins regardless of network ordering.
	seq uint64
}

// NewListController creates the controller and performs the initial fetch
// with the given filters (nil gets page 1 at the default limit). fallbackErr
// is recorded when a failure carries no message of its own.
func NewListController[T any](ctx context.Context, fetch ListFunc[T], initial clinic.Filter, fallbackErr string) *ListController[T] {
	if initial == nil {
		initial = clinic.Filter{
			clinic.FilterPage:  1,
			clinic.FilterLimit: pagination.DefaultLimit,
		}
	}
	lc := &ListController[T]{
		fetch:    fetch,
		fallback: fallbackErr,
		filters:  initial.Clone(),
		busy:     true,
	}
	lc.Fetch(ctx, nil)
	return lc
}

// Fetch loads a page using override (when non-nil) or the stored filters.
// The outcome lands in state: Data on success, Err on failure (Data cleared).
func (lc *ListController[T]) Fetch(ctx context.Context, override clinic.Filter) {
	lc.mu.Lock()
	lc.seq++
	mySeq := lc.seq
	lc.busy = true
	lc.lastErr = ""
	f := lc.filters
	if override != nil {
		f = override
	}
	f = f.Clone()
	lc.mu.Unlock()

	page, err := lc.fetch(ctx, f)

	lc.mu.Lock()
	defer lc.mu.Unlock()
	if mySeq < lc.seq {
		// A newer fetch started while this one was in flight.
		return
	}
	lc.busy = false
	if err != nil {
		lc.data = nil
		lc.lastErr = errMessage(err, lc.fallback)
		return
	}
	lc.lastErr = ""
	lc.data = page
}

// UpdateFilters shallow-merges partial into the current filters (a nil value
// clears its key) and immediately fetches with the merged set. Callers never
// need a separate Fetch after updating filters.
func (lc *ListController[T]) UpdateFilters(ctx context.Context, partial clinic.Filter) {
	lc.mu.Lock()
	lc.filters = lc.filters.Merge(partial)
	merged := lc.filters.Clone()
	lc.mu.Unlock()
	lc.Fetch(ctx, merged)
}

// Refresh re-fetches using the current filters without modifying them.
func (lc *ListController[T]) Refresh(ctx context.Context) {
	lc.Fetch(ctx, nil)
}

// Filters returns a copy of the current filter set.
func (lc *ListController[T]) Filters() clinic.Filter {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.filters.Clone()
}

// Data returns the latest page snapshot, or nil when none is loaded.
func (lc *ListController[T]) Data() *clinic.ListPage[T] {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.data
}

// Items returns the items of the latest snapshot; an unloaded controller
// yields an empty slice.
func (lc *ListController[T]) Items() []T {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	if lc.data == nil {
		return nil
	}
	return lc.data.Data
}

// Busy reports whether a fetch is in flight.
func (lc *ListController[T]) Busy() bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.busy
}

// Err returns the last fetch failure message, empty when the last fetch
// succeeded.
func (lc *ListController[T]) Err() string {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.lastErr
}

// Pagination derives the pagination projection of the current snapshot. It
// is nil when no data is loaded: "not yet loaded / failed" is never
// presented as a zero-paged result.
func (lc *ListController[T]) Pagination() *pagination.Pagination {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	if lc.data == nil {
		return nil
	}
	pg := lc.data.Pagination()
	return &pg
}

func errMessage(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}
