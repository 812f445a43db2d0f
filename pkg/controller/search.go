package controller

import (
	"context"
	"sync"
	"time"
)

// DefaultSearchDebounce is the delay between the last keystroke and the
// search actually firing.
const DefaultSearchDebounce = 300 * time.Millisecond

// SearchState is the lifecycle of a debounced search.
type SearchState int

const (
	SearchIdle SearchState = iota
	SearchSearching
	SearchResults
	SearchEmpty
	SearchError
)

// SearchFunc performs one search for a term.
type SearchFunc[T any] func(ctx context.Context, term string) ([]T, error)

// Searcher debounces free-text search input. Each SetTerm restarts the
// debounce timer, so only the most recent term is ever searched; a
// generation counter additionally discards results of searches that were
// superseded while their request was in flight.
type Searcher[T any] struct {
	mu    sync.Mutex
	fn    SearchFunc[T]
	delay time.Duration

	timer   *time.Timer
	gen     uint64
	state   SearchState
	term    string
	results []T
	lastErr string

	// onChange, when set, is invoked (unlocked) after every state change.
	onChange func()
}

// NewSearcher creates an idle searcher with the default debounce delay.
func NewSearcher[T any](fn SearchFunc[T]) *Searcher[T] {
	return &Searcher[T]{fn: fn, delay: DefaultSearchDebounce}
}

// WithDelay overrides the debounce delay (used by tests).
func (s *Searcher[T]) WithDelay(d time.Duration) *Searcher[T] {
	s.mu.Lock()
	s.delay = d
	s.mu.Unlock()
	return s
}

// OnChange registers a callback fired after every state transition.
func (s *Searcher[T]) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// SetTerm records a keystroke. An empty term resets to idle immediately;
// anything else schedules a search after the debounce delay, cancelling any
// previously pending one.
func (s *Searcher[T]) SetTerm(ctx context.Context, term string) {
	s.mu.Lock()
	s.term = term
	s.gen++
	myGen := s.gen
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if term == "" {
		s.state = SearchIdle
		s.results = nil
		s.lastErr = ""
		s.mu.Unlock()
		s.notify()
		return
	}
	s.state = SearchSearching
	s.timer = time.AfterFunc(s.delay, func() {
		s.run(ctx, myGen, term)
	})
	s.mu.Unlock()
	s.notify()
}

func (s *Searcher[T]) run(ctx context.Context, gen uint64, term string) {
	results, err := s.fn(ctx, term)

	s.mu.Lock()
	if gen != s.gen {
		// Superseded by a newer keystroke or a close.
		s.mu.Unlock()
		return
	}
	switch {
	case err != nil:
		s.state = SearchError
		s.results = nil
		s.lastErr = err.Error()
	case len(results) == 0:
		s.state = SearchEmpty
		s.results = nil
		s.lastErr = ""
	default:
		s.state = SearchResults
		s.results = results
		s.lastErr = ""
	}
	s.mu.Unlock()
	s.notify()
}

// Close cancels any pending debounce and resets term, results, and error to
// their initial values.
func (s *Searcher[T]) Close() {
	s.mu.Lock()
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.state = SearchIdle
	s.term = ""
	s.results = nil
	s.lastErr = ""
	s.mu.Unlock()
	s.notify()
}

// State returns the current lifecycle state.
func (s *Searcher[T]) State() SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Term returns the most recent term.
func (s *Searcher[T]) Term() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.term
}

// Results returns the current result set (nil outside SearchResults).
func (s *Searcher[T]) Results() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results
}

// Err returns the failure message of the last search, if any.
func (s *Searcher[T]) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Searcher[T]) notify() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}
