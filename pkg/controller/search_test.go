package controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

const testDebounce = 20 * time.Millisecond

func waitState[T any](t *testing.T, s *Searcher[T], want SearchState) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.State() == want {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("state never reached %v, stuck at %v", want, s.State())
}

func TestSearcher_EmptyTermResetsImmediately(t *testing.T) {
	var calls int
	var mu sync.Mutex
	s := NewSearcher(func(ctx context.Context, term string) ([]string, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil, nil
	}).WithDelay(testDebounce)

	s.SetTerm(context.Background(), "")
	if s.State() != SearchIdle {
		t.Errorf("expected idle, got %v", s.State())
	}

	time.Sleep(3 * testDebounce)
	mu.Lock()
	defer mu.Unlock()
	if calls != 0 {
		t.Errorf("expected no search for empty term, got %d calls", calls)
	}
}

func TestSearcher_DebouncesRapidKeystrokes(t *testing.T) {
	var mu sync.Mutex
	var searched []string
	s := NewSearcher(func(ctx context.Context, term string) ([]string, error) {
		mu.Lock()
		searched = append(searched, term)
		mu.Unlock()
		return []string{"hit"}, nil
	}).WithDelay(testDebounce)

	ctx := context.Background()
	s.SetTerm(ctx, "g")
	s.SetTerm(ctx, "ga")
	s.SetTerm(ctx, "gar")
	if s.State() != SearchSearching {
		t.Errorf("expected searching while debouncing, got %v", s.State())
	}

	waitState(t, s, SearchResults)

	mu.Lock()
	defer mu.Unlock()
	if len(searched) != 1 || searched[0] != "gar" {
		t.Errorf("expected exactly the final term searched, got %v", searched)
	}
}

func TestSearcher_EmptyResultState(t *testing.T) {
	s := NewSearcher(func(ctx context.Context, term string) ([]string, error) {
		return []string{}, nil
	}).WithDelay(testDebounce)

	s.SetTerm(context.Background(), "nadie")
	waitState(t, s, SearchEmpty)
	if got := s.Results(); got != nil {
		t.Errorf("expected nil results in empty state, got %v", got)
	}
}

func TestSearcher_ErrorState(t *testing.T) {
	s := NewSearcher(func(ctx context.Context, term string) ([]string, error) {
		return nil, errors.New("Error al buscar doctores")
	}).WithDelay(testDebounce)

	s.SetTerm(context.Background(), "x")
	waitState(t, s, SearchError)
	if s.Err() != "Error al buscar doctores" {
		t.Errorf("unexpected error message %q", s.Err())
	}
}

// A search that completes after a newer keystroke must not overwrite the
// newer search's outcome.
func TestSearcher_StaleResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	s := NewSearcher(func(ctx context.Context, term string) ([]string, error) {
		if term == "slow" {
			close(started)
			<-release
			return []string{"stale"}, nil
		}
		return []string{"fresh"}, nil
	}).WithDelay(time.Millisecond)

	ctx := context.Background()
	s.SetTerm(ctx, "slow")
	<-started
	s.SetTerm(ctx, "fast")
	waitState(t, s, SearchResults)
	close(release)

	time.Sleep(20 * time.Millisecond)
	res := s.Results()
	if len(res) != 1 || res[0] != "fresh" {
		t.Errorf("expected the newer search's results to stand, got %v", res)
	}
}

func TestSearcher_CloseCancelsPendingAndResets(t *testing.T) {
	var calls int
	var mu sync.Mutex
	s := NewSearcher(func(ctx context.Context, term string) ([]string, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return []string{"hit"}, nil
	}).WithDelay(testDebounce)

	ctx := context.Background()
	s.SetTerm(ctx, "garcia")
	s.Close()

	time.Sleep(3 * testDebounce)
	mu.Lock()
	got := calls
	mu.Unlock()
	if got != 0 {
		t.Errorf("expected pending search cancelled, got %d calls", got)
	}
	if s.State() != SearchIdle || s.Term() != "" || s.Results() != nil || s.Err() != "" {
		t.Errorf("expected full reset, got state=%v term=%q", s.State(), s.Term())
	}
}

func TestSearcher_OnChangeNotifies(t *testing.T) {
	s := NewSearcher(func(ctx context.Context, term string) ([]string, error) {
		return []string{"hit"}, nil
	}).WithDelay(time.Millisecond)

	changes := make(chan struct{}, 8)
	s.OnChange(func() { changes <- struct{}{} })

	s.SetTerm(context.Background(), "a")
	select {
	case <-changes:
	case <-time.After(time.Second):
		t.Fatal("expected a change notification for the searching transition")
	}
	waitState(t, s, SearchResults)
	select {
	case <-changes:
	case <-time.After(time.Second):
		t.Fatal("expected a change notification for the results transition")
	}
}
