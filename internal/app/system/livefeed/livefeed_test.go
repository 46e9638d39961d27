package livefeed_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/studysphere/internal/app/system/livefeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource is a ChangeSource driven by a channel.
type fakeSource struct {
	events chan struct{}
	err    error
	closed atomic.Bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{events: make(chan struct{}, 8)}
}

func (f *fakeSource) Next(ctx context.Context) bool {
	select {
	case _, ok := <-f.events:
		return ok
	case <-ctx.Done():
		return false
	}
}

func (f *fakeSource) Err() error                  { return f.err }
func (f *fakeSource) Close(context.Context) error { f.closed.Store(true); return nil }

// store is a mutable result set the loader reads.
type store struct {
	mu    sync.Mutex
	items []string
	err   error
	loads atomic.Int32
}

func (s *store) set(items ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
}

func (s *store) load(context.Context) ([]string, error) {
	s.loads.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out, nil
}

func recv(t *testing.T, sub *livefeed.Subscription[string]) []string {
	t.Helper()
	select {
	case snap, ok := <-sub.C():
		require.True(t, ok, "channel closed unexpectedly")
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestInitialSnapshot(t *testing.T) {
	st := &store{}
	st.set("a", "b")
	src := newFakeSource()

	sub := livefeed.Start(context.Background(), livefeed.Config{}, st.load,
		func(context.Context) (livefeed.ChangeSource, error) { return src, nil })
	defer sub.Cancel()

	assert.Equal(t, []string{"a", "b"}, recv(t, sub))
}

func TestInitialSnapshot_EmptyIsDelivered(t *testing.T) {
	st := &store{}
	sub := livefeed.Start(context.Background(), livefeed.Config{}, st.load, nil)
	defer sub.Cancel()

	snap := recv(t, sub)
	assert.NotNil(t, snap)
	assert.Empty(t, snap)
}

func TestChangeEventDeliversFreshSnapshot(t *testing.T) {
	st := &store{}
	st.set("a")
	src := newFakeSource()

	sub := livefeed.Start(context.Background(), livefeed.Config{}, st.load,
		func(context.Context) (livefeed.ChangeSource, error) { return src, nil })
	defer sub.Cancel()

	assert.Equal(t, []string{"a"}, recv(t, sub))

	st.set("a", "c")
	src.events <- struct{}{}
	assert.Equal(t, []string{"a", "c"}, recv(t, sub))

	st.set("c")
	src.events <- struct{}{}
	assert.Equal(t, []string{"c"}, recv(t, sub))
}

func TestUnchangedResultIsNotRedelivered(t *testing.T) {
	st := &store{}
	st.set("a")
	src := newFakeSource()

	sub := livefeed.Start(context.Background(), livefeed.Config{}, st.load,
		func(context.Context) (livefeed.ChangeSource, error) { return src, nil })
	defer sub.Cancel()

	recv(t, sub)
	src.events <- struct{}{} // unrelated change: same result
	st.set("b")
	src.events <- struct{}{}

	assert.Equal(t, []string{"b"}, recv(t, sub))
}

func TestLoadErrorDeliversEmptySnapshot(t *testing.T) {
	st := &store{err: errors.New("boom")}
	sub := livefeed.Start(context.Background(), livefeed.Config{}, st.load, nil)
	defer sub.Cancel()

	assert.Empty(t, recv(t, sub))
}

func TestFallsBackToPolling(t *testing.T) {
	st := &store{}
	st.set("a")

	sub := livefeed.Start(context.Background(), livefeed.Config{PollInterval: 10 * time.Millisecond}, st.load,
		func(context.Context) (livefeed.ChangeSource, error) { return nil, errors.New("not a replica set") })
	defer sub.Cancel()

	assert.Equal(t, []string{"a"}, recv(t, sub))
	st.set("a", "b")
	assert.Equal(t, []string{"a", "b"}, recv(t, sub))
}

func TestSourceFailureFallsBackToPolling(t *testing.T) {
	st := &store{}
	st.set("a")
	src := newFakeSource()
	src.err = errors.New("stream died")

	sub := livefeed.Start(context.Background(), livefeed.Config{PollInterval: 10 * time.Millisecond}, st.load,
		func(context.Context) (livefeed.ChangeSource, error) { return src, nil })
	defer sub.Cancel()

	recv(t, sub)
	close(src.events)
	st.set("z")
	assert.Equal(t, []string{"z"}, recv(t, sub))
	assert.True(t, src.closed.Load())
}

func TestCancel_StopsDeliveryAndClosesChannel(t *testing.T) {
	st := &store{}
	st.set("a")
	src := newFakeSource()

	sub := livefeed.Start(context.Background(), livefeed.Config{}, st.load,
		func(context.Context) (livefeed.ChangeSource, error) { return src, nil })

	recv(t, sub)
	sub.Cancel()

	select {
	case <-sub.Done():
	default:
		t.Fatal("Cancel returned before the goroutine exited")
	}

	// No snapshot after cancel; the channel is closed and drained.
	_, ok := <-sub.C()
	assert.False(t, ok)

	loads := st.loads.Load()
	select {
	case src.events <- struct{}{}:
	default:
	}
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, loads, st.loads.Load(), "no reload after cancel")
	assert.True(t, src.closed.Load())
}

func TestCancel_Idempotent(t *testing.T) {
	st := &store{}
	sub := livefeed.Start(context.Background(), livefeed.Config{}, st.load, nil)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub.Cancel()
		}()
	}
	wg.Wait()
	sub.Cancel()
}

func TestParentContextEndsSubscription(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	st := &store{}
	sub := livefeed.Start(ctx, livefeed.Config{}, st.load, nil)

	cancel()
	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("subscription did not end with its parent context")
	}
}
