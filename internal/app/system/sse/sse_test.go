package sse

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/studysphere/internal/app/system/livefeed"
	"go.uber.org/zap"
)

// eventRecorder signals once want has been flushed.
type eventRecorder struct {
	*httptest.ResponseRecorder
	want string
	once sync.Once
	got  chan struct{}
}

func newEventRecorder(want string) *eventRecorder {
	return &eventRecorder{ResponseRecorder: httptest.NewRecorder(), want: want, got: make(chan struct{})}
}

func (e *eventRecorder) Flush() {
	e.ResponseRecorder.Flush()
	if strings.Contains(e.Body.String(), e.want) {
		e.once.Do(func() { close(e.got) })
	}
}

func TestStream_WritesSnapshotEvent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	load := func(context.Context) ([]string, error) { return []string{"a", "b"}, nil }
	sub := livefeed.Start(ctx, livefeed.Config{PollInterval: time.Hour}, load, nil)

	req := httptest.NewRequest("GET", "/live", nil).WithContext(ctx)
	rec := newEventRecorder("event: ")

	done := make(chan struct{})
	go func() {
		Stream(rec, req, sub, func(items []string) any { return map[string]int{"count": len(items)} }, zap.NewNop())
		close(done)
	}()

	select {
	case <-rec.got:
	case <-time.After(2 * time.Second):
		t.Fatal("no event written")
	}
	cancel()
	<-done

	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("Content-Type: got %q", got)
	}
	if body := rec.Body.String(); !strings.Contains(body, "event: snapshot\ndata: {\"count\":2}\n\n") {
		t.Errorf("unexpected body %q", body)
	}
	select {
	case <-sub.Done():
	default:
		t.Error("subscription should be cancelled when the stream ends")
	}
}

func TestStream_KeepAliveOption(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	load := func(context.Context) ([]string, error) { return nil, nil }
	sub := livefeed.Start(ctx, livefeed.Config{PollInterval: time.Hour}, load, nil)

	req := httptest.NewRequest("GET", "/live", nil).WithContext(ctx)
	rec := newEventRecorder(": ping\n\n")

	done := make(chan struct{})
	go func() {
		Stream(rec, req, sub, func(items []string) any { return items }, zap.NewNop(), WithKeepAlive(10*time.Millisecond))
		close(done)
	}()

	select {
	case <-rec.got:
	case <-time.After(2 * time.Second):
		t.Fatal("no keep-alive written")
	}
	cancel()
	<-done
}

func TestWithKeepAlive_IgnoresNonPositive(t *testing.T) {
	cfg := settings{keepAlive: DefaultKeepAlive}
	WithKeepAlive(0)(&cfg)
	WithKeepAlive(-time.Second)(&cfg)
	if cfg.keepAlive != DefaultKeepAlive {
		t.Errorf("keepAlive = %v, want %v", cfg.keepAlive, DefaultKeepAlive)
	}
}
