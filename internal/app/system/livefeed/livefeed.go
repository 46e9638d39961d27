// Package livefeed turns a one-shot query plus a change notification source
// into a stream of full result snapshots.
//
// Each Subscription owns one goroutine. The goroutine loads and delivers an
// initial snapshot, then reloads and delivers a fresh snapshot every time the
// change source reports an event. When no change source is available (for
// example a standalone mongod without change streams) it falls back to
// polling on a ticker.
//
// Delivery coalesces: the channel holds at most one pending snapshot and a
// newer one replaces it, so a slow reader always sees the latest state and
// never stalls the producer.
package livefeed

import (
	"context"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultPollInterval is used when Config.PollInterval is zero.
const DefaultPollInterval = 5 * time.Second

// ChangeSource reports that the underlying data may have changed.
// *mongo.ChangeStream satisfies it.
type ChangeSource interface {
	Next(ctx context.Context) bool
	Err() error
	Close(ctx context.Context) error
}

// Loader runs the one-shot query.
type Loader[T any] func(ctx context.Context) ([]T, error)

// Opener opens a change source scoped to the subscription's query. A nil
// Opener, or one that fails, selects polling.
type Opener func(ctx context.Context) (ChangeSource, error)

// Config tunes a subscription.
type Config struct {
	PollInterval time.Duration
	Logger       *zap.Logger
	Name         string // for log fields
}

// Subscription delivers snapshots until Cancel is called.
type Subscription[T any] struct {
	ch     chan []T
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	load Loader[T]
	open Opener
	cfg  Config
	last []T
	sent bool
}

// Start begins a subscription. The first snapshot is delivered as soon as
// the initial load finishes; a load error delivers an empty snapshot.
func Start[T any](parent context.Context, cfg Config, load Loader[T], open Opener) *Subscription[T] {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(parent)
	s := &Subscription[T]{
		ch:     make(chan []T, 1),
		cancel: cancel,
		done:   make(chan struct{}),
		load:   load,
		open:   open,
		cfg:    cfg,
	}
	go s.run(ctx)
	return s
}

// C is the snapshot channel. It is closed once the subscription ends.
func (s *Subscription[T]) C() <-chan []T { return s.ch }

// Done is closed when the subscription goroutine has exited.
func (s *Subscription[T]) Done() <-chan struct{} { return s.done }

// Cancel stops the subscription and waits for its goroutine to exit. Any
// snapshot still buffered is discarded. Safe to call more than once and
// from multiple goroutines.
func (s *Subscription[T]) Cancel() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
		for range s.ch {
		}
	})
	<-s.done
}

func (s *Subscription[T]) run(ctx context.Context) {
	defer close(s.done)
	defer close(s.ch)

	log := s.cfg.Logger.With(zap.String("feed", s.cfg.Name))

	s.reload(ctx, log)
	if ctx.Err() != nil {
		return
	}

	if s.open != nil {
		src, err := s.open(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Info("change source unavailable; polling", zap.Error(err))
		} else {
			s.watch(ctx, src, log)
			if ctx.Err() != nil {
				return
			}
		}
	}
	s.poll(ctx, log)
}

// watch reloads on every change event. It returns when the source ends;
// the caller falls back to polling unless ctx is done.
func (s *Subscription[T]) watch(ctx context.Context, src ChangeSource, log *zap.Logger) {
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = src.Close(closeCtx)
	}()

	for src.Next(ctx) {
		s.reload(ctx, log)
	}
	if err := src.Err(); err != nil && ctx.Err() == nil {
		log.Warn("change source failed; polling", zap.Error(err))
	}
}

func (s *Subscription[T]) poll(ctx context.Context, log *zap.Logger) {
	t := time.NewTicker(s.cfg.PollInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.reload(ctx, log)
		}
	}
}

// reload runs the loader and delivers the result when it differs from the
// last delivered snapshot. The first snapshot is always delivered.
func (s *Subscription[T]) reload(ctx context.Context, log *zap.Logger) {
	items, err := s.load(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		log.Error("snapshot load failed", zap.Error(err))
		items = nil
	}
	if items == nil {
		items = []T{}
	}
	if s.sent && reflect.DeepEqual(items, s.last) {
		return
	}
	s.last = items
	s.sent = true
	s.deliver(items)
}

// deliver replaces any undelivered snapshot with items. Only this
// goroutine sends, so after the drain the send cannot block.
func (s *Subscription[T]) deliver(items []T) {
	select {
	case s.ch <- items:
		return
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	s.ch <- items
}
