// Package subjectresources answers "which resources does this subject (and
// optionally this type) have?" in one-shot and live form.
//
// The subject is matched by equality in the store. The type is matched here,
// after the read, by comparing normalize.Type of both sides: stored types
// are free text ("EE LAB", " notes") and the store cannot do a trimmed,
// case-insensitive match on an indexed field.
//
// Store failures never reach the caller as errors. They are logged and the
// caller gets an empty, non-loading Result.
package subjectresources

import (
	"context"
	"time"

	resourcestore "github.com/dalemusser/studysphere/internal/app/store/resources"
	"github.com/dalemusser/studysphere/internal/app/system/livefeed"
	"github.com/dalemusser/studysphere/internal/app/system/normalize"
	"github.com/dalemusser/studysphere/internal/domain/models"
	"go.uber.org/zap"
)

// Result is the outcome of a read. Loading is false once a result exists;
// Failed marks a result that is empty because the store read failed.
type Result struct {
	Items   []models.Resource
	Loading bool
	Failed  bool
}

// Source is the store surface the adapter reads from.
type Source interface {
	FindBySubject(ctx context.Context, subject string) ([]models.Resource, error)
	WatchSubject(ctx context.Context, subject string) (livefeed.ChangeSource, error)
}

// Querier runs subject/type reads.
type Querier struct {
	src          Source
	log          *zap.Logger
	pollInterval time.Duration
}

// New returns a Querier backed by the resource store.
func New(store *resourcestore.Store, logger *zap.Logger, pollInterval time.Duration) *Querier {
	return NewWithSource(storeSource{store}, logger, pollInterval)
}

// NewWithSource returns a Querier over any Source.
func NewWithSource(src Source, logger *zap.Logger, pollInterval time.Duration) *Querier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Querier{src: src, log: logger, pollInterval: pollInterval}
}

// Fetch is the one-shot read. An empty typ selects every type.
func (q *Querier) Fetch(ctx context.Context, subject, typ string) Result {
	items, err := q.load(ctx, subject, typ)
	if err != nil {
		q.log.Error("resource fetch failed",
			zap.String("subject", subject), zap.String("type", typ), zap.Error(err))
		return Result{Items: []models.Resource{}, Failed: true}
	}
	return Result{Items: items}
}

// Watch starts a live read. The subscription delivers the matching set
// immediately and again after every change, until Cancel is called or ctx
// ends.
func (q *Querier) Watch(ctx context.Context, subject, typ string) *livefeed.Subscription[models.Resource] {
	cfg := livefeed.Config{
		PollInterval: q.pollInterval,
		Logger:       q.log.With(zap.String("subject", subject), zap.String("type", typ)),
		Name:         "subject-resources",
	}
	load := func(ctx context.Context) ([]models.Resource, error) {
		return q.load(ctx, subject, typ)
	}
	open := func(ctx context.Context) (livefeed.ChangeSource, error) {
		return q.src.WatchSubject(ctx, subject)
	}
	return livefeed.Start(ctx, cfg, load, open)
}

func (q *Querier) load(ctx context.Context, subject, typ string) ([]models.Resource, error) {
	all, err := q.src.FindBySubject(ctx, subject)
	if err != nil {
		return nil, err
	}
	return FilterByType(all, typ), nil
}

// FilterByType keeps the records whose type matches typ ignoring case and
// surrounding space. An empty typ keeps everything.
func FilterByType(items []models.Resource, typ string) []models.Resource {
	out := make([]models.Resource, 0, len(items))
	if normalize.Type(typ) == "" {
		return append(out, items...)
	}
	want := normalize.Type(typ)
	for _, r := range items {
		if normalize.Type(r.Type) == want {
			out = append(out, r)
		}
	}
	return out
}

// TypesPresent returns the normalized types that occur in items.
func TypesPresent(items []models.Resource) map[string]bool {
	seen := make(map[string]bool, len(items))
	for _, r := range items {
		seen[normalize.Type(r.Type)] = true
	}
	return seen
}

// storeSource adapts the Mongo store's change stream to livefeed.
type storeSource struct {
	s *resourcestore.Store
}

func (ss storeSource) FindBySubject(ctx context.Context, subject string) ([]models.Resource, error) {
	return ss.s.FindBySubject(ctx, subject)
}

func (ss storeSource) WatchSubject(ctx context.Context, subject string) (livefeed.ChangeSource, error) {
	cs, err := ss.s.Watch(ctx, subject)
	if err != nil {
		return nil, err
	}
	return cs, nil
}
