// Package sse streams livefeed snapshots to a browser as server-sent events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/studysphere/internal/app/system/livefeed"
	"go.uber.org/zap"
)

// EventName is the event type every snapshot is sent under.
const EventName = "snapshot"

// DefaultKeepAlive is how often a comment line is written on an idle stream
// so proxies do not close it.
const DefaultKeepAlive = 25 * time.Second

type settings struct {
	keepAlive time.Duration
}

// Option adjusts one Stream call.
type Option func(*settings)

// WithKeepAlive sets the idle ping interval. Non-positive values keep the
// default.
func WithKeepAlive(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.keepAlive = d
		}
	}
}

// Stream writes each snapshot from sub as one JSON event until the client
// goes away or the subscription ends. encode shapes the snapshot for the
// page. The subscription is cancelled before Stream returns.
func Stream[T any](w http.ResponseWriter, r *http.Request, sub *livefeed.Subscription[T], encode func([]T) any, logger *zap.Logger, opts ...Option) {
	defer sub.Cancel()

	cfg := settings{keepAlive: DefaultKeepAlive}
	for _, o := range opts {
		o(&cfg)
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ping := time.NewTicker(cfg.keepAlive)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case snap, ok := <-sub.C():
			if !ok {
				return
			}
			payload, err := json.Marshal(encode(snap))
			if err != nil {
				logger.Error("sse: encode snapshot", zap.Error(err))
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", EventName, payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
