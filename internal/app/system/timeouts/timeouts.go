// Package timeouts holds the deadlines used with context.WithTimeout around
// database calls:
//   - Ping: health checks and connectivity verification
//   - Short: single reads and writes made while serving a request
//   - Long: startup work (connect, index creation) and multi-file uploads
//
// Values start at the defaults and may be overridden once at startup with
// Configure.
package timeouts

import (
	"sync/atomic"
	"time"
)

// Defaults used until Configure is called.
const (
	DefaultPing  = 2 * time.Second
	DefaultShort = 5 * time.Second
	DefaultLong  = 30 * time.Second
)

var ping, short, long atomic.Int64

func init() { Reset() }

// Ping returns the timeout for health checks.
func Ping() time.Duration { return time.Duration(ping.Load()) }

// Short returns the timeout for single request-scoped operations.
func Short() time.Duration { return time.Duration(short.Load()) }

// Long returns the timeout for startup and batch operations.
func Long() time.Duration { return time.Duration(long.Load()) }

// Config overrides timeouts. Zero fields keep the current value.
type Config struct {
	Ping  time.Duration
	Short time.Duration
	Long  time.Duration
}

// Configure applies the non-zero fields of cfg.
func Configure(cfg Config) {
	set := func(v *atomic.Int64, d time.Duration) {
		if d > 0 {
			v.Store(int64(d))
		}
	}
	set(&ping, cfg.Ping)
	set(&short, cfg.Short)
	set(&long, cfg.Long)
}

// Reset restores the defaults.
func Reset() {
	ping.Store(int64(DefaultPing))
	short.Store(int64(DefaultShort))
	long.Store(int64(DefaultLong))
}
