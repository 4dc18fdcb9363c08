// Package ratelimit implements fixed-window request throttling for the
// credential-entry endpoints. Each (client address, endpoint group) key
// accumulates a count inside a timer-bounded window; the window resets
// by elapsed time, never by traffic.
package ratelimit

import (
	"context"
	"time"
)

// Default limits match the brute-force mitigation policy: 100 requests
// per key per 15 minute window.
const (
	DefaultWindow = 15 * time.Minute
	DefaultLimit  = 100
)

// Config bounds one endpoint group.
type Config struct {
	Window time.Duration
	Limit  int
}

func (c Config) withDefaults() Config {
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.Limit <= 0 {
		c.Limit = DefaultLimit
	}
	return c
}

// Decision is the outcome of one Take call.
type Decision struct {
	Allowed    bool
	Limit      int
	Window     time.Duration
	Remaining  int
	Reset      time.Time
	RetryAfter time.Duration
}

// Store counts requests per key. Take performs the read-check-increment
// as one atomic step; implementations must serialize per-key access so
// the ceiling is never exceeded under concurrent load.
type Store interface {
	Take(ctx context.Context, key string) (Decision, error)
}
