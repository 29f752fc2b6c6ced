package middleware

import "time"

// Test hooks for the idle-visitor sweep.

func (l *RateLimiter) SetClock(now func() time.Time) { l.now = now }

func (l *RateLimiter) EvictIdle() int { return l.evictIdle() }
