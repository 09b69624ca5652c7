// Package testutil provides testing helpers shared across the
// IndieAuth client packages.
package testutil

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// MockTime provides a controllable time source for deterministic
// TTL testing.
type MockTime struct {
	mu  sync.Mutex
	now time.Time
}

// NewMockTime creates a new mock time source.
func NewMockTime(t time.Time) *MockTime {
	return &MockTime{now: t}
}

// Now returns the current mock time.
func (m *MockTime) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the mock time forward by the given duration.
func (m *MockTime) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// Set sets the mock time to a specific value.
func (m *MockTime) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// RequestCounter counts HTTP requests reaching a test server, so tests
// can assert exactly how many network round-trips an operation made.
type RequestCounter struct {
	n atomic.Int64
}

// Wrap returns a handler that counts each request before delegating.
func (c *RequestCounter) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.n.Add(1)
		next.ServeHTTP(w, r)
	})
}

// Count returns the number of requests observed so far.
func (c *RequestCounter) Count() int64 {
	return c.n.Load()
}

// Reset sets the counter back to zero.
func (c *RequestCounter) Reset() {
	c.n.Store(0)
}
