// Package store holds the daemon's shared view of the most recent
// measurement and the most recent link fault.
package store

import (
	"sync"
	"time"

	"github.com/Mailaender/vaisalad/internal/wxt"
)

// ErrorRecord describes the most recent connection or session fault.
type ErrorRecord struct {
	Time    time.Time `json:"timestamp"`
	Message string    `json:"message"`
}

// Store retains at most one measurement and at most one error record.
// The link manager is the only writer; any number of goroutines may read.
// A single mutex guards both fields so a reader sees a consistent pair.
type Store struct {
	mu      sync.Mutex
	latest  *wxt.Measurement
	lastErr *ErrorRecord
}

func New() *Store {
	return &Store{}
}

// Latest returns a snapshot of the most recent measurement. The second
// return value is false when no measurement has been received since the
// last (re)connect.
func (s *Store) Latest() (wxt.Measurement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return wxt.Measurement{}, false
	}
	return *s.latest, true
}

// LastError returns a snapshot of the most recent fault, if any.
func (s *Store) LastError() (ErrorRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastErr == nil {
		return ErrorRecord{}, false
	}
	return *s.lastErr, true
}

// SetLatest replaces the cached measurement.
func (s *Store) SetLatest(m wxt.Measurement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = &m
}

// ClearLatest discards the cached measurement. Called on every fresh
// connect: a reading cached from an earlier session may be stale.
func (s *Store) ClearLatest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = nil
}

// SetError replaces the error record. It is never cleared by a successful
// reconnect, only overwritten by the next fault.
func (s *Store) SetError(at time.Time, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = &ErrorRecord{Time: at, Message: msg}
}
