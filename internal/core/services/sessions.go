// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package services contains the data access layer of the dashboard. This
// file, `sessions.go`, defines the SessionManager, the in-memory owner of
// every interaction session.
//
// Each session has its own lock. Do runs a function with exclusive access to
// one session, so actions of a single user are serialized while different
// users proceed in parallel. Sessions idle for longer than the configured
// timeout are discarded.
package services

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jaycherian/scope-dashboard/internal/core/apperr"
	"github.com/jaycherian/scope-dashboard/internal/core/model"
)

type sessionEntry struct {
	mu           sync.Mutex // Guards state.
	state        *model.SessionState
	lastActivity atomic.Int64 // Unix nanoseconds, readable without mu.
}

func (e *sessionEntry) touch(now time.Time) {
	e.lastActivity.Store(now.UnixNano())
}

// SessionManager stores sessions keyed by a random ID.
type SessionManager struct {
	mu          sync.Mutex
	sessions    map[string]*sessionEntry
	idleTimeout time.Duration // Zero disables expiry.
	now         func() time.Time
}

// NewSessionManager creates a manager expiring sessions after idleTimeout.
func NewSessionManager(idleTimeout time.Duration) *SessionManager {
	return &SessionManager{
		sessions:    make(map[string]*sessionEntry),
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

// SetClock replaces the time source. It must be called before the manager
// is shared.
func (m *SessionManager) SetClock(now func() time.Time) {
	m.now = now
}

func (m *SessionManager) expired(e *sessionEntry, now time.Time) bool {
	return m.idleTimeout > 0 && now.Sub(time.Unix(0, e.lastActivity.Load())) > m.idleTimeout
}

// Create starts an empty session and returns its ID.
func (m *SessionManager) Create() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New().String()
	state := model.NewSessionState(id)
	state.CreateDate = m.now()
	state.LastActivity = state.CreateDate
	entry := &sessionEntry{state: state}
	entry.touch(state.CreateDate)
	m.sessions[id] = entry
	return id
}

// Ensure returns id when it names a live session, otherwise a new session ID.
func (m *SessionManager) Ensure(id string) string {
	if id != "" && m.lookup(id) != nil {
		return id
	}
	return m.Create()
}

// lookup returns the entry of id, dropping it if it has expired.
func (m *SessionManager) lookup(id string) *sessionEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.sessions[id]
	if !ok {
		return nil
	}
	if m.expired(entry, m.now()) {
		delete(m.sessions, id)
		return nil
	}
	return entry
}

// Do runs fn with exclusive access to the session. Unknown or expired
// sessions are NotFound. The session's activity time is refreshed.
func (m *SessionManager) Do(id string, fn func(state *model.SessionState) error) error {
	entry := m.lookup(id)
	if entry == nil {
		return apperr.New(apperr.NotFound, "the session does not exist or has expired")
	}
	now := m.now()
	entry.touch(now)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.state.LastActivity = now
	return fn(entry.state)
}

// Snapshot returns a copy of the session state.
func (m *SessionManager) Snapshot(id string) (*model.SessionState, error) {
	var out *model.SessionState
	err := m.Do(id, func(state *model.SessionState) error {
		out = state.Clone()
		return nil
	})
	return out, err
}

// Delete discards a session. It reports whether the session existed.
func (m *SessionManager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	return ok
}

// Count returns the number of sessions held, expired ones included until
// the next sweep.
func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep removes expired sessions and returns how many were removed.
func (m *SessionManager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	removed := 0
	for id, entry := range m.sessions {
		if m.expired(entry, now) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is done.
func (m *SessionManager) Run(ctx context.Context, interval time.Duration) {
	if m.idleTimeout <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				slog.Info("expired idle sessions", "count", n)
			}
		}
	}
}
