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

package services_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jaycherian/scope-dashboard/internal/core/apperr"
	"github.com/jaycherian/scope-dashboard/internal/core/model"
	"github.com/jaycherian/scope-dashboard/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newManager(idle time.Duration) (*services.SessionManager, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	m := services.NewSessionManager(idle)
	m.SetClock(clock.Now)
	return m, clock
}

func TestSessionsStartEmpty(t *testing.T) {
	m, _ := newManager(time.Hour)
	id := m.Create()

	s, err := m.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, id, s.ID)
	assert.Equal(t, "", s.Identity)
	assert.Empty(t, s.Videos)
	assert.Equal(t, model.StageLoggedOut, s.Stage())
	assert.Equal(t, 1, m.Count())
}

func TestSessionsAreIsolated(t *testing.T) {
	m, _ := newManager(time.Hour)
	a, b := m.Create(), m.Create()
	require.NotEqual(t, a, b)

	require.NoError(t, m.Do(a, func(s *model.SessionState) error {
		s.Identity = "a@buffalo.edu"
		return nil
	}))

	sb, err := m.Snapshot(b)
	require.NoError(t, err)
	assert.Equal(t, "", sb.Identity)
}

func TestSessionsSnapshotIsACopy(t *testing.T) {
	m, _ := newManager(time.Hour)
	id := m.Create()
	require.NoError(t, m.Do(id, func(s *model.SessionState) error {
		s.Videos = []string{"a.mp4"}
		return nil
	}))

	snap, err := m.Snapshot(id)
	require.NoError(t, err)
	snap.Videos[0] = "changed.mp4"

	again, err := m.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.mp4"}, again.Videos)
}

func TestSessionsUnknownIsNotFound(t *testing.T) {
	m, _ := newManager(time.Hour)
	err := m.Do("nope", func(*model.SessionState) error { return nil })
	assert.True(t, apperr.IsKind(err, apperr.NotFound))

	assert.NotEqual(t, "nope", m.Ensure("nope"))
	assert.Equal(t, 1, m.Count())
}

func TestSessionsExpireWhenIdle(t *testing.T) {
	m, clock := newManager(10 * time.Minute)
	idle, active := m.Create(), m.Create()

	clock.Advance(6 * time.Minute)
	require.NoError(t, m.Do(active, func(*model.SessionState) error { return nil }))
	clock.Advance(6 * time.Minute)

	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 1, m.Count())

	_, err := m.Snapshot(idle)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
	_, err = m.Snapshot(active)
	assert.NoError(t, err)

	assert.Equal(t, active, m.Ensure(active))
	assert.NotEqual(t, idle, m.Ensure(idle))
}

func TestSessionsLookupDropsExpired(t *testing.T) {
	m, clock := newManager(time.Minute)
	id := m.Create()
	clock.Advance(2 * time.Minute)

	_, err := m.Snapshot(id)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
	assert.Equal(t, 0, m.Count())
}

func TestSessionsDelete(t *testing.T) {
	m, _ := newManager(0)
	id := m.Create()
	assert.True(t, m.Delete(id))
	assert.False(t, m.Delete(id))
	_, err := m.Snapshot(id)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestSessionsSerializeActions(t *testing.T) {
	m, _ := newManager(time.Hour)
	id := m.Create()

	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Do(id, func(s *model.SessionState) error {
				n := inside.Add(1)
				if n > maxInside.Load() {
					maxInside.Store(n)
				}
				s.Videos = append(s.Videos, "v.mp4")
				time.Sleep(time.Millisecond)
				inside.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside.Load())
	s, err := m.Snapshot(id)
	require.NoError(t, err)
	assert.Len(t, s.Videos, 20)
}
