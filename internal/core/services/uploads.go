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

package services

import (
	"sync"

	"github.com/jaycherian/scope-dashboard/internal/core/model"
)

// UploadTracker remembers the offline analysis status of uploaded videos.
// It is shared by all sessions and by the notification listener.
type UploadTracker struct {
	mu       sync.RWMutex
	statuses map[string]model.UploadStatus
}

// NewUploadTracker creates an empty tracker.
func NewUploadTracker() *UploadTracker {
	return &UploadTracker{statuses: make(map[string]model.UploadStatus)}
}

// Set records the status of video.
func (t *UploadTracker) Set(video string, status model.UploadStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statuses[video] = status
}

// Update changes the status of a tracked video. It reports false, and
// changes nothing, for a video that was never uploaded here.
func (t *UploadTracker) Update(video string, status model.UploadStatus) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.statuses[video]; !ok {
		return false
	}
	t.statuses[video] = status
	return true
}

// Status returns the status of video, UploadNone when unknown.
func (t *UploadTracker) Status(video string) model.UploadStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.statuses[video]
}

// Pending returns the number of videos still waiting for the GPU pipeline.
func (t *UploadTracker) Pending() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for _, s := range t.statuses {
		if s == model.UploadWaitingForGPU {
			n++
		}
	}
	return n
}
