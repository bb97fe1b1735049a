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

package commands

import (
	"log/slog"

	"github.com/jaycherian/scope-dashboard/internal/core/cor"
	"github.com/jaycherian/scope-dashboard/internal/core/model"
	"github.com/jaycherian/scope-dashboard/internal/core/services"
)

// UploadStatusUpdate applies a notification to the UploadTracker.
type UploadStatusUpdate struct {
	cor.BaseCommand
	tracker *services.UploadTracker
}

// NewUploadStatusUpdate creates the command.
func NewUploadStatusUpdate(name string, tracker *services.UploadTracker) *UploadStatusUpdate {
	return &UploadStatusUpdate{BaseCommand: *cor.NewBaseCommand(name), tracker: tracker}
}

// Execute records the notified status. Videos uploaded through another
// instance are tracked from here on.
func (c *UploadStatusUpdate) Execute(context cor.Context) {
	n := context.Get(c.GetInputParam()).(*model.AnalysisNotification)
	if !c.tracker.Update(n.Video, n.Status) {
		slog.InfoContext(context.GetContext(), "notification for an untracked upload", "video", n.Video)
		c.tracker.Set(n.Video, n.Status)
	}
	slog.InfoContext(context.GetContext(), "upload status changed",
		"video", n.Video, "status", n.Status, "message", n.Message)
	c.Succeed(context, n)
}
