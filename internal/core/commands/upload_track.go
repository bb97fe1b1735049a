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
	"github.com/jaycherian/scope-dashboard/internal/core/cor"
	"github.com/jaycherian/scope-dashboard/internal/core/model"
	"github.com/jaycherian/scope-dashboard/internal/core/services"
)

// UploadTrack marks a stored upload as waiting for the GPU pipeline.
type UploadTrack struct {
	cor.BaseCommand
	tracker *services.UploadTracker
}

// NewUploadTrack creates the command.
func NewUploadTrack(name string, tracker *services.UploadTracker) *UploadTrack {
	return &UploadTrack{BaseCommand: *cor.NewBaseCommand(name), tracker: tracker}
}

// Execute records model.UploadWaitingForGPU for the upload.
func (c *UploadTrack) Execute(context cor.Context) {
	req := context.Get(c.GetInputParam()).(*model.UploadRequest)
	c.tracker.Set(req.Filename, model.UploadWaitingForGPU)
	c.Succeed(context, req)
}
