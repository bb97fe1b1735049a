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

// Package workflow defines the high-level business logic orchestrations,
// combining commands into pipelines. This file implements the video upload
// pipeline.
package workflow

import (
	"github.com/jaycherian/scope-dashboard/internal/cloud"
	"github.com/jaycherian/scope-dashboard/internal/core/commands"
	"github.com/jaycherian/scope-dashboard/internal/core/cor"
	"github.com/jaycherian/scope-dashboard/internal/core/services"
)

// VideoUploadWorkflow processes a *model.UploadRequest whose content has
// been spooled to a local file:
//  1. validate the name and the MP4 signature;
//  2. store it in the VideoStore;
//  3. mark it as waiting for the GPU pipeline;
//  4. publish an analysis request, when a topic is configured.
type VideoUploadWorkflow struct {
	cor.BaseCommand
	store     services.VideoStore
	tracker   *services.UploadTracker
	publisher cloud.MessagePublisher
	chain     cor.Chain
}

// Execute runs the chain.
func (w *VideoUploadWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

func (w *VideoUploadWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())
	out.AddCommand(commands.NewUploadValidator("validate-upload"))
	out.AddCommand(commands.NewUploadPersist("persist-upload", w.store))
	out.AddCommand(commands.NewUploadTrack("track-upload", w.tracker))
	if w.publisher != nil {
		out.AddCommand(commands.NewAnalysisRequestPublish("request-analysis", w.publisher))
	}
	w.chain = out
}

// NewVideoUploadWorkflow creates the workflow. publisher may be nil, in
// which case uploads are only stored and tracked.
func NewVideoUploadWorkflow(
	store services.VideoStore,
	tracker *services.UploadTracker,
	publisher cloud.MessagePublisher) *VideoUploadWorkflow {

	out := &VideoUploadWorkflow{
		BaseCommand: *cor.NewBaseCommand("video-upload-workflow"),
		store:       store,
		tracker:     tracker,
		publisher:   publisher,
	}
	out.initializeChain()
	return out
}
