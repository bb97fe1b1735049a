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
// combining commands into pipelines. This file implements the handling of
// "analysis complete" notifications from the offline GPU pipeline. It is
// attached to a cloud.PubSubListener and receives the raw message text.
package workflow

import (
	"github.com/jaycherian/scope-dashboard/internal/core/commands"
	"github.com/jaycherian/scope-dashboard/internal/core/cor"
	"github.com/jaycherian/scope-dashboard/internal/core/services"
)

// AnalysisNotificationWorkflow parses a notification and updates the
// UploadTracker.
type AnalysisNotificationWorkflow struct {
	cor.BaseCommand
	tracker *services.UploadTracker
	chain   cor.Chain
}

// Execute runs the chain.
func (w *AnalysisNotificationWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

func (w *AnalysisNotificationWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())
	out.AddCommand(commands.NewAnalysisNotificationReader("analysis-notification-reader"))
	out.AddCommand(commands.NewUploadStatusUpdate("update-upload-status", w.tracker))
	w.chain = out
}

// NewAnalysisNotificationWorkflow creates the workflow.
func NewAnalysisNotificationWorkflow(tracker *services.UploadTracker) *AnalysisNotificationWorkflow {
	out := &AnalysisNotificationWorkflow{
		BaseCommand: *cor.NewBaseCommand("analysis-notification-workflow"),
		tracker:     tracker,
	}
	out.initializeChain()
	return out
}
