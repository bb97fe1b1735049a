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

// Package main contains the logic for starting the Pub/Sub listeners. The
// offline GPU pipeline reports finished videos on the "analysis complete"
// subscription, which flips their upload status to ready.
package main

import (
	"context"
	"log/slog"

	"github.com/jaycherian/scope-dashboard/internal/cloud"
	"github.com/jaycherian/scope-dashboard/internal/core/workflow"
)

// SetupListeners attaches the workflows to the configured listeners and
// starts them.
func SetupListeners(config *cloud.Config, cloudClients *cloud.ServiceClients, ctx context.Context) {
	listener, ok := cloudClients.PubSubListeners[cloud.AnalysisCompleteSubscription]
	if !ok {
		slog.Info("no analysis complete subscription configured")
		return
	}
	notifications := workflow.NewAnalysisNotificationWorkflow(state.uploads)
	listener.SetCommand(notifications)
	listener.Listen(ctx)

	for key := range config.TopicSubscriptions {
		if key != cloud.AnalysisCompleteSubscription {
			slog.Warn("subscription has no workflow and is ignored", "subscription", key)
		}
	}
}
