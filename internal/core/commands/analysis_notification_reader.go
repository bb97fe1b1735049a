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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface. This file defines the
// entry point of the notification workflow, triggered by a message from the
// offline GPU pipeline on the "analysis complete" subscription.
//
// Logic Flow:
//  1. Receive the raw message data as a JSON string from the context.
//  2. Unmarshal it into a model.AnalysisNotification.
//  3. Reject messages without a video or with an unknown status as
//     ValidationError, so the listener drops them instead of redelivering.
//  4. Place the notification in the context for the next command.
package commands

import (
	"encoding/json"

	"github.com/jaycherian/scope-dashboard/internal/core/apperr"
	"github.com/jaycherian/scope-dashboard/internal/core/cor"
	"github.com/jaycherian/scope-dashboard/internal/core/model"
)

// AnalysisNotificationReader parses analysis complete notifications.
type AnalysisNotificationReader struct {
	cor.BaseCommand
}

// NewAnalysisNotificationReader creates the command.
func NewAnalysisNotificationReader(name string) *AnalysisNotificationReader {
	return &AnalysisNotificationReader{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute parses the message.
func (c *AnalysisNotificationReader) Execute(context cor.Context) {
	in, ok := context.Get(c.GetInputParam()).(string)
	if !ok {
		c.Fail(context, apperr.New(apperr.ValidationError, "notification payload is not text"))
		return
	}

	var out model.AnalysisNotification
	if err := json.Unmarshal([]byte(in), &out); err != nil {
		c.Fail(context, apperr.Wrap(apperr.ValidationError, err, "failed to unmarshal analysis notification"))
		return
	}
	if out.Video == "" {
		c.Fail(context, apperr.New(apperr.ValidationError, "analysis notification has no video"))
		return
	}
	switch out.Status {
	case model.UploadReady, model.UploadFailed:
	default:
		c.Fail(context, apperr.Newf(apperr.ValidationError, "analysis notification has unknown status %q", out.Status))
		return
	}

	context.Add(ParamNotification, &out)
	c.Succeed(context, &out)
}
