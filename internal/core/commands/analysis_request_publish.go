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
// command that announces a stored upload to the offline GPU pipeline.
//
// Logic Flow:
//  1. Build a model.AnalysisRequest from the *model.UploadRequest.
//  2. Marshal it to JSON and publish it through the rate limited publisher,
//     with the video name as a message attribute so subscribers can filter.
//  3. Keep the server-assigned message ID in the context.
package commands

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jaycherian/scope-dashboard/internal/cloud"
	"github.com/jaycherian/scope-dashboard/internal/core/apperr"
	"github.com/jaycherian/scope-dashboard/internal/core/cor"
	"github.com/jaycherian/scope-dashboard/internal/core/model"
)

// AnalysisRequestPublish publishes an analysis request for an upload.
type AnalysisRequestPublish struct {
	cor.BaseCommand
	publisher cloud.MessagePublisher
}

// NewAnalysisRequestPublish creates the command.
func NewAnalysisRequestPublish(name string, publisher cloud.MessagePublisher) *AnalysisRequestPublish {
	return &AnalysisRequestPublish{BaseCommand: *cor.NewBaseCommand(name), publisher: publisher}
}

// IsExecutable requires a publisher and an upload.
func (c *AnalysisRequestPublish) IsExecutable(context cor.Context) bool {
	return c.publisher != nil && c.BaseCommand.IsExecutable(context)
}

// Execute publishes the request.
func (c *AnalysisRequestPublish) Execute(context cor.Context) {
	req := context.Get(c.GetInputParam()).(*model.UploadRequest)

	data, err := json.Marshal(&model.AnalysisRequest{
		Video:       req.Filename,
		Identity:    req.Identity,
		RequestedAt: time.Now().UTC(),
	})
	if err != nil {
		c.Fail(context, apperr.Wrap(apperr.Internal, err, "the analysis request could not be encoded"))
		return
	}

	id, err := c.publisher.Publish(context.GetContext(), data, map[string]string{"video": req.Filename})
	if err != nil {
		c.Fail(context, apperr.Wrap(apperr.StoreUnavailable, err, "the video could not be queued for analysis"))
		return
	}

	slog.InfoContext(context.GetContext(), "analysis requested", "video", req.Filename, "message_id", id)
	context.Add(ParamMessageID, id)
	c.Succeed(context, req)
}
