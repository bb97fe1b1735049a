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

package workflow_test

import (
	"testing"

	"github.com/jaycherian/scope-dashboard/internal/core/apperr"
	"github.com/jaycherian/scope-dashboard/internal/core/cor"
	"github.com/jaycherian/scope-dashboard/internal/core/model"
	"github.com/jaycherian/scope-dashboard/internal/core/services"
	"github.com/jaycherian/scope-dashboard/internal/core/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notify(w cor.Command, payload string) cor.Context {
	chainCtx := cor.NewBaseContext(ctx)
	chainCtx.Add(cor.CtxIn, payload)
	w.Execute(chainCtx)
	return chainCtx
}

func TestAnalysisNotificationMarksUploadReady(t *testing.T) {
	tracker := services.NewUploadTracker()
	tracker.Set("new_clip.mp4", model.UploadWaitingForGPU)
	w := workflow.NewAnalysisNotificationWorkflow(tracker)

	chainCtx := notify(w, `{"video":"new_clip.mp4","status":"ready"}`)
	require.NoError(t, chainCtx.Err())
	assert.Equal(t, model.UploadReady, tracker.Status("new_clip.mp4"))
	assert.Equal(t, 0, tracker.Pending())
}

func TestAnalysisNotificationTracksUnknownUpload(t *testing.T) {
	tracker := services.NewUploadTracker()
	w := workflow.NewAnalysisNotificationWorkflow(tracker)

	chainCtx := notify(w, `{"video":"elsewhere.mp4","status":"failed","message":"decoder error"}`)
	require.NoError(t, chainCtx.Err())
	assert.Equal(t, model.UploadFailed, tracker.Status("elsewhere.mp4"))
}

func TestAnalysisNotificationRejectsPoisonMessages(t *testing.T) {
	payloads := map[string]string{
		"bad json":       `{"video":`,
		"no video":       `{"status":"ready"}`,
		"unknown status": `{"video":"a.mp4","status":"done"}`,
		"waiting status": `{"video":"a.mp4","status":"waiting_for_gpu"}`,
	}
	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			tracker := services.NewUploadTracker()
			w := workflow.NewAnalysisNotificationWorkflow(tracker)

			chainCtx := notify(w, payload)
			assert.True(t, apperr.IsKind(chainCtx.Err(), apperr.ValidationError), "got %v", chainCtx.Err())
			assert.Equal(t, model.UploadNone, tracker.Status("a.mp4"))
		})
	}
}
