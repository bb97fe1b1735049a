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
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jaycherian/scope-dashboard/internal/core/apperr"
	"github.com/jaycherian/scope-dashboard/internal/core/commands"
	"github.com/jaycherian/scope-dashboard/internal/core/cor"
	"github.com/jaycherian/scope-dashboard/internal/core/model"
	"github.com/jaycherian/scope-dashboard/internal/core/services"
	"github.com/jaycherian/scope-dashboard/internal/core/workflow"
	test "github.com/jaycherian/scope-dashboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type uploadFixture struct {
	dir       string
	store     *services.LocalVideoStore
	tracker   *services.UploadTracker
	publisher *test.FakePublisher
}

func newUploadFixture(t *testing.T) *uploadFixture {
	dir := t.TempDir()
	return &uploadFixture{
		dir:       dir,
		store:     services.NewLocalVideoStore(filepath.Join(dir, "videos")),
		tracker:   services.NewUploadTracker(),
		publisher: &test.FakePublisher{},
	}
}

func (u *uploadFixture) run(t *testing.T, w cor.Command, filename string, content []byte) cor.Context {
	t.Helper()
	spooled := filepath.Join(u.dir, "spooled")
	require.NoError(t, os.WriteFile(spooled, content, 0o644))

	spanCtx, span := tracer.Start(ctx, "upload")
	defer span.End()
	chainCtx := cor.NewBaseContext(spanCtx)
	chainCtx.Add(cor.CtxIn, &model.UploadRequest{Filename: filename, LocalPath: spooled, Identity: test.SampleIdentity})
	w.Execute(chainCtx)
	return chainCtx
}

func TestVideoUploadWorkflowStoresTracksAndPublishes(t *testing.T) {
	u := newUploadFixture(t)
	w := workflow.NewVideoUploadWorkflow(u.store, u.tracker, u.publisher)

	chainCtx := u.run(t, w, "new_clip.mp4", test.MP4Bytes())
	require.NoError(t, chainCtx.Err())

	exists, err := u.store.Exists(ctx, "new_clip.mp4")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, u.store.Ref("new_clip.mp4"), chainCtx.Get(commands.ParamStoredRef))
	assert.Equal(t, model.UploadWaitingForGPU, u.tracker.Status("new_clip.mp4"))

	require.Equal(t, 1, u.publisher.Count())
	msg := u.publisher.Messages[0]
	assert.Equal(t, "new_clip.mp4", msg.Attributes["video"])
	var req model.AnalysisRequest
	require.NoError(t, json.Unmarshal(msg.Data, &req))
	assert.Equal(t, "new_clip.mp4", req.Video)
	assert.Equal(t, test.SampleIdentity, req.Identity)
	assert.Equal(t, "message-1", chainCtx.Get(commands.ParamMessageID))
}

func TestVideoUploadWorkflowWithoutPublisher(t *testing.T) {
	u := newUploadFixture(t)
	w := workflow.NewVideoUploadWorkflow(u.store, u.tracker, nil)

	chainCtx := u.run(t, w, "new_clip.mp4", test.MP4Bytes())
	require.NoError(t, chainCtx.Err())
	assert.Equal(t, model.UploadWaitingForGPU, u.tracker.Status("new_clip.mp4"))
	assert.Nil(t, chainCtx.Get(commands.ParamMessageID))
}

func TestVideoUploadWorkflowRejectsInvalidUploads(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		content  []byte
	}{
		{name: "wrong extension", filename: "clip.avi", content: test.MP4Bytes()},
		{name: "renamed text file", filename: "clip.mp4", content: []byte("definitely not a video")},
		{name: "empty file", filename: "clip.mp4", content: nil},
		{name: "no name", filename: "", content: test.MP4Bytes()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := newUploadFixture(t)
			w := workflow.NewVideoUploadWorkflow(u.store, u.tracker, u.publisher)

			chainCtx := u.run(t, w, tc.filename, tc.content)
			assert.True(t, apperr.IsKind(chainCtx.Err(), apperr.ValidationError), "got %v", chainCtx.Err())
			assert.Equal(t, 0, u.tracker.Pending())
			assert.Equal(t, 0, u.publisher.Count())

			entries, _ := os.ReadDir(filepath.Join(u.dir, "videos"))
			assert.Empty(t, entries)
		})
	}
}

func TestVideoUploadWorkflowAcceptsUpperCaseExtension(t *testing.T) {
	u := newUploadFixture(t)
	w := workflow.NewVideoUploadWorkflow(u.store, u.tracker, nil)

	chainCtx := u.run(t, w, "CLIP.MP4", test.MP4Bytes())
	require.NoError(t, chainCtx.Err())
	assert.Equal(t, model.UploadWaitingForGPU, u.tracker.Status("CLIP.MP4"))
}

func TestVideoUploadWorkflowPublishFailure(t *testing.T) {
	u := newUploadFixture(t)
	u.publisher.Err = errors.New("topic not found")
	w := workflow.NewVideoUploadWorkflow(u.store, u.tracker, u.publisher)

	chainCtx := u.run(t, w, "new_clip.mp4", test.MP4Bytes())
	assert.True(t, apperr.IsKind(chainCtx.Err(), apperr.StoreUnavailable))
}
