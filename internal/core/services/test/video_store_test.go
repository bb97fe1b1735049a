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

package services_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jaycherian/scope-dashboard/internal/core/apperr"
	"github.com/jaycherian/scope-dashboard/internal/core/model"
	"github.com/jaycherian/scope-dashboard/internal/core/services"
	test "github.com/jaycherian/scope-dashboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanMediaName(t *testing.T) {
	cases := map[string]string{
		"clip.mp4":             "clip.mp4",
		"/tmp/uploads/a.mp4":   "a.mp4",
		"..\\..\\windows.mp4":  "windows.mp4",
		"../../etc/passwd.mp4": "passwd.mp4",
	}
	for in, want := range cases {
		got, err := services.CleanMediaName(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", " ", ".", "..", "/"} {
		_, err := services.CleanMediaName(bad)
		assert.True(t, apperr.IsKind(err, apperr.ValidationError), "%q", bad)
	}
}

func TestLocalVideoStoreSaveAndLocate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "videos")
	s := services.NewLocalVideoStore(dir)
	ctx := context.Background()

	ref, err := s.Save(ctx, "../escape.mp4", bytes.NewReader(test.MP4Bytes()))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "escape.mp4"), ref)

	loc, err := s.Locate(ctx, "escape.mp4")
	require.NoError(t, err)
	assert.Equal(t, ref, loc.Path)
	assert.Empty(t, loc.URL)

	data, err := os.ReadFile(loc.Path)
	require.NoError(t, err)
	assert.Equal(t, test.MP4Bytes(), data)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files are left behind")
}

func TestLocalVideoStoreSaveReplaces(t *testing.T) {
	s := services.NewLocalVideoStore(t.TempDir())
	ctx := context.Background()

	_, err := s.Save(ctx, "a.mp4", bytes.NewReader([]byte("first")))
	require.NoError(t, err)
	ref, err := s.Save(ctx, "a.mp4", bytes.NewReader([]byte("second")))
	require.NoError(t, err)

	data, err := os.ReadFile(ref)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestLocalVideoStoreLocateMissing(t *testing.T) {
	s := services.NewLocalVideoStore(t.TempDir())
	_, err := s.Locate(context.Background(), "absent.mp4")
	assert.True(t, apperr.IsKind(err, apperr.NotFound))

	exists, err := s.Exists(context.Background(), "absent.mp4")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalVideoStoreSaveCancelled(t *testing.T) {
	dir := t.TempDir()
	s := services.NewLocalVideoStore(dir)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Save(ctx, "a.mp4", bytes.NewReader(test.MP4Bytes()))
	assert.True(t, apperr.IsKind(err, apperr.StoreUnavailable))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadTracker(t *testing.T) {
	tr := services.NewUploadTracker()
	assert.Equal(t, model.UploadNone, tr.Status("a.mp4"))
	assert.False(t, tr.Update("a.mp4", model.UploadReady))
	assert.Equal(t, model.UploadNone, tr.Status("a.mp4"))

	tr.Set("a.mp4", model.UploadWaitingForGPU)
	tr.Set("b.mp4", model.UploadWaitingForGPU)
	assert.Equal(t, 2, tr.Pending())

	assert.True(t, tr.Update("a.mp4", model.UploadReady))
	assert.Equal(t, model.UploadReady, tr.Status("a.mp4"))
	assert.Equal(t, 1, tr.Pending())
}

func TestPassthroughAnalyzer(t *testing.T) {
	out, err := services.PassthroughAnalyzer{}.Analyze(context.Background(), "videos/a.mp4")
	require.NoError(t, err)
	assert.Equal(t, "videos/a.mp4", out)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = services.PassthroughAnalyzer{}.Analyze(ctx, "videos/a.mp4")
	assert.Error(t, err)
}
