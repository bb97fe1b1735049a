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

package main

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jaycherian/scope-dashboard/internal/cloud"
	"github.com/jaycherian/scope-dashboard/internal/core/model"
	test "github.com/jaycherian/scope-dashboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupCLI writes a configuration pointing at a fresh fixture and returns
// its directory.
func setupCLI(t *testing.T) (*test.Fixture, string) {
	t.Helper()
	// Restored after the test; the CLI sets them from its flags.
	t.Setenv(cloud.EnvConfigFilePrefix, "")
	t.Setenv(cloud.EnvConfigRuntime, "")

	f := test.NewFixture(t)
	dir := filepath.Join(f.Dir, "configs")
	s := f.Config.Storage
	f.WriteFile(t, filepath.Join(dir, ".env.toml"), []byte(fmt.Sprintf(
		"[storage]\nvideo_directory = %q\nuser_video_map_file = %q\nreport_file = %q\noutput_log_file = %q\n",
		s.VideoDirectory, s.UserVideoMapFile, s.ReportFile, s.OutputLogFile)))
	return f, dir
}

func runCLI(t *testing.T, configDir string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stdout)
	cmd.SetArgs(append([]string{"--config-dir", configDir, "--runtime", "cli"}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func TestVideosCommand(t *testing.T) {
	_, dir := setupCLI(t)

	out, err := runCLI(t, dir, "videos")
	require.NoError(t, err)
	assert.Contains(t, out, test.SampleIdentity)
	assert.Contains(t, out, test.MultiIdentity)

	out, err = runCLI(t, dir, "videos", test.MultiIdentity)
	require.NoError(t, err)
	assert.Contains(t, out, test.SecondVideo)

	out, err = runCLI(t, dir, "videos", "stranger@buffalo.edu")
	require.NoError(t, err)
	assert.Contains(t, out, "No videos assigned")
}

func TestSummaryAndReportCommands(t *testing.T) {
	_, dir := setupCLI(t)

	out, err := runCLI(t, dir, "summary", test.BareVideo)
	require.NoError(t, err)
	assert.Contains(t, out, model.NoReportFound)

	out, err = runCLI(t, dir, "report", test.SecondVideo)
	require.NoError(t, err)
	assert.Contains(t, out, "Gaze Tracking")
	assert.Contains(t, out, model.FieldGazeReportAlt)
	assert.Contains(t, out, "default")

	_, err = runCLI(t, dir, "report")
	assert.Error(t, err)
}

func TestLogCommand(t *testing.T) {
	f, dir := setupCLI(t)

	out, err := runCLI(t, dir, "log")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved results")

	require.NoError(t, f.OutputLog().Append(context.Background(), &model.OutputLogRow{
		Email: test.SampleIdentity, OriginalVideo: test.SampleVideo, AnalyzedVideo: test.SampleVideo, Report: test.SampleReport,
	}))

	out, err = runCLI(t, dir, "log", "--email", test.SampleIdentity)
	require.NoError(t, err)
	assert.Contains(t, out, "Overall cognitive state: attentive.")

	out, err = runCLI(t, dir, "log", "--email", "other@buffalo.edu")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved results")
}

func TestLogCommandMirrorRequiresBigQuery(t *testing.T) {
	_, dir := setupCLI(t)

	_, err := runCLI(t, dir, "log", "--mirror", "--email", test.SampleIdentity)
	assert.ErrorContains(t, err, "no BigQuery mirror is configured")
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"Email", "Videos"}, [][]string{{"a@buffalo.edu", "2"}, {"b@buffalo.edu"}}, []columnAlignment{alignLeft, alignRight})
	assert.Contains(t, out, "Email")
	assert.Contains(t, out, "a@buffalo.edu")
	assert.Equal(t, "", renderTable(nil, nil, nil))
}
