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

package cloud_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jaycherian/scope-dashboard/internal/cloud"
	test "github.com/jaycherian/scope-dashboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	c := cloud.NewConfig()
	assert.Equal(t, "videos", c.Storage.VideoDirectory)
	assert.Equal(t, "data/user_videos.json", c.Storage.UserVideoMapFile)
	assert.Equal(t, "data/report.json", c.Storage.ReportFile)
	assert.Equal(t, "data/output_report.csv", c.Storage.OutputLogFile)
	assert.Equal(t, "test@buffalo.edu", c.Application.SampleIdentity)
	assert.False(t, c.UsesVideoBucket())
	assert.False(t, c.UsesBigQuery())
	assert.False(t, c.UsesPubSub())
}

func TestLoadConfigOverlaysRuntime(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.toml"), []byte(`
[application]
listen_address = ":9090"

[storage]
report_file = "base/report.json"
video_bucket = "base-bucket"
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.staging.toml"), []byte(`
[storage]
report_file = "staging/report.json"

[big_query_data_source]
dataset = "scope"
output_log_table = "output_report"

[topic_subscriptions.AnalysisComplete]
name = "analysis-complete-sub"
`), 0o644))
	t.Setenv(cloud.EnvConfigFilePrefix, dir)
	t.Setenv(cloud.EnvConfigRuntime, "staging")

	c := cloud.NewConfig()
	require.NoError(t, cloud.LoadConfig(c))

	assert.Equal(t, ":9090", c.Application.ListenAddress)
	assert.Equal(t, "staging/report.json", c.Storage.ReportFile)
	assert.Equal(t, "data/user_videos.json", c.Storage.UserVideoMapFile, "defaults survive")
	assert.True(t, c.UsesVideoBucket())
	assert.True(t, c.UsesBigQuery())
	assert.True(t, c.UsesPubSub())
	assert.Equal(t, "analysis-complete-sub", c.TopicSubscriptions[cloud.AnalysisCompleteSubscription].Name)
}

func TestLoadConfigMissingFilesKeepDefaults(t *testing.T) {
	t.Setenv(cloud.EnvConfigFilePrefix, t.TempDir())
	t.Setenv(cloud.EnvConfigRuntime, "")

	c := cloud.NewConfig()
	require.NoError(t, cloud.LoadConfig(c))
	assert.Equal(t, cloud.NewConfig(), c)
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.toml"), []byte("[application\nname = "), 0o644))
	t.Setenv(cloud.EnvConfigFilePrefix, dir)

	assert.Error(t, cloud.LoadConfig(cloud.NewConfig()))
}

func TestRepositoryTestConfiguration(t *testing.T) {
	c := test.GetConfig()
	assert.Equal(t, "test@buffalo.edu", c.Application.SampleIdentity)
	assert.Equal(t, 5, c.Application.SessionIdleMinutes)
	assert.False(t, c.Telemetry.Enabled)
	assert.False(t, c.UsesPubSub())
}

func TestCloudClientsAreOptional(t *testing.T) {
	f := test.NewFixture(t)
	clients, err := cloud.NewCloudServiceClients(context.Background(), f.Config)
	require.NoError(t, err)
	defer clients.Close()

	assert.Nil(t, clients.StorageClient)
	assert.Nil(t, clients.PubsubClient)
	assert.Nil(t, clients.BiqQueryClient)
	assert.Nil(t, clients.AnalysisPublisher)
	assert.Empty(t, clients.PubSubListeners)
}

func TestParseGCSURI(t *testing.T) {
	for _, uri := range []string{
		"gs://scope-videos/raw/1100021003.mp4",
		"https://storage.googleapis.com/scope-videos/raw/1100021003.mp4",
		"https://storage.cloud.google.com/scope-videos/raw/1100021003.mp4",
		"https://storage.mtls.cloud.google.com/scope-videos/raw/1100021003.mp4",
	} {
		obj, err := cloud.ParseGCSURI(uri)
		require.NoError(t, err, uri)
		assert.Equal(t, "scope-videos", obj.Bucket)
		assert.Equal(t, "raw/1100021003.mp4", obj.Name)
		assert.Equal(t, "gs://scope-videos/raw/1100021003.mp4", obj.String())
	}

	for _, uri := range []string{"", "gs://", "gs://bucket-only", "gs://bucket/", "s3://bucket/a.mp4", "videos/a.mp4"} {
		_, err := cloud.ParseGCSURI(uri)
		assert.Error(t, err, uri)
	}
}
