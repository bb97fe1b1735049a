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

// Package cloud defines the application configuration, loaded from TOML
// files, and the clients for the optional Google Cloud backends (Storage,
// Pub/Sub, BigQuery, IAM credentials).
//
// Structs:
//   - Storage: where videos, the user-video map, the report store and the output log live.
//   - BigQueryDataSource: optional warehouse mirror of the output log.
//   - Topics / TopicSubscription: Pub/Sub wiring with the offline analysis pipeline.
//   - Limits: request rate limits and upload size cap.
//   - Telemetry: OpenTelemetry export switch.
//   - Config: the root of all of the above.
package cloud

// AnalysisCompleteSubscription is the TopicSubscriptions key of the
// subscription that receives "analysis finished" notifications.
const AnalysisCompleteSubscription = "AnalysisComplete"

// Storage locates the flat-file stores and the video media.
type Storage struct {
	VideoDirectory   string `toml:"video_directory"`     // Local directory holding raw and annotated media.
	UserVideoMapFile string `toml:"user_video_map_file"` // JSON: identity -> [video, ...].
	ReportFile       string `toml:"report_file"`         // JSON: video -> {field: text}.
	OutputLogFile    string `toml:"output_log_file"`     // Append-only CSV of saved reports.
	VideoBucket      string `toml:"video_bucket"`        // When set, media is stored in this GCS bucket instead of VideoDirectory.
	SignedURLMinutes int    `toml:"signed_url_minutes"`  // Lifetime of media URLs signed for the bucket.
}

// BigQueryDataSource is the optional mirror of the output log. It is enabled
// when both names are set.
type BigQueryDataSource struct {
	DatasetName    string `toml:"dataset"`
	OutputLogTable string `toml:"output_log_table"`
}

// Topics names the Pub/Sub topics the dashboard publishes to.
type Topics struct {
	AnalysisRequest  string `toml:"analysis_request"`   // Uploaded videos are announced here for the GPU pipeline.
	PublishPerSecond int    `toml:"publish_per_second"` // Rate limit of analysis request publishing.
}

// TopicSubscription configures one Pub/Sub subscription.
type TopicSubscription struct {
	Name             string `toml:"name"`
	TimeoutInSeconds int    `toml:"timeout_in_seconds"`
}

// Limits caps request rates and sizes at the HTTP layer.
type Limits struct {
	UploadsPerMinute   int   `toml:"uploads_per_minute"`
	UploadBurst        int   `toml:"upload_burst"`
	MaxUploadMegabytes int64 `toml:"max_upload_megabytes"`
}

// Telemetry switches the Cloud Trace / Cloud Monitoring exporters.
type Telemetry struct {
	Enabled bool `toml:"enabled"`
}

// Config is the root configuration object.
type Config struct {
	Application struct {
		Name                      string `toml:"name"`
		GoogleProjectId           string `toml:"google_project_id"`
		GoogleLocation            string `toml:"location"`
		ListenAddress             string `toml:"listen_address"`
		LogFile                   string `toml:"log_file"`
		CredentialsFile           string `toml:"credentials_file"`
		SignerServiceAccountEmail string `toml:"signer_service_account_email"`
		SessionIdleMinutes        int    `toml:"session_idle_minutes"`
		SampleIdentity            string `toml:"sample_identity"` // Suggested to users that have no videos assigned.
	} `toml:"application"`
	Storage            Storage                      `toml:"storage"`
	BigQueryDataSource BigQueryDataSource           `toml:"big_query_data_source"`
	Topics             Topics                       `toml:"topics"`
	TopicSubscriptions map[string]TopicSubscription `toml:"topic_subscriptions"`
	Limits             Limits                       `toml:"limits"`
	Telemetry          Telemetry                    `toml:"telemetry"`
}

// NewConfig returns a Config populated with the defaults of a local,
// file-backed deployment. TOML files loaded on top override any of them.
func NewConfig() *Config {
	c := &Config{
		Storage: Storage{
			VideoDirectory:   "videos",
			UserVideoMapFile: "data/user_videos.json",
			ReportFile:       "data/report.json",
			OutputLogFile:    "data/output_report.csv",
			SignedURLMinutes: 15,
		},
		Topics:             Topics{PublishPerSecond: 5},
		TopicSubscriptions: make(map[string]TopicSubscription),
		Limits: Limits{
			UploadsPerMinute:   30,
			UploadBurst:        5,
			MaxUploadMegabytes: 512,
		},
	}
	c.Application.Name = "scope-dashboard"
	c.Application.ListenAddress = ":8080"
	c.Application.LogFile = "app.log"
	c.Application.SessionIdleMinutes = 720
	c.Application.SampleIdentity = "test@buffalo.edu"
	return c
}

// UsesVideoBucket reports whether media lives in Cloud Storage.
func (c *Config) UsesVideoBucket() bool {
	return c.Storage.VideoBucket != ""
}

// UsesBigQuery reports whether saved rows are mirrored to BigQuery.
func (c *Config) UsesBigQuery() bool {
	return c.BigQueryDataSource.DatasetName != "" && c.BigQueryDataSource.OutputLogTable != ""
}

// UsesPubSub reports whether any topic or subscription is configured.
func (c *Config) UsesPubSub() bool {
	return c.Topics.AnalysisRequest != "" || len(c.TopicSubscriptions) > 0
}
