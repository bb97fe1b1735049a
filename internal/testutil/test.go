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

// Package test provides utility functions and sample data to support the
// application's test suite. It loads the test configuration of the
// repository and builds isolated fixtures (user-video map, report document,
// videos directory, output log) in a temporary directory so tests never
// touch the real data files.
package test

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jaycherian/scope-dashboard/internal/cloud"
	"github.com/jaycherian/scope-dashboard/internal/core/dashboard"
	"github.com/jaycherian/scope-dashboard/internal/core/model"
	"github.com/jaycherian/scope-dashboard/internal/core/services"
	"github.com/jaycherian/scope-dashboard/internal/core/workflow"
)

// Sample data written by NewFixture.
const (
	SampleIdentity = "test@buffalo.edu"
	MultiIdentity  = "demo@buffalo.edu"
	EmptyIdentity  = "nobody@buffalo.edu" // Present in the map with no videos.
	SampleVideo    = "1100021003.mp4"
	SecondVideo    = "1100021007.mp4" // Uses the alternate gaze report key.
	BareVideo      = "1100021009.mp4" // Has no report record at all.
	SampleReport   = "  Overall cognitive state: attentive.  \nBrow lowering increases after minute 6."
	SecondReport   = "Overall cognitive state: engaged."
	SecondGaze     = "Gaze on screen for 94% of frames."
)

// StateManager caches the repository test configuration.
type StateManager struct {
	config *cloud.Config
}

var state = &StateManager{}

// HandleErr fails the test if err is not nil.
func HandleErr(err error, t testing.TB) {
	t.Helper()
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// ConfigDir returns the repository's configs directory.
func ConfigDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "configs")
}

// SetupOS points the configuration loader at the repository configs and the
// "test" runtime overlay.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, ConfigDir())
	if err != nil {
		return err
	}
	return os.Setenv(cloud.EnvConfigRuntime, "test")
}

// GetConfig loads the repository test configuration once.
func GetConfig() *cloud.Config {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		if err := cloud.LoadConfig(config); err != nil {
			log.Fatalf("failed to load test configuration: %v\n", err)
		}
		state.config = config
	}
	return state.config
}

// MP4Bytes returns a minimal buffer with an ISO base media file header,
// enough for content sniffing to recognise it as MP4.
func MP4Bytes() []byte {
	header := []byte("\x00\x00\x00\x18ftypisom\x00\x00\x02\x00isomiso2avc1mp41")
	out := make([]byte, 1024)
	copy(out, header)
	return out
}

// Fixture is an isolated set of stores in a temporary directory.
type Fixture struct {
	Dir    string
	Config *cloud.Config
}

// NewFixture writes the sample stores into t.TempDir and returns a config
// pointing at them. The output log does not exist until the first save.
func NewFixture(t testing.TB) *Fixture {
	t.Helper()
	dir := t.TempDir()

	config := cloud.NewConfig()
	config.Application.LogFile = ""
	config.Storage.VideoDirectory = filepath.Join(dir, "videos")
	config.Storage.UserVideoMapFile = filepath.Join(dir, "data", "user_videos.json")
	config.Storage.ReportFile = filepath.Join(dir, "data", "report.json")
	config.Storage.OutputLogFile = filepath.Join(dir, "data", "output_report.csv")

	f := &Fixture{Dir: dir, Config: config}
	f.WriteJSON(t, config.Storage.UserVideoMapFile, map[string][]string{
		SampleIdentity: {SampleVideo},
		MultiIdentity:  {SampleVideo, SecondVideo, BareVideo},
		EmptyIdentity:  {},
	})
	f.WriteJSON(t, config.Storage.ReportFile, map[string]model.ReportRecord{
		SampleVideo: {
			model.FieldTextReport: SampleReport,
			model.FieldAUVideo:    "custom_AU.mp4",
			model.FieldAUReport:   "AU4 dominates.",
			model.FieldVAReport:   "Valence neutral.",
		},
		SecondVideo: {
			model.FieldTextReport:    SecondReport,
			model.FieldGazeReportAlt: SecondGaze,
		},
	})
	for _, v := range []string{SampleVideo, SecondVideo, BareVideo} {
		f.WriteFile(t, filepath.Join(config.Storage.VideoDirectory, v), MP4Bytes())
	}
	return f
}

// WriteJSON marshals v to path, creating parent directories.
func (f *Fixture) WriteJSON(t testing.TB, path string, v any) {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal fixture %s: %v", path, err)
	}
	f.WriteFile(t, path, data)
}

// WriteFile writes data to path, creating parent directories.
func (f *Fixture) WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// OutputLog returns the CSV output log of the fixture.
func (f *Fixture) OutputLog() *services.CSVOutputLog {
	return services.NewCSVOutputLog(f.Config.Storage.OutputLogFile)
}

// NewController wires a controller over the fixture's local stores. When
// publisher is not nil uploads are announced through it.
func (f *Fixture) NewController(publisher *FakePublisher) *dashboard.Controller {
	videos := services.NewLocalVideoStore(f.Config.Storage.VideoDirectory)
	uploads := services.NewUploadTracker()
	var analysis cloud.MessagePublisher
	if publisher != nil {
		analysis = publisher
	}
	return &dashboard.Controller{
		Sessions:       services.NewSessionManager(time.Hour),
		Directory:      services.NewVideoDirectory(f.Config.Storage.UserVideoMapFile),
		Reports:        services.NewReportStore(f.Config.Storage.ReportFile),
		Analyzer:       services.PassthroughAnalyzer{},
		Videos:         videos,
		Uploads:        uploads,
		SaveWorkflow:   workflow.NewSaveReportWorkflow(f.OutputLog(), nil),
		UploadWorkflow: workflow.NewVideoUploadWorkflow(videos, uploads, analysis),
		SampleIdentity: f.Config.Application.SampleIdentity,
	}
}

// PublishedMessage is a message recorded by FakePublisher.
type PublishedMessage struct {
	Data       []byte
	Attributes map[string]string
}

// FakePublisher records published messages instead of sending them.
type FakePublisher struct {
	mu       sync.Mutex
	Messages []PublishedMessage
	Err      error // Returned by Publish when set.
}

// Publish implements cloud.MessagePublisher.
func (p *FakePublisher) Publish(_ context.Context, data []byte, attributes map[string]string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return "", p.Err
	}
	p.Messages = append(p.Messages, PublishedMessage{Data: data, Attributes: attributes})
	return "message-" + strconv.Itoa(len(p.Messages)), nil
}

// Count returns the number of published messages.
func (p *FakePublisher) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Messages)
}
