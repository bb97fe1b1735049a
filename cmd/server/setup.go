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

// Package main contains the setup and initialization logic for the
// application's state: configuration, the optional Google Cloud clients, the
// stores and the session/form controller.
//
// Functions:
//   - SetupOS: defaults the configuration directory and runtime.
//   - GetConfig: loads the configuration once.
//   - InitState: builds every dependency and starts the background work.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jaycherian/scope-dashboard/internal/cloud"
	"github.com/jaycherian/scope-dashboard/internal/core/dashboard"
	"github.com/jaycherian/scope-dashboard/internal/core/services"
	"github.com/jaycherian/scope-dashboard/internal/core/workflow"
)

// sessionSweepInterval is how often idle sessions are expired.
const sessionSweepInterval = time.Minute

// StateManager holds the shared dependencies of the server.
type StateManager struct {
	config     *cloud.Config
	cloud      *cloud.ServiceClients
	controller *dashboard.Controller
	outputLog  services.OutputLog
	uploads    *services.UploadTracker
}

var state = &StateManager{}

// SetupOS points the configuration loader at the configs directory and the
// local runtime unless the environment already says otherwise.
func SetupOS() (err error) {
	if os.Getenv(cloud.EnvConfigFilePrefix) == "" {
		if err = os.Setenv(cloud.EnvConfigFilePrefix, "configs"); err != nil {
			return err
		}
	}
	if os.Getenv(cloud.EnvConfigRuntime) == "" {
		err = os.Setenv(cloud.EnvConfigRuntime, cloud.DefaultRuntime)
	}
	return err
}

// GetConfig loads the configuration on first use.
func GetConfig() *cloud.Config {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to setup os for configuration: %v\n", err)
		}
		config := cloud.NewConfig()
		if err := cloud.LoadConfig(config); err != nil {
			log.Fatalf("failed to load configuration: %v\n", err)
		}
		state.config = config
	}
	return state.config
}

// newVideoStore returns the bucket store when a bucket is configured and the
// local directory store otherwise.
func newVideoStore(config *cloud.Config, cloudClients *cloud.ServiceClients) services.VideoStore {
	if config.UsesVideoBucket() {
		return &services.GCSVideoStore{
			StorageClient: cloudClients.StorageClient,
			IAMClient:     cloudClients.IAMClient,
			Bucket:        config.Storage.VideoBucket,
			SignerEmail:   config.Application.SignerServiceAccountEmail,
			URLExpiry:     time.Duration(config.Storage.SignedURLMinutes) * time.Minute,
		}
	}
	return services.NewLocalVideoStore(config.Storage.VideoDirectory)
}

// InitState creates the clients, stores, workflows and controller, then
// starts the session sweeper and the Pub/Sub listeners. Everything in the
// background stops when ctx is cancelled.
func InitState(ctx context.Context) error {
	config := GetConfig()

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		return err
	}
	state.cloud = cloudClients

	csvLog := services.NewCSVOutputLog(config.Storage.OutputLogFile)
	state.outputLog = csvLog
	var mirror services.OutputLog
	if cloudClients.BiqQueryClient != nil {
		mirror = &services.BigQueryOutputLog{
			BigqueryClient: cloudClients.BiqQueryClient,
			DatasetName:    config.BigQueryDataSource.DatasetName,
			Table:          config.BigQueryDataSource.OutputLogTable,
		}
	}

	var publisher cloud.MessagePublisher
	if cloudClients.AnalysisPublisher != nil {
		publisher = cloudClients.AnalysisPublisher
	}

	videos := newVideoStore(config, cloudClients)
	state.uploads = services.NewUploadTracker()
	sessions := services.NewSessionManager(time.Duration(config.Application.SessionIdleMinutes) * time.Minute)

	state.controller = &dashboard.Controller{
		Sessions:       sessions,
		Directory:      services.NewVideoDirectory(config.Storage.UserVideoMapFile),
		Reports:        services.NewReportStore(config.Storage.ReportFile),
		Analyzer:       services.PassthroughAnalyzer{},
		Videos:         videos,
		Uploads:        state.uploads,
		SaveWorkflow:   workflow.NewSaveReportWorkflow(csvLog, mirror),
		UploadWorkflow: workflow.NewVideoUploadWorkflow(videos, state.uploads, publisher),
		SampleIdentity: config.Application.SampleIdentity,
	}

	go sessions.Run(ctx, sessionSweepInterval)
	SetupListeners(config, cloudClients, ctx)
	return nil
}
