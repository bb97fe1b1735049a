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

// Package cloud provides components for interacting with Google Cloud services.
// This file creates and holds the Google Cloud clients. Every backend is
// optional: a purely local deployment (videos directory, JSON stores, CSV
// log) creates no client at all, and each client is only dialed when the
// configuration names something that needs it.
//
// Logic Flow:
//  1. NewCloudServiceClients inspects the Config.
//  2. A video bucket creates a Storage client (and an IAM credentials client
//     when a signer account is configured, for V4 URL signing).
//  3. A topic or subscription creates a Pub/Sub client, the rate limited
//     analysis request publisher and one listener per subscription.
//  4. A BigQuery mirror creates a BigQuery client.
package cloud

import (
	"context"
	"log/slog"

	"cloud.google.com/go/bigquery"
	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// ServiceClients holds the Google Cloud clients in use. Fields for backends
// that are not configured stay nil.
type ServiceClients struct {
	StorageClient     *storage.Client
	PubsubClient      *pubsub.Client
	BiqQueryClient    *bigquery.Client
	IAMClient         *credentials.IamCredentialsClient
	AnalysisPublisher *QuotaAwarePublisher       // Publishes analysis requests; nil without a topic.
	PubSubListeners   map[string]*PubSubListener // Keyed by the TopicSubscriptions key.
}

// Close releases every client that was created.
func (c *ServiceClients) Close() {
	if c.AnalysisPublisher != nil {
		c.AnalysisPublisher.Stop()
	}
	if c.StorageClient != nil {
		_ = c.StorageClient.Close()
	}
	if c.PubsubClient != nil {
		_ = c.PubsubClient.Close()
	}
	if c.BiqQueryClient != nil {
		_ = c.BiqQueryClient.Close()
	}
	if c.IAMClient != nil {
		_ = c.IAMClient.Close()
	}
}

// clientOptions returns the options shared by all clients.
func clientOptions(config *Config) []option.ClientOption {
	var opts []option.ClientOption
	if config.Application.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(config.Application.CredentialsFile))
	}
	return opts
}

// NewCloudServiceClients dials the clients required by config. On error,
// clients created so far are closed.
func NewCloudServiceClients(ctx context.Context, config *Config) (cloud *ServiceClients, err error) {
	cloud = &ServiceClients{PubSubListeners: make(map[string]*PubSubListener)}
	defer func() {
		if err != nil {
			cloud.Close()
			cloud = nil
		}
	}()
	opts := clientOptions(config)

	if config.UsesVideoBucket() {
		if cloud.StorageClient, err = storage.NewClient(ctx, opts...); err != nil {
			return cloud, err
		}
		if config.Application.SignerServiceAccountEmail != "" {
			if cloud.IAMClient, err = credentials.NewIamCredentialsClient(ctx, opts...); err != nil {
				return cloud, err
			}
		}
		slog.Info("cloud storage enabled", "bucket", config.Storage.VideoBucket)
	}

	if config.UsesPubSub() {
		if cloud.PubsubClient, err = pubsub.NewClient(ctx, config.Application.GoogleProjectId, opts...); err != nil {
			return cloud, err
		}
		if config.Topics.AnalysisRequest != "" {
			topic := cloud.PubsubClient.Topic(config.Topics.AnalysisRequest)
			cloud.AnalysisPublisher = NewQuotaAwarePublisher(topic, config.Topics.PublishPerSecond)
			slog.Info("analysis requests enabled", "topic", config.Topics.AnalysisRequest)
		}
		for key, sub := range config.TopicSubscriptions {
			listener, err := NewPubSubListener(cloud.PubsubClient, sub.Name, nil)
			if err != nil {
				return cloud, err
			}
			cloud.PubSubListeners[key] = listener
		}
	}

	if config.UsesBigQuery() {
		if cloud.BiqQueryClient, err = bigquery.NewClient(ctx, config.Application.GoogleProjectId, opts...); err != nil {
			return cloud, err
		}
		slog.Info("bigquery mirror enabled",
			"dataset", config.BigQueryDataSource.DatasetName,
			"table", config.BigQueryDataSource.OutputLogTable)
	}

	return cloud, nil
}
