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
// This file wraps a Pub/Sub topic with a rate limiter so that a burst of
// uploads cannot flood the analysis pipeline's queue.
package cloud

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"golang.org/x/time/rate"
)

// MessagePublisher is the subset of a topic the application publishes with.
type MessagePublisher interface {
	Publish(ctx context.Context, data []byte, attributes map[string]string) (string, error)
}

// QuotaAwarePublisher decorates a Pub/Sub topic with a token bucket limiter.
// Publish blocks until a token is available or ctx is done.
type QuotaAwarePublisher struct {
	topic     *pubsub.Topic
	RateLimit *rate.Limiter
}

// NewQuotaAwarePublisher allows requestsPerSecond publishes per second with a
// burst of the same size. A non-positive rate disables limiting.
func NewQuotaAwarePublisher(topic *pubsub.Topic, requestsPerSecond int) *QuotaAwarePublisher {
	limit := rate.Inf
	burst := 1
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
		burst = requestsPerSecond
	}
	return &QuotaAwarePublisher{topic: topic, RateLimit: rate.NewLimiter(limit, burst)}
}

// Publish sends one message and waits for the server acknowledgement.
func (q *QuotaAwarePublisher) Publish(ctx context.Context, data []byte, attributes map[string]string) (string, error) {
	if err := q.RateLimit.Wait(ctx); err != nil {
		return "", fmt.Errorf("publish to %s rate limited: %w", q.topic.ID(), err)
	}
	id, err := q.topic.Publish(ctx, &pubsub.Message{Data: data, Attributes: attributes}).Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish to %s failed: %w", q.topic.ID(), err)
	}
	return id, nil
}

// Stop flushes pending messages and releases the topic's goroutines.
func (q *QuotaAwarePublisher) Stop() {
	q.topic.Stop()
}
