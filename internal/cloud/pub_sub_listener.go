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
// This file defines a Pub/Sub listener that hands every message to a
// cor.Command.
//
// Logic Flow:
//  1. A PubSubListener is created for a subscription.
//  2. A Command (usually a workflow chain) is attached with SetCommand.
//  3. Listen starts a goroutine that receives messages until ctx is done.
//  4. Each message runs the command in a fresh cor.Context under its own span.
//  5. Success acks the message. A message the command rejects as malformed
//     is acked too (redelivery cannot fix it); any other failure nacks it.
package cloud

import (
	"context"
	"log/slog"

	"cloud.google.com/go/pubsub"
	"github.com/jaycherian/scope-dashboard/internal/core/apperr"
	"github.com/jaycherian/scope-dashboard/internal/core/cor"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PubSubListener connects one subscription to a processing command.
type PubSubListener struct {
	client       *pubsub.Client
	subscription *pubsub.Subscription
	command      cor.Command
}

// NewPubSubListener creates a listener for subscriptionID. command may be
// nil and attached later with SetCommand.
func NewPubSubListener(
	pubsubClient *pubsub.Client,
	subscriptionID string,
	command cor.Command,
) (cmd *PubSubListener, err error) {
	cmd = &PubSubListener{
		client:       pubsubClient,
		subscription: pubsubClient.Subscription(subscriptionID),
		command:      command,
	}
	return cmd, nil
}

// SetCommand attaches command unless one is already set.
func (m *PubSubListener) SetCommand(command cor.Command) {
	if m.command == nil {
		m.command = command
	}
}

// Listen receives messages in the background until ctx is cancelled.
func (m *PubSubListener) Listen(ctx context.Context) {
	if m.command == nil {
		slog.Warn("no command attached, not listening", "subscription", m.subscription.ID())
		return
	}
	slog.Info("listening", "subscription", m.subscription.ID())

	go func() {
		tracer := otel.Tracer("message-listener")

		err := m.subscription.Receive(ctx, func(_ context.Context, msg *pubsub.Message) {
			spanCtx, span := tracer.Start(ctx, "receive-message")
			defer span.End()
			span.SetAttributes(
				attribute.String("subscription", m.subscription.ID()),
				attribute.String("msg", string(msg.Data)),
			)

			chainCtx := cor.NewBaseContext(spanCtx)
			defer chainCtx.Close()
			chainCtx.Add(cor.CtxIn, string(msg.Data))

			m.command.Execute(chainCtx)

			if !chainCtx.HasErrors() {
				span.SetStatus(codes.Ok, "success")
				msg.Ack()
				return
			}

			err := chainCtx.Err()
			span.SetStatus(codes.Error, "failed")
			span.RecordError(err)
			if apperr.IsKind(err, apperr.ValidationError) {
				slog.Error("dropping malformed message", "subscription", m.subscription.ID(), "error", err)
				msg.Ack()
				return
			}
			slog.Error("error executing chain, message will be redelivered", "subscription", m.subscription.ID(), "error", err)
			msg.Nack()
		})

		if err != nil {
			slog.Error("error receiving data", "subscription", m.subscription.ID(), "error", err)
		}
	}()
}
