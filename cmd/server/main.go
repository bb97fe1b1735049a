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

// Package main is the entry point for the SCOPE dashboard server.
//
// The server exposes the dashboard's JSON API with gin: the login, select,
// analyze, report and save flow, video uploads, media streaming and a stats
// endpoint. It is instrumented with OpenTelemetry and logs JSON in the Cloud
// Logging format. When Pub/Sub is configured a background listener tracks
// the offline analysis of uploaded videos.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/jaycherian/scope-dashboard/internal/api"
	"github.com/jaycherian/scope-dashboard/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func main() {
	config := GetConfig()

	closeLog, err := telemetry.SetupLogging(config.Application.LogFile)
	if err != nil {
		log.Fatal(err)
	}
	defer closeLog()
	slog.Info("logging initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTelemetry, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("failed to setup OpenTelemetry", "error", err)
		log.Fatal(err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			slog.Error("telemetry shutdown failed", "error", err)
		}
	}()

	if err := InitState(ctx); err != nil {
		slog.Error("failed to initialize state", "error", err)
		log.Fatal(err)
	}
	defer state.cloud.Close()
	slog.Info("initialized state")

	r := api.NewRouter(&api.Dependencies{
		Controller:     state.controller,
		OutputLog:      state.outputLog,
		UploadLimiter:  api.NewUploadLimiter(config.Limits.UploadsPerMinute, config.Limits.UploadBurst),
		MaxUploadBytes: config.Limits.MaxUploadMegabytes << 20,
	},
		otelgin.Middleware(config.Application.Name),
		cors.New(corsConfig()),
	)

	srv := &http.Server{
		Addr:              config.Application.ListenAddress,
		Handler:           r,
		ReadHeaderTimeout: 20 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to listen", "error", err)
			cancel()
		}
	}()
	slog.Info("server ready", "address", config.Application.ListenAddress)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	cancel()
	slog.Info("server exiting")
}

// corsConfig allows any origin, with credentials so the browser sends the
// session cookie.
func corsConfig() cors.Config {
	c := cors.DefaultConfig()
	c.AllowOriginFunc = func(string) bool { return true }
	c.AllowCredentials = true
	return c
}
