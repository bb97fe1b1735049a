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

// Package model defines the data structures for the application. This file
// contains the upload side: the request handed to the upload workflow and the
// Pub/Sub payloads exchanged with the offline GPU analysis pipeline.
package model

import "time"

// UploadStatus tracks an uploaded video through the offline pipeline.
type UploadStatus string

const (
	UploadNone          UploadStatus = ""
	UploadWaitingForGPU UploadStatus = "waiting_for_gpu"
	UploadReady         UploadStatus = "ready"
	UploadFailed        UploadStatus = "failed"
)

// UploadRequest is the input of the upload workflow. The uploaded bytes have
// already been spooled to LocalPath by the HTTP layer.
type UploadRequest struct {
	Filename  string // Original base file name, used as the video identifier.
	LocalPath string // Spooled temporary copy of the upload.
	Identity  string // Identity of the uploading session, may be empty.
}

// AnalysisRequest is published when a new video needs GPU analysis.
type AnalysisRequest struct {
	Video       string    `json:"video"`
	Identity    string    `json:"identity,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// AnalysisNotification is received when the offline pipeline finishes a video.
type AnalysisNotification struct {
	Video   string       `json:"video"`
	Status  UploadStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}
