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
// holds the per-session state that drives the dashboard: who is logged in,
// which video is selected, and how far the analysis/report flow has progressed.
package model

import (
	"slices"
	"time"
)

// Stage is the position of a session in the dashboard flow. It is always
// derived from the session fields, never stored.
type Stage string

const (
	StageLoggedOut       Stage = "logged_out"
	StageLoggedIn        Stage = "logged_in"
	StageVideoSelected   Stage = "video_selected"
	StageAnalyzed        Stage = "analyzed"
	StageReportGenerated Stage = "report_generated"
)

// SessionState is the mutable record owned by a single interaction session.
// It is created empty when the session starts and only changes in response
// to explicit user actions.
type SessionState struct {
	ID                string    `json:"id"`
	Identity          string    `json:"email"`
	Videos            []string  `json:"videos"`              // Videos resolved for Identity at login.
	SelectedVideo     string    `json:"selected_video"`      // The video identifier (file name) chosen by the user.
	AnalyzedVideoPath string    `json:"analyzed_video_path"` // Result of the analysis step.
	ReportText        string    `json:"report_text"`
	ShowAnalysisTabs  bool      `json:"show_analysis_tabs"`
	UploadedFilename  string    `json:"uploaded_filename"` // Last file written by an upload in this session.
	CreateDate        time.Time `json:"create_date"`
	LastActivity      time.Time `json:"last_activity"`
}

// NewSessionState creates an empty session with the given id.
func NewSessionState(id string) *SessionState {
	now := time.Now()
	return &SessionState{
		ID:           id,
		Videos:       make([]string, 0),
		CreateDate:   now,
		LastActivity: now,
	}
}

// Stage derives the current stage from the session fields.
func (s *SessionState) Stage() Stage {
	switch {
	case s.Identity == "":
		return StageLoggedOut
	case s.SelectedVideo == "":
		return StageLoggedIn
	case s.ReportText != "":
		return StageReportGenerated
	case s.AnalyzedVideoPath != "":
		return StageAnalyzed
	default:
		return StageVideoSelected
	}
}

// HasVideo reports whether video was resolved for the current identity.
func (s *SessionState) HasVideo(video string) bool {
	return slices.Contains(s.Videos, video)
}

// ResetAnalysis drops the results of the analysis and report steps.
func (s *SessionState) ResetAnalysis() {
	s.AnalyzedVideoPath = ""
	s.ReportText = ""
	s.ShowAnalysisTabs = false
}

// ResetIdentity clears everything tied to the previous identity. The
// uploaded file name belongs to the session and survives identity changes.
func (s *SessionState) ResetIdentity() {
	s.Identity = ""
	s.Videos = make([]string, 0)
	s.SelectedVideo = ""
	s.ResetAnalysis()
}

// Clone returns a deep copy that callers may read without holding the
// session lock.
func (s *SessionState) Clone() *SessionState {
	out := *s
	out.Videos = slices.Clone(s.Videos)
	if out.Videos == nil {
		out.Videos = make([]string, 0)
	}
	return &out
}
