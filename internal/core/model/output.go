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

package model

import (
	"path/filepath"
	"time"
)

// OutputLogHeader is the CSV header row, written once with the first row.
var OutputLogHeader = []string{"email", "original_video", "analyzed_video", "report"}

// OutputLogRow is one saved result. The bigquery tags are used by the
// optional warehouse mirror; SavedAt is not part of the CSV.
type OutputLogRow struct {
	Email         string    `json:"email" bigquery:"email"`
	OriginalVideo string    `json:"original_video" bigquery:"original_video"`
	AnalyzedVideo string    `json:"analyzed_video" bigquery:"analyzed_video"`
	Report        string    `json:"report" bigquery:"report"`
	SavedAt       time.Time `json:"saved_at" bigquery:"saved_at"`
}

// NewOutputLogRow builds the row for a session. The analyzed video column
// holds only the base name of the analyzed path.
func NewOutputLogRow(s *SessionState) *OutputLogRow {
	return &OutputLogRow{
		Email:         s.Identity,
		OriginalVideo: s.SelectedVideo,
		AnalyzedVideo: filepath.Base(s.AnalyzedVideoPath),
		Report:        s.ReportText,
		SavedAt:       time.Now().UTC(),
	}
}

// Record returns the CSV columns in header order.
func (r *OutputLogRow) Record() []string {
	return []string{r.Email, r.OriginalVideo, r.AnalyzedVideo, r.Report}
}

// OutputLogRowFromRecord is the inverse of Record. Short records are padded.
func OutputLogRowFromRecord(rec []string) *OutputLogRow {
	cols := make([]string, len(OutputLogHeader))
	copy(cols, rec)
	return &OutputLogRow{Email: cols[0], OriginalVideo: cols[1], AnalyzedVideo: cols[2], Report: cols[3]}
}
