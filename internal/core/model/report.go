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
// describes the pre-computed report record produced by the offline analysis
// pipeline and the four multimodal views (AU, VA, eye blink, gaze) built from it.
package model

import (
	"fmt"
	"strings"
)

// Report record field names as written by the offline pipeline.
const (
	FieldTextReport     = "text_report"
	FieldAUVideo        = "AU_video"
	FieldAUReport       = "AU_report"
	FieldVAPlot         = "VA_plot"
	FieldVAReport       = "VA_report"
	FieldEyeblinkVideo  = "Eyeblink_video"
	FieldEyeblinkReport = "Eyeblink_report"
	FieldGazeTracking   = "Gaze_tracking"
	FieldGazeReport     = "Gaze_report"
	// FieldGazeReportAlt is the spelling some producer runs emit. It is read
	// after FieldGazeReport and reported back through Modality.ReportKey.
	FieldGazeReportAlt = "Gaze_reprot"
)

// NoReportFound is returned as the summary of a video without a text report.
const NoReportFound = "No report found for this video."

// ReportRecord is the per-video entry of the report store: field name to text
// or media file name. Absent fields are filled with defaults by the reader.
type ReportRecord map[string]string

// Lookup returns the first non-absent value among keys together with the key
// that supplied it.
func (r ReportRecord) Lookup(keys ...string) (value string, key string, ok bool) {
	for _, k := range keys {
		if v, found := r[k]; found {
			return v, k, true
		}
	}
	return "", "", false
}

// MediaKind tells a front end how to render a modality's media file.
type MediaKind string

const (
	MediaVideo MediaKind = "video"
	MediaImage MediaKind = "image"
)

// Modality is one tab of the multimodal analysis view.
type Modality struct {
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	Media     string    `json:"media"`      // File name relative to the videos directory.
	MediaKind MediaKind `json:"media_kind"` // video or image.
	Caption   string    `json:"caption,omitempty"`
	Report    string    `json:"report"`
	ReportKey string    `json:"report_key,omitempty"` // Record field that supplied Report; empty when defaulted.
}

// modalitySource describes where a modality reads its values from and what it
// falls back to. mediaDefault is a format string taking the video stem.
type modalitySource struct {
	name          string
	title         string
	kind          MediaKind
	caption       string
	mediaKey      string
	mediaDefault  string
	reportKeys    []string
	reportDefault string
}

var modalitySources = []modalitySource{
	{
		name: "au", title: "Facial Action Unit (AU) Analysis", kind: MediaVideo,
		mediaKey: FieldAUVideo, mediaDefault: "%s_AU.mp4",
		reportKeys: []string{FieldAUReport}, reportDefault: "No AU report available.",
	},
	{
		name: "va", title: "Valence-Arousal (VA) Analysis", kind: MediaImage, caption: "Valence-Arousal Over Time",
		mediaKey: FieldVAPlot, mediaDefault: "%s_VA_plot.png",
		reportKeys: []string{FieldVAReport}, reportDefault: "No VA report available.",
	},
	{
		name: "eyeblink", title: "Eye Blink Detection", kind: MediaVideo,
		mediaKey: FieldEyeblinkVideo, mediaDefault: "eyeblink_%s.mp4",
		reportKeys: []string{FieldEyeblinkReport}, reportDefault: "No blink report available.",
	},
	{
		name: "gaze", title: "Gaze Tracking", kind: MediaVideo,
		mediaKey: FieldGazeTracking, mediaDefault: "gaze_%s.mp4",
		reportKeys: []string{FieldGazeReport, FieldGazeReportAlt}, reportDefault: "No gaze report available.",
	},
}

// VideoStem returns the part of a video file name before its first dot,
// e.g. "1100021003.mp4" -> "1100021003".
func VideoStem(video string) string {
	stem, _, _ := strings.Cut(video, ".")
	return stem
}

// BuildModalities assembles the AU, VA, eye blink and gaze views for video,
// applying the naming-convention defaults for absent fields.
func BuildModalities(video string, record ReportRecord) []Modality {
	stem := VideoStem(video)
	out := make([]Modality, 0, len(modalitySources))
	for _, src := range modalitySources {
		m := Modality{
			Name:      src.name,
			Title:     src.title,
			MediaKind: src.kind,
			Caption:   src.caption,
			Media:     fmt.Sprintf(src.mediaDefault, stem),
			Report:    src.reportDefault,
		}
		if v, ok := record[src.mediaKey]; ok {
			m.Media = v
		}
		if v, key, ok := record.Lookup(src.reportKeys...); ok {
			m.Report = v
			m.ReportKey = key
		}
		out = append(out, m)
	}
	return out
}

// ReportHighlight returns the first line of a report, trimmed. It is shown
// emphasized above the full text.
func ReportHighlight(report string) string {
	first, _, _ := strings.Cut(report, "\n")
	return strings.TrimSpace(first)
}
