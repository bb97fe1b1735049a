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

// Package services contains the data access layer of the dashboard. This
// file, `reports.go`, defines the ReportStore, the reader of the pre-computed
// per-video report document produced by the offline analysis pipeline.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"os"

	"github.com/jaycherian/scope-dashboard/internal/core/apperr"
	"github.com/jaycherian/scope-dashboard/internal/core/model"
)

// ReportStore reads the report document. Like the VideoDirectory it re-reads
// the file on every call.
type ReportStore struct {
	ReportFile string // JSON object: video -> {field: text}.
}

// NewReportStore creates a store backed by reportFile.
func NewReportStore(reportFile string) *ReportStore {
	return &ReportStore{ReportFile: reportFile}
}

func (s *ReportStore) load(ctx context.Context) (map[string]model.ReportRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.ReportFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.Wrap(apperr.StoreUnavailable, err, "the report store is missing")
		}
		return nil, apperr.Wrap(apperr.StoreUnavailable, err, "the report store could not be read")
	}
	out := make(map[string]model.ReportRecord)
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, apperr.Wrap(apperr.StoreUnavailable, err, "the report store is malformed")
	}
	return out, nil
}

// ReadSummary returns the text report of video, or model.NoReportFound when
// the video or its text_report field is absent.
func (s *ReportStore) ReadSummary(ctx context.Context, video string) (string, error) {
	all, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	if text, ok := all[video][model.FieldTextReport]; ok {
		return text, nil
	}
	return model.NoReportFound, nil
}

// ReadFull returns the whole record of video. An absent video yields an
// empty record so callers fall back to the naming-convention defaults.
func (s *ReportStore) ReadFull(ctx context.Context, video string) (model.ReportRecord, error) {
	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	record, ok := all[video]
	if !ok || record == nil {
		return make(model.ReportRecord), nil
	}
	return maps.Clone(record), nil
}

// Videos returns the number of videos that have a record.
func (s *ReportStore) Videos(ctx context.Context) (int, error) {
	all, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(all), nil
}
