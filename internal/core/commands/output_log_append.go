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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface. This file defines the
// command that persists an output row to an OutputLog.
//
// Logic Flow:
//  1. Retrieve the *model.OutputLogRow from the row parameter.
//  2. Append it to the configured log (the CSV file, or the BigQuery mirror).
//  3. A required log records the failure on the context, which stops the
//     chain. A best-effort log (the mirror) only logs and counts it, because
//     the row is already safe in the CSV file.
package commands

import (
	"log/slog"

	"github.com/jaycherian/scope-dashboard/internal/core/cor"
	"github.com/jaycherian/scope-dashboard/internal/core/model"
	"github.com/jaycherian/scope-dashboard/internal/core/services"
)

// OutputLogAppend writes the row to an OutputLog.
type OutputLogAppend struct {
	cor.BaseCommand
	log      services.OutputLog
	rowParam string
	required bool
}

// NewOutputLogAppend creates a command appending to log. When required is
// false, failures do not fail the workflow.
func NewOutputLogAppend(name string, log services.OutputLog, rowParam string, required bool) *OutputLogAppend {
	return &OutputLogAppend{BaseCommand: *cor.NewBaseCommand(name), log: log, rowParam: rowParam, required: required}
}

// IsExecutable requires the row to be present.
func (s *OutputLogAppend) IsExecutable(context cor.Context) bool {
	return context != nil && context.GetContext() != nil && context.Get(s.rowParam) != nil
}

// Execute appends the row.
func (s *OutputLogAppend) Execute(context cor.Context) {
	row := context.Get(s.rowParam).(*model.OutputLogRow)

	if err := s.log.Append(context.GetContext(), row); err != nil {
		if !s.required {
			slog.WarnContext(context.GetContext(), "best-effort output log append failed",
				"command", s.GetName(), "video", row.OriginalVideo, "error", err)
			if s.ErrorCounter != nil {
				s.ErrorCounter.Add(context.GetContext(), 1)
			}
			context.Add(s.GetOutputParam(), row)
			return
		}
		s.Fail(context, err)
		return
	}

	slog.InfoContext(context.GetContext(), "output row saved",
		"command", s.GetName(), "email", row.Email, "video", row.OriginalVideo)
	s.Succeed(context, row)
}
