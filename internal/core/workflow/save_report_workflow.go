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

// Package workflow defines the high-level business logic orchestrations,
// combining commands into pipelines. This file implements saving a session's
// result to the output log.
package workflow

import (
	"github.com/jaycherian/scope-dashboard/internal/core/commands"
	"github.com/jaycherian/scope-dashboard/internal/core/cor"
	"github.com/jaycherian/scope-dashboard/internal/core/services"
)

// SaveReportWorkflow turns a *model.SessionState (the input parameter) into
// exactly one output log row. The chain is:
//  1. build the row, failing with PreconditionNotMet if analysis or report is missing;
//  2. append it to the CSV log;
//  3. mirror it to BigQuery, when a mirror is configured (best effort).
type SaveReportWorkflow struct {
	cor.BaseCommand
	outputLog services.OutputLog
	mirror    services.OutputLog
	chain     cor.Chain
}

// Execute runs the chain.
func (w *SaveReportWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

func (w *SaveReportWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())
	out.AddCommand(commands.NewOutputRowBuilder("check-save-preconditions"))
	out.AddCommand(commands.NewOutputLogAppend("append-output-log", w.outputLog, commands.GetOutputRowParameterName(), true))
	if w.mirror != nil {
		out.AddCommand(commands.NewOutputLogAppend("mirror-output-row-to-bigquery", w.mirror, commands.GetOutputRowParameterName(), false))
	}
	w.chain = out
}

// NewSaveReportWorkflow creates the workflow. mirror may be nil.
func NewSaveReportWorkflow(outputLog services.OutputLog, mirror services.OutputLog) *SaveReportWorkflow {
	out := &SaveReportWorkflow{
		BaseCommand: *cor.NewBaseCommand("save-report-workflow"),
		outputLog:   outputLog,
		mirror:      mirror,
	}
	out.initializeChain()
	return out
}
