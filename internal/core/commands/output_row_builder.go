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
// first step of the save workflow: checking that the session has both an
// analyzed video and a report, and turning it into an output log row.
package commands

import (
	"github.com/jaycherian/scope-dashboard/internal/core/apperr"
	"github.com/jaycherian/scope-dashboard/internal/core/cor"
	"github.com/jaycherian/scope-dashboard/internal/core/model"
)

// OutputRowBuilder converts a *model.SessionState into a *model.OutputLogRow.
type OutputRowBuilder struct {
	cor.BaseCommand
}

// NewOutputRowBuilder creates the command.
func NewOutputRowBuilder(name string) *OutputRowBuilder {
	return &OutputRowBuilder{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute fails with PreconditionNotMet when the analysis or the report is
// missing; nothing is written in that case.
func (c *OutputRowBuilder) Execute(context cor.Context) {
	session, ok := context.Get(c.GetInputParam()).(*model.SessionState)
	if !ok {
		c.Fail(context, apperr.New(apperr.Internal, "save workflow started without a session"))
		return
	}
	if session.AnalyzedVideoPath == "" || session.ReportText == "" {
		c.Fail(context, apperr.New(apperr.PreconditionNotMet, "please analyze the video and generate the report before saving"))
		return
	}
	row := model.NewOutputLogRow(session)
	context.Add(ParamOutputRow, row)
	c.Succeed(context, row)
}
