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

// Package cor (Chain of Responsibility) is the small workflow engine used by
// the dashboard. A workflow is a Chain of Commands sharing one Context; each
// command reads its input from the context, does one thing, and either
// writes an output or records an error. The chain pipes each command's output
// into the next command's input and stops at the first error unless told
// otherwise.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Default keys for the piped input and output of a command.
const (
	CtxIn  = "__IN__"
	CtxOut = "__OUT__"
)

// Context is the property bag shared by all commands of one workflow run.
type Context interface {
	// SetContext replaces the Go context carried by the workflow (spans,
	// cancellation, deadlines).
	SetContext(context context.Context)
	GetContext() context.Context

	// Add stores a value under key and returns the Context for chaining.
	Add(key string, value interface{}) Context
	Get(key string) interface{}
	Remove(key string)

	// AddError records a failure, keyed by the command that produced it.
	AddError(key string, err error)
	GetErrors() map[string]error
	HasErrors() bool
	// Err joins the recorded errors in the order they were added, or nil.
	Err() error

	// AddTempFile registers a file to delete when the workflow is closed.
	AddTempFile(file string)
	GetTempFiles() []string

	// Close releases resources held by the workflow run.
	Close()
}

// Executable is anything that can run against a Context.
type Executable interface {
	Execute(context Context)
}

// Command is one unit of work in a workflow.
type Command interface {
	Executable

	GetName() string
	GetInputParam() string
	GetOutputParam() string

	// IsExecutable is checked by the chain before Execute.
	IsExecutable(context Context) bool

	GetTracer() trace.Tracer
	GetMeter() metric.Meter
	GetSuccessCounter() metric.Int64Counter
	GetErrorCounter() metric.Int64Counter
}

// Chain is an ordered list of commands. A Chain is itself a Command so
// workflows can be nested.
type Chain interface {
	Command

	ContinueOnFailure(bool) Chain
	AddCommand(command Command) Chain
}
