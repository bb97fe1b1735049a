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

// Package apperr defines the tagged error type shared by the services, the
// workflows and the API layer. Every failure that can reach a user carries a
// Kind and a human readable message; the presentation layer decides how to
// render it (HTTP status, CLI exit text, ...).
//
// Kinds:
//   - NotFound: the requested record or media does not exist.
//   - StoreUnavailable: a backing file or cloud store could not be read or written.
//   - PreconditionNotMet: an action was requested before its prerequisite steps.
//   - ValidationError: the caller supplied an unusable value.
//   - Internal: anything else.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an Error.
type Kind string

const (
	NotFound           Kind = "NotFound"
	StoreUnavailable   Kind = "StoreUnavailable"
	PreconditionNotMet Kind = "PreconditionNotMet"
	ValidationError    Kind = "ValidationError"
	Internal           Kind = "Internal"
)

// Error is a classified error with an optional wrapped cause.
type Error struct {
	Kind    Kind   // The classification used by callers to decide how to react.
	Message string // A message safe to show to the end user.
	Err     error  // The underlying cause, if any. Never shown verbatim to users.
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind. This allows
// checks such as errors.Is(err, apperr.New(apperr.NotFound, "")).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// New creates an Error with no cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error around an existing cause. A nil cause yields a plain Error.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or Internal
// when err is not classified. A nil error has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// MessageOf returns the user facing message of err. Unclassified errors get
// a generic message so internal details do not leak.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "an unexpected error occurred"
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
