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

package apperr_test

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/jaycherian/scope-dashboard/internal/core/apperr"
	"github.com/stretchr/testify/assert"
)

func TestKindOfWrappedError(t *testing.T) {
	cause := fmt.Errorf("open data/report.json: %w", os.ErrNotExist)
	err := fmt.Errorf("reading summary: %w", apperr.Wrap(apperr.StoreUnavailable, cause, "report store is unavailable"))

	assert.Equal(t, apperr.StoreUnavailable, apperr.KindOf(err))
	assert.Equal(t, "report store is unavailable", apperr.MessageOf(err))
	// The original cause is still reachable.
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.True(t, apperr.IsKind(err, apperr.StoreUnavailable))
	assert.False(t, apperr.IsKind(err, apperr.NotFound))
}

func TestKindOfUnclassifiedError(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, apperr.Internal, apperr.KindOf(err))
	assert.Equal(t, "an unexpected error occurred", apperr.MessageOf(err))
	assert.Equal(t, apperr.Kind(""), apperr.KindOf(nil))
	assert.Equal(t, "", apperr.MessageOf(nil))
}

func TestErrorsIsMatchesByKind(t *testing.T) {
	err := apperr.New(apperr.PreconditionNotMet, "analyze the video first")
	assert.True(t, errors.Is(err, apperr.New(apperr.PreconditionNotMet, "")))
	assert.False(t, errors.Is(err, apperr.New(apperr.ValidationError, "")))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "NotFound: no such video", apperr.New(apperr.NotFound, "no such video").Error())
	assert.Equal(t, "ValidationError: bad name: x", apperr.Wrap(apperr.ValidationError, errors.New("x"), "bad name").Error())
	assert.Equal(t, "ValidationError: file a.avi is not .mp4", apperr.Newf(apperr.ValidationError, "file %s is not .mp4", "a.avi").Error())
}
