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
// command that copies a validated upload into the video store.
//
// Logic Flow:
//  1. Get the *model.UploadRequest from the context.
//  2. Open the spooled local copy.
//  3. Stream it into the VideoStore under the original base name. The local
//     store renames a temporary file into place and the bucket store only
//     publishes the object once the writer is closed, so a failed copy never
//     leaves a partial video behind.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jaycherian/scope-dashboard/internal/core/apperr"
	"github.com/jaycherian/scope-dashboard/internal/core/cor"
	"github.com/jaycherian/scope-dashboard/internal/core/model"
	"github.com/jaycherian/scope-dashboard/internal/core/services"
)

// UploadPersist stores an upload in a VideoStore.
type UploadPersist struct {
	cor.BaseCommand
	store services.VideoStore
}

// NewUploadPersist creates the command.
func NewUploadPersist(name string, store services.VideoStore) *UploadPersist {
	return &UploadPersist{BaseCommand: *cor.NewBaseCommand(name), store: store}
}

// Execute copies the spooled file into the store.
func (c *UploadPersist) Execute(context cor.Context) {
	req := context.Get(c.GetInputParam()).(*model.UploadRequest)

	dat, err := os.Open(req.LocalPath)
	if err != nil {
		c.Fail(context, apperr.Wrap(apperr.Internal, err, fmt.Sprintf("failed to open upload %s", req.Filename)))
		return
	}
	defer dat.Close()

	ref, err := c.store.Save(context.GetContext(), req.Filename, dat)
	if err != nil {
		c.Fail(context, err)
		return
	}

	slog.InfoContext(context.GetContext(), "upload stored", "file", req.Filename, "location", ref)
	context.Add(ParamStoredRef, ref)
	c.Succeed(context, req)
}
