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
// validation of an uploaded video.
//
// Logic Flow:
//  1. The file name must be a plain base name with the .mp4 extension.
//  2. The spooled content is opened and its header is sniffed with the
//     `filetype` library; only an MP4 container signature is accepted, so a
//     renamed file of another type is rejected before anything is stored.
package commands

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/jaycherian/scope-dashboard/internal/core/apperr"
	"github.com/jaycherian/scope-dashboard/internal/core/cor"
	"github.com/jaycherian/scope-dashboard/internal/core/model"
	"github.com/jaycherian/scope-dashboard/internal/core/services"
)

const (
	// AcceptedVideoExtension is the only extension accepted for uploads.
	AcceptedVideoExtension = ".mp4"
	// sniffLength is the number of bytes filetype needs to match a header.
	sniffLength = 261
)

// UploadValidator rejects uploads that are not MP4 videos.
type UploadValidator struct {
	cor.BaseCommand
}

// NewUploadValidator creates the command.
func NewUploadValidator(name string) *UploadValidator {
	return &UploadValidator{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute validates the *model.UploadRequest found in the input parameter.
func (v *UploadValidator) Execute(context cor.Context) {
	req := context.Get(v.GetInputParam()).(*model.UploadRequest)

	base, err := services.CleanMediaName(req.Filename)
	if err != nil {
		v.Fail(context, err)
		return
	}
	req.Filename = base
	if !strings.EqualFold(filepath.Ext(base), AcceptedVideoExtension) {
		v.Fail(context, apperr.Newf(apperr.ValidationError, "%s is not an .mp4 file", base))
		return
	}

	head, err := readHead(req.LocalPath)
	if err != nil {
		v.Fail(context, apperr.Wrap(apperr.Internal, err, "the upload could not be read"))
		return
	}
	if !filetype.Is(head, "mp4") {
		v.Fail(context, apperr.Newf(apperr.ValidationError, "%s does not contain MP4 video data", base))
		return
	}

	context.Add(ParamUpload, req)
	v.Succeed(context, req)
}

func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	head := make([]byte, sniffLength)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return head[:n], nil
}
