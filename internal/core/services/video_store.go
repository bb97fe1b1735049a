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
// file, `video_store.go`, defines where raw videos and analysis artifacts
// live. The LocalVideoStore keeps them in the videos directory; see
// `gcs_video_store.go` for the Cloud Storage variant.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jaycherian/scope-dashboard/internal/core/apperr"
)

// MediaLocation tells a client where to fetch a media file from. Exactly one
// field is set.
type MediaLocation struct {
	Path string `json:"-"`             // Local file to serve.
	URL  string `json:"url,omitempty"` // Time limited URL to redirect to.
}

// VideoStore persists uploaded videos and locates media by file name.
type VideoStore interface {
	// Ref returns the reference of name handed to the Analyzer and recorded
	// as the analyzed path, e.g. "videos/a.mp4" or "gs://bucket/a.mp4".
	Ref(name string) string
	Exists(ctx context.Context, name string) (bool, error)
	// Save stores r under name, replacing any existing file.
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	// Locate returns where name can be fetched. Missing media is NotFound.
	Locate(ctx context.Context, name string) (MediaLocation, error)
}

// CleanMediaName returns the base name of name, rejecting names that do not
// denote a file.
func CleanMediaName(name string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == ".." || base == "/" || strings.TrimSpace(base) == "" {
		return "", apperr.Newf(apperr.ValidationError, "%q is not a valid file name", name)
	}
	return base, nil
}

// LocalVideoStore keeps media in a local directory.
type LocalVideoStore struct {
	Directory string
}

// NewLocalVideoStore creates a store rooted at directory.
func NewLocalVideoStore(directory string) *LocalVideoStore {
	return &LocalVideoStore{Directory: directory}
}

// Ref implements VideoStore.
func (s *LocalVideoStore) Ref(name string) string {
	return filepath.Join(s.Directory, name)
}

func (s *LocalVideoStore) path(name string) (string, error) {
	base, err := CleanMediaName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Directory, base), nil
}

// Exists implements VideoStore.
func (s *LocalVideoStore) Exists(_ context.Context, name string) (bool, error) {
	path, err := s.path(name)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, apperr.Wrap(apperr.StoreUnavailable, err, "the videos directory could not be read")
	}
	return !info.IsDir(), nil
}

// Save writes r to a temporary file in the directory and renames it into
// place, so readers never see a partial video.
func (s *LocalVideoStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	path, err := s.path(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Directory, 0o755); err != nil {
		return "", apperr.Wrap(apperr.StoreUnavailable, err, "the videos directory could not be created")
	}
	tmp, err := os.CreateTemp(s.Directory, ".upload-*")
	if err != nil {
		return "", apperr.Wrap(apperr.StoreUnavailable, err, "the upload could not be stored")
	}
	defer func() {
		_ = tmp.Close()
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, &contextReader{ctx: ctx, r: r}); err != nil {
		return "", apperr.Wrap(apperr.StoreUnavailable, err, "the upload could not be stored")
	}
	if err = tmp.Sync(); err != nil {
		return "", apperr.Wrap(apperr.StoreUnavailable, err, "the upload could not be stored")
	}
	if err = tmp.Close(); err != nil {
		return "", apperr.Wrap(apperr.StoreUnavailable, err, "the upload could not be stored")
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return "", apperr.Wrap(apperr.StoreUnavailable, err, "the upload could not be stored")
	}
	return path, nil
}

// Locate implements VideoStore.
func (s *LocalVideoStore) Locate(ctx context.Context, name string) (MediaLocation, error) {
	ok, err := s.Exists(ctx, name)
	if err != nil {
		return MediaLocation{}, err
	}
	if !ok {
		return MediaLocation{}, apperr.Newf(apperr.NotFound, "media %s not found", name)
	}
	path, _ := s.path(name)
	return MediaLocation{Path: path}, nil
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, fmt.Errorf("read cancelled: %w", err)
	}
	return c.r.Read(p)
}
