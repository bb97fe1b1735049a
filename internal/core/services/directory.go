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
// file, `directory.go`, defines the VideoDirectory, which answers which videos
// an identity may view using the static user-video mapping file.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"slices"

	"github.com/jaycherian/scope-dashboard/internal/core/apperr"
)

// VideoDirectory resolves identities to their permitted video identifiers.
// The mapping file is read on every call so edits are visible without a
// restart.
type VideoDirectory struct {
	MapFile string // JSON object: identity -> [video, ...].
}

// NewVideoDirectory creates a directory backed by mapFile.
func NewVideoDirectory(mapFile string) *VideoDirectory {
	return &VideoDirectory{MapFile: mapFile}
}

// load reads and decodes the mapping file. Any entry that is not an array of
// strings makes the whole document malformed.
func (d *VideoDirectory) load(ctx context.Context) (map[string][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(d.MapFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.Wrap(apperr.StoreUnavailable, err, "the user video map is missing")
		}
		return nil, apperr.Wrap(apperr.StoreUnavailable, err, "the user video map could not be read")
	}
	out := make(map[string][]string)
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, apperr.Wrap(apperr.StoreUnavailable, err, "the user video map is malformed")
	}
	return out, nil
}

// Resolve returns the ordered videos of identity. An unknown identity yields
// an empty slice and no error; an unreadable map is StoreUnavailable.
func (d *VideoDirectory) Resolve(ctx context.Context, identity string) ([]string, error) {
	all, err := d.load(ctx)
	if err != nil {
		return nil, err
	}
	videos, ok := all[identity]
	if !ok || videos == nil {
		return make([]string, 0), nil
	}
	return slices.Clone(videos), nil
}

// Identities returns every identity of the map in sorted order.
func (d *VideoDirectory) Identities(ctx context.Context) ([]string, error) {
	all, err := d.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(all))
	for identity := range all {
		out = append(out, identity)
	}
	slices.Sort(out)
	return out, nil
}
