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
// file, `output_log.go`, defines the append-only CSV log of saved results.
//
// Appends are serialized twice: a mutex orders writers of this process and
// an exclusive flock on "<file>.lock" orders writers of other processes
// (another server instance, or scopectl reading while a save happens). The
// "is the file empty, then write the header" check runs under both locks, so
// the header is written exactly once.
package services

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/jaycherian/scope-dashboard/internal/core/apperr"
	"github.com/jaycherian/scope-dashboard/internal/core/model"
)

// lockRetryDelay is how often a blocked flock is retried.
const lockRetryDelay = 25 * time.Millisecond

// OutputLog records saved results.
type OutputLog interface {
	Append(ctx context.Context, row *model.OutputLogRow) error
	ReadAll(ctx context.Context) ([]*model.OutputLogRow, error)
	Count(ctx context.Context) (int, error)
}

// CSVOutputLog is the OutputLog written to a local CSV file.
type CSVOutputLog struct {
	Path string
	mu   sync.Mutex
}

// NewCSVOutputLog creates a log writing to path.
func NewCSVOutputLog(path string) *CSVOutputLog {
	return &CSVOutputLog{Path: path}
}

func (l *CSVOutputLog) lockFile() *flock.Flock {
	return flock.New(l.Path + ".lock")
}

// Append writes row, preceded by the header when the file is empty.
func (l *CSVOutputLog) Append(ctx context.Context, row *model.OutputLogRow) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperr.Wrap(apperr.StoreUnavailable, err, "the output log directory could not be created")
		}
	}
	lock := l.lockFile()
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		return apperr.Wrap(apperr.StoreUnavailable, err, "the output log is locked by another process")
	}
	defer func() { _ = lock.Unlock() }()

	f, err := os.OpenFile(l.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return apperr.Wrap(apperr.StoreUnavailable, err, "the output log could not be opened")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return apperr.Wrap(apperr.StoreUnavailable, err, "the output log could not be read")
	}
	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(model.OutputLogHeader); err != nil {
			return apperr.Wrap(apperr.StoreUnavailable, err, "the output log header could not be written")
		}
	}
	if err := w.Write(row.Record()); err != nil {
		return apperr.Wrap(apperr.StoreUnavailable, err, "the output log row could not be written")
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return apperr.Wrap(apperr.StoreUnavailable, err, "the output log row could not be written")
	}
	if err := f.Sync(); err != nil {
		return apperr.Wrap(apperr.StoreUnavailable, err, "the output log could not be flushed")
	}
	return nil
}

// ReadAll returns every row in file order. A missing file is an empty log.
func (l *CSVOutputLog) ReadAll(ctx context.Context) ([]*model.OutputLogRow, error) {
	lock := l.lockFile()
	if _, err := os.Stat(l.Path); errors.Is(err, os.ErrNotExist) {
		return make([]*model.OutputLogRow, 0), nil
	}
	locked, err := lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		return nil, apperr.Wrap(apperr.StoreUnavailable, err, "the output log is locked by another process")
	}
	defer func() { _ = lock.Unlock() }()

	f, err := os.Open(l.Path)
	if err != nil {
		return nil, apperr.Wrap(apperr.StoreUnavailable, err, "the output log could not be opened")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	out := make([]*model.OutputLogRow, 0)
	for first := true; ; first = false {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperr.Wrap(apperr.StoreUnavailable, err, "the output log is malformed")
		}
		if first && slices.Equal(rec, model.OutputLogHeader) {
			continue
		}
		out = append(out, model.OutputLogRowFromRecord(rec))
	}
	return out, nil
}

// Count returns the number of rows, header excluded.
func (l *CSVOutputLog) Count(ctx context.Context) (int, error) {
	rows, err := l.ReadAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}
