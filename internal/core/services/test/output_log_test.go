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

package services_test

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/jaycherian/scope-dashboard/internal/core/model"
	"github.com/jaycherian/scope-dashboard/internal/core/services"
	"github.com/zeebo/assert"
)

func row(i int) *model.OutputLogRow {
	return &model.OutputLogRow{
		Email:         fmt.Sprintf("user%d@buffalo.edu", i),
		OriginalVideo: fmt.Sprintf("%d.mp4", i),
		AnalyzedVideo: fmt.Sprintf("%d.mp4", i),
		Report:        "line one\nline, two with \"quotes\"",
	}
}

func TestOutputLogMissingFileIsEmpty(t *testing.T) {
	l := services.NewCSVOutputLog(filepath.Join(t.TempDir(), "data", "output_report.csv"))
	rows, err := l.ReadAll(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, len(rows), 0)

	count, err := l.Count(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, count, 0)
}

func TestOutputLogWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "output_report.csv")
	l := services.NewCSVOutputLog(path)
	ctx := context.Background()

	assert.NoError(t, l.Append(ctx, row(1)))
	assert.NoError(t, l.Append(ctx, row(2)))

	f, err := os.Open(path)
	assert.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	assert.NoError(t, err)
	assert.Equal(t, len(records), 3)
	assert.DeepEqual(t, records[0], model.OutputLogHeader)
	assert.DeepEqual(t, records[1], row(1).Record())

	rows, err := l.ReadAll(ctx)
	assert.NoError(t, err)
	assert.Equal(t, len(rows), 2)
	assert.Equal(t, rows[1].Report, row(2).Report)
}

func TestOutputLogAppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output_report.csv")
	existing := strings.Join(model.OutputLogHeader, ",") + "\nold@buffalo.edu,a.mp4,a.mp4,old report\n"
	assert.NoError(t, os.WriteFile(path, []byte(existing), 0o644))

	l := services.NewCSVOutputLog(path)
	assert.NoError(t, l.Append(context.Background(), row(7)))

	rows, err := l.ReadAll(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, len(rows), 2)
	assert.Equal(t, rows[0].Email, "old@buffalo.edu")
	assert.Equal(t, rows[1].Email, "user7@buffalo.edu")
}

func TestOutputLogConcurrentAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output_report.csv")
	// Two logs on the same file exercise the file lock as well as the mutex.
	logs := []*services.CSVOutputLog{services.NewCSVOutputLog(path), services.NewCSVOutputLog(path)}
	ctx := context.Background()

	const n = 40
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- logs[i%2].Append(ctx, row(i))
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, strings.Count(string(data), strings.Join(model.OutputLogHeader, ",")), 1)

	rows, err := logs[0].ReadAll(ctx)
	assert.NoError(t, err)
	assert.Equal(t, len(rows), n)
	seen := make(map[string]bool)
	for _, r := range rows {
		seen[r.Email] = true
	}
	assert.Equal(t, len(seen), n)
}
