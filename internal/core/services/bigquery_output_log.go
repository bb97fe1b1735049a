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
// file, `bigquery_output_log.go`, mirrors saved results into a BigQuery table
// so they can be analyzed alongside the rest of the study data. The CSV file
// stays the record of truth; the mirror is written after it.
package services

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/jaycherian/scope-dashboard/internal/core/apperr"
	"github.com/jaycherian/scope-dashboard/internal/core/model"
	"google.golang.org/api/iterator"
)

// BigQueryOutputLog is the OutputLog stored in a BigQuery table.
type BigQueryOutputLog struct {
	BigqueryClient *bigquery.Client
	DatasetName    string
	Table          string
}

// GetFQN returns the table name in the `project.dataset.table` form used by
// standard SQL.
func (l *BigQueryOutputLog) GetFQN() string {
	fqn := l.BigqueryClient.Dataset(l.DatasetName).Table(l.Table).FullyQualifiedName()
	return strings.Replace(fqn, ":", ".", -1)
}

// Append streams row into the table.
func (l *BigQueryOutputLog) Append(ctx context.Context, row *model.OutputLogRow) error {
	inserter := l.BigqueryClient.Dataset(l.DatasetName).Table(l.Table).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return apperr.Wrap(apperr.StoreUnavailable, err, "the output row could not be mirrored to BigQuery")
	}
	return nil
}

func (l *BigQueryOutputLog) readRows(ctx context.Context, q *bigquery.Query) ([]*model.OutputLogRow, error) {
	itr, err := q.Read(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.StoreUnavailable, err, "the BigQuery output log could not be queried")
	}
	out := make([]*model.OutputLogRow, 0)
	for {
		r := &model.OutputLogRow{}
		err := itr.Next(r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, apperr.Wrap(apperr.StoreUnavailable, err, "the BigQuery output log could not be read")
		}
		out = append(out, r)
	}
	return out, nil
}

// ReadAll returns every mirrored row, oldest first.
func (l *BigQueryOutputLog) ReadAll(ctx context.Context) ([]*model.OutputLogRow, error) {
	return l.readRows(ctx, l.BigqueryClient.Query(fmt.Sprintf(QryOutputLogRows, l.GetFQN())))
}

// ReadByEmail returns the rows saved by email, newest first.
func (l *BigQueryOutputLog) ReadByEmail(ctx context.Context, email string) ([]*model.OutputLogRow, error) {
	q := l.BigqueryClient.Query(fmt.Sprintf(QryOutputLogByEmail, l.GetFQN()))
	q.Parameters = []bigquery.QueryParameter{{Name: "email", Value: email}}
	return l.readRows(ctx, q)
}

// Count returns the number of mirrored rows.
func (l *BigQueryOutputLog) Count(ctx context.Context) (int, error) {
	itr, err := l.BigqueryClient.Query(fmt.Sprintf(QryOutputLogCount, l.GetFQN())).Read(ctx)
	if err != nil {
		return 0, apperr.Wrap(apperr.StoreUnavailable, err, "the BigQuery output log could not be queried")
	}
	var row struct {
		Total int64 `bigquery:"total"`
	}
	if err := itr.Next(&row); err != nil {
		return 0, apperr.Wrap(apperr.StoreUnavailable, err, "the BigQuery output log could not be read")
	}
	return int(row.Total), nil
}
