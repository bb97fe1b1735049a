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
// file, `queries.go`, holds the BigQuery SQL used by the output log mirror.
// The `%s` placeholder is the fully qualified table name; values are always
// passed as query parameters.
package services

const (
	// QryOutputLogRows lists the mirrored rows, oldest first.
	QryOutputLogRows = "SELECT email, original_video, analyzed_video, report, saved_at FROM `%s` ORDER BY saved_at ASC"

	// QryOutputLogCount counts the mirrored rows.
	QryOutputLogCount = "SELECT COUNT(*) AS total FROM `%s`"

	// QryOutputLogByEmail lists the rows saved by one identity, newest first.
	QryOutputLogByEmail = "SELECT email, original_video, analyzed_video, report, saved_at FROM `%s` WHERE email = @email ORDER BY saved_at DESC"
)
