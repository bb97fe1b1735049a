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
// Responsibility (COR) pattern's Command interface used by the dashboard
// workflows: saving results, storing uploads and tracking the offline
// analysis pipeline.
package commands

// Well-known context keys shared by commands of the same workflow, in
// addition to cor.CtxIn / cor.CtxOut.
const (
	ParamOutputRow    = "__OUTPUT_ROW__"   // *model.OutputLogRow built from the session.
	ParamUpload       = "__UPLOAD__"       // *model.UploadRequest being processed.
	ParamStoredRef    = "__STORED_REF__"   // string, where the upload was stored.
	ParamMessageID    = "__MESSAGE_ID__"   // string, ID of the published analysis request.
	ParamNotification = "__NOTIFICATION__" // *model.AnalysisNotification received.
)

// GetOutputRowParameterName returns the key of the row being saved.
func GetOutputRowParameterName() string {
	return ParamOutputRow
}
