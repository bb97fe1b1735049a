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

package services

import "context"

// Analyzer turns a raw video reference into the reference of its analyzed
// (annotated) counterpart.
type Analyzer interface {
	Analyze(ctx context.Context, video string) (string, error)
}

// PassthroughAnalyzer is the in-process analyzer. Inference runs offline, so
// the analyzed video is the input itself.
type PassthroughAnalyzer struct{}

// Analyze returns video unchanged.
func (PassthroughAnalyzer) Analyze(ctx context.Context, video string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return video, nil
}
