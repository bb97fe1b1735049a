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

package cloud

import (
	"fmt"
	"strings"
)

// gcsURIPrefixes are the accepted spellings of an object location, in the
// order they are tried.
var gcsURIPrefixes = []string{
	"gs://",
	"https://storage.mtls.cloud.google.com/",
	"https://storage.googleapis.com/",
	"https://storage.cloud.google.com/",
}

// GCSObject identifies an object in Cloud Storage.
type GCSObject struct {
	Bucket string
	Name   string
}

// String returns the gs:// form of the object.
func (o GCSObject) String() string {
	return fmt.Sprintf("gs://%s/%s", o.Bucket, o.Name)
}

// ParseGCSURI splits a gs:// or storage HTTPS URI into bucket and object.
func ParseGCSURI(uri string) (GCSObject, error) {
	for _, prefix := range gcsURIPrefixes {
		if !strings.HasPrefix(uri, prefix) {
			continue
		}
		bucket, name, ok := strings.Cut(strings.TrimPrefix(uri, prefix), "/")
		if !ok || bucket == "" || name == "" {
			return GCSObject{}, fmt.Errorf("invalid GCS URI: unable to determine bucket and object from %s", uri)
		}
		return GCSObject{Bucket: bucket, Name: name}, nil
	}
	return GCSObject{}, fmt.Errorf("invalid GCS URI format: %s", uri)
}
