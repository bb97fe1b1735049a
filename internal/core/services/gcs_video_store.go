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
// file, `gcs_video_store.go`, keeps media in a Cloud Storage bucket and hands
// clients V4 signed URLs, so browsers stream videos straight from the bucket
// without credentials of their own.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"cloud.google.com/go/storage"
	"github.com/h2non/filetype"
	"github.com/jaycherian/scope-dashboard/internal/cloud"
	"github.com/jaycherian/scope-dashboard/internal/core/apperr"
)

// GCSVideoStore is a VideoStore backed by a bucket. Objects are named by
// the media file name.
type GCSVideoStore struct {
	StorageClient *storage.Client                   // Client for Google Cloud Storage.
	IAMClient     *credentials.IamCredentialsClient // Signs URLs when SignerEmail is set; may be nil.
	Bucket        string
	SignerEmail   string        // Service account used to sign URLs through the IAM Credentials API.
	URLExpiry     time.Duration // Lifetime of signed URLs.
}

// Ref implements VideoStore.
func (s *GCSVideoStore) Ref(name string) string {
	return cloud.GCSObject{Bucket: s.Bucket, Name: name}.String()
}

func (s *GCSVideoStore) object(name string) (*storage.ObjectHandle, string, error) {
	base, err := CleanMediaName(name)
	if err != nil {
		return nil, "", err
	}
	return s.StorageClient.Bucket(s.Bucket).Object(base), base, nil
}

// Exists implements VideoStore.
func (s *GCSVideoStore) Exists(ctx context.Context, name string) (bool, error) {
	obj, _, err := s.object(name)
	if err != nil {
		return false, err
	}
	_, err = obj.Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, apperr.Wrap(apperr.StoreUnavailable, err, "the video bucket could not be read")
	}
	return true, nil
}

// contentType guesses the MIME type of a media file from its extension.
func contentType(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if t := filetype.GetType(ext); t != filetype.Unknown && t.MIME.Value != "" {
		return t.MIME.Value
	}
	return "application/octet-stream"
}

// Save implements VideoStore. The object only becomes visible once the
// writer is closed successfully.
func (s *GCSVideoStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	obj, base, err := s.object(name)
	if err != nil {
		return "", err
	}
	w := obj.NewWriter(ctx)
	w.ContentType = contentType(base)
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", apperr.Wrap(apperr.StoreUnavailable, err, "the upload could not be stored")
	}
	if err := w.Close(); err != nil {
		return "", apperr.Wrap(apperr.StoreUnavailable, err, "the upload could not be stored")
	}
	return s.Ref(base), nil
}

// Locate implements VideoStore by generating a signed GET URL.
func (s *GCSVideoStore) Locate(ctx context.Context, name string) (MediaLocation, error) {
	ok, err := s.Exists(ctx, name)
	if err != nil {
		return MediaLocation{}, err
	}
	if !ok {
		return MediaLocation{}, apperr.Newf(apperr.NotFound, "media %s not found", name)
	}
	u, err := s.GenerateSignedURL(ctx, s.Ref(filepath.Base(name)), s.URLExpiry)
	if err != nil {
		return MediaLocation{}, apperr.Wrap(apperr.StoreUnavailable, err, "a media URL could not be signed")
	}
	return MediaLocation{URL: u}, nil
}

// GenerateSignedURL creates a time limited URL for a gs:// or storage HTTPS
// URI. With a signer account the signature is produced by the IAM
// Credentials API, which needs no local key; otherwise the client's own
// credentials are used.
func (s *GCSVideoStore) GenerateSignedURL(ctx context.Context, gcsURI string, expires time.Duration) (string, error) {
	target, err := cloud.ParseGCSURI(gcsURI)
	if err != nil {
		return "", err
	}
	opts := &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(expires),
	}
	if s.SignerEmail != "" && s.IAMClient != nil {
		opts.GoogleAccessID = s.SignerEmail
		opts.SignBytes = func(b []byte) ([]byte, error) {
			req := &credentialspb.SignBlobRequest{
				Name:    fmt.Sprintf("projects/-/serviceAccounts/%s", s.SignerEmail),
				Payload: b,
			}
			resp, err := s.IAMClient.SignBlob(ctx, req)
			if err != nil {
				return nil, fmt.Errorf("IAMClient.SignBlob: %w", err)
			}
			return resp.SignedBlob, nil
		}
	}
	u, err := s.StorageClient.Bucket(target.Bucket).SignedURL(target.Name, opts)
	if err != nil {
		return "", fmt.Errorf("Bucket(%q).Object(%q).SignedURL: %w", target.Bucket, target.Name, err)
	}
	return u, nil
}
