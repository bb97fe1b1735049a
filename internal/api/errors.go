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

package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/scope-dashboard/internal/core/apperr"
)

// KindRateLimited is the error kind of a 429 response. It never leaves the
// HTTP layer.
const KindRateLimited apperr.Kind = "RateLimited"

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the kind and the user facing message.
type ErrorDetail struct {
	Kind    apperr.Kind `json:"kind"`
	Message string      `json:"message"`
}

// StatusFor maps an error kind to an HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.StoreUnavailable:
		return http.StatusServiceUnavailable
	case apperr.PreconditionNotMet:
		return http.StatusConflict
	case apperr.ValidationError:
		return http.StatusBadRequest
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// respondError aborts the request with the JSON rendering of err.
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := StatusFor(kind)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	} else {
		slog.InfoContext(c.Request.Context(), "request rejected", "path", c.FullPath(), "kind", kind, "error", err)
	}
	c.AbortWithStatusJSON(status, ErrorBody{Error: ErrorDetail{Kind: kind, Message: apperr.MessageOf(err)}})
}
