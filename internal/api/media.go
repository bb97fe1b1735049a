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

// Package api contains the HTTP routes of the dashboard. This file serves
// media files (raw videos, annotated videos and plots) and receives uploads.
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/scope-dashboard/internal/core/apperr"
	"github.com/jaycherian/scope-dashboard/internal/core/dashboard"
	"github.com/jaycherian/scope-dashboard/internal/core/services"
	"golang.org/x/time/rate"
)

// UploadField is the multipart field carrying the uploaded video.
const UploadField = "file"

// MediaRouter registers GET /media/:name. Local media is served directly;
// bucket media is a redirect to a signed URL.
func MediaRouter(r *gin.RouterGroup, store services.VideoStore) {
	media := r.Group("/media")
	{
		media.GET("/:name", func(c *gin.Context) {
			loc, err := store.Locate(c.Request.Context(), c.Param("name"))
			if err != nil {
				respondError(c, err)
				return
			}
			if loc.URL != "" {
				c.Redirect(http.StatusFound, loc.URL)
				return
			}
			c.File(loc.Path)
		})
	}
}

// FileUpload registers POST /uploads. Bodies larger than maxBytes are
// rejected, as are requests beyond the limiter's rate.
func FileUpload(r *gin.RouterGroup, controller *dashboard.Controller, limiter *rate.Limiter, maxBytes int64) {
	upload := r.Group("/uploads")
	{
		upload.POST("", RateLimit(limiter), func(c *gin.Context) {
			if maxBytes > 0 {
				c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
			}
			file, header, err := c.Request.FormFile(UploadField)
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					respondError(c, apperr.Newf(apperr.ValidationError, "the upload exceeds %d MB", maxBytes>>20))
					return
				}
				respondError(c, apperr.Wrap(apperr.ValidationError, err, fmt.Sprintf("the upload must be sent in the %q form field", UploadField)))
				return
			}
			defer file.Close()

			out, err := controller.Upload(c.Request.Context(), SessionID(c), header.Filename, file)
			if err != nil {
				respondError(c, err)
				return
			}
			status := http.StatusCreated
			if out.Skipped {
				status = http.StatusOK
			}
			c.JSON(status, out)
		})
	}
}
