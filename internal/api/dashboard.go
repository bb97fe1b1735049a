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

// Package api contains the HTTP routes of the dashboard. This file defines
// the statistics endpoint used by operators.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/scope-dashboard/internal/core/services"
)

// Stats is the body of GET /stats.
type Stats struct {
	Sessions       int `json:"sessions"`        // Sessions currently held in memory.
	PendingUploads int `json:"pending_uploads"` // Uploads waiting for the GPU pipeline.
	SavedResults   int `json:"saved_results"`   // Rows in the output log.
}

// Dashboard registers GET /stats.
func Dashboard(r *gin.RouterGroup, sessions *services.SessionManager, uploads *services.UploadTracker, outputLog services.OutputLog) {
	stats := r.Group("/stats")
	{
		stats.GET("", func(c *gin.Context) {
			saved, err := outputLog.Count(c.Request.Context())
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, Stats{
				Sessions:       sessions.Count(),
				PendingUploads: uploads.Pending(),
				SavedResults:   saved,
			})
		})
	}
}
