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
	"github.com/gin-gonic/gin"
	"github.com/jaycherian/scope-dashboard/internal/core/dashboard"
	"github.com/jaycherian/scope-dashboard/internal/core/services"
	"golang.org/x/time/rate"
)

// Dependencies are the services the routes are built on.
type Dependencies struct {
	Controller     *dashboard.Controller
	OutputLog      services.OutputLog
	UploadLimiter  *rate.Limiter
	MaxUploadBytes int64
}

// NewRouter builds the engine with every route under /api/v1. middleware
// runs before the session middleware, e.g. tracing and CORS.
func NewRouter(deps *Dependencies, middleware ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware...)

	limiter := deps.UploadLimiter
	if limiter == nil {
		limiter = NewUploadLimiter(0, 0)
	}

	c := deps.Controller
	apiV1 := r.Group("/api/v1", SessionMiddleware(c.Sessions))
	{
		SessionRouter(apiV1, c)
		FileUpload(apiV1, c, limiter, deps.MaxUploadBytes)
		MediaRouter(apiV1, c.Videos)
		Dashboard(apiV1, c.Sessions, c.Uploads, deps.OutputLog)
	}
	return r
}
