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

// Package api contains the HTTP routes of the dashboard. This file exposes
// the session/form controller.
//
// Endpoints (under the group passed in, normally /api/v1):
//   - GET  /session: the session snapshot and its stage.
//   - POST /session/login {email}: set the identity, returns its videos.
//   - POST /session/logout: discard the session.
//   - POST /session/video {video}: select a video.
//   - POST /session/analyze: analyze the selected video.
//   - GET  /session/modalities: the four multimodal views.
//   - POST /session/report: generate the text report.
//   - POST /session/save: append the result to the output log.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/scope-dashboard/internal/core/apperr"
	"github.com/jaycherian/scope-dashboard/internal/core/dashboard"
)

type loginRequest struct {
	Email string `json:"email" form:"email"`
}

type selectRequest struct {
	Video string `json:"video" form:"video"`
}

// SessionRouter registers the session routes.
func SessionRouter(r *gin.RouterGroup, controller *dashboard.Controller) {
	session := r.Group("/session")
	{
		session.GET("", func(c *gin.Context) {
			out, err := controller.State(c.Request.Context(), SessionID(c))
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		session.POST("/login", func(c *gin.Context) {
			var req loginRequest
			if err := c.ShouldBind(&req); err != nil {
				respondError(c, apperr.Wrap(apperr.ValidationError, err, "the login request is malformed"))
				return
			}
			out, err := controller.Login(c.Request.Context(), SessionID(c), req.Email)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		session.POST("/logout", func(c *gin.Context) {
			controller.Logout(c.Request.Context(), SessionID(c))
			clearSessionCookie(c)
			c.Status(http.StatusNoContent)
		})

		session.POST("/video", func(c *gin.Context) {
			var req selectRequest
			if err := c.ShouldBind(&req); err != nil {
				respondError(c, apperr.Wrap(apperr.ValidationError, err, "the video selection is malformed"))
				return
			}
			out, err := controller.SelectVideo(c.Request.Context(), SessionID(c), req.Video)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		session.POST("/analyze", func(c *gin.Context) {
			out, err := controller.Analyze(c.Request.Context(), SessionID(c))
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		session.GET("/modalities", func(c *gin.Context) {
			out, err := controller.Modalities(c.Request.Context(), SessionID(c))
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		session.POST("/report", func(c *gin.Context) {
			out, err := controller.GenerateReport(c.Request.Context(), SessionID(c))
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		session.POST("/save", func(c *gin.Context) {
			out, err := controller.Save(c.Request.Context(), SessionID(c))
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusCreated, out)
		})
	}
}
