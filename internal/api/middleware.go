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
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/scope-dashboard/internal/core/services"
	"golang.org/x/time/rate"
)

const (
	// SessionCookie holds the session ID.
	SessionCookie = "scope_session"
	sessionKey    = "scope.session"
)

// SessionMiddleware attaches a live session to every request, creating one
// (and setting the cookie) when the request has none or an expired one.
func SessionMiddleware(sessions *services.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(SessionCookie)
		live := sessions.Ensure(id)
		if live != id {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, live, 0, "/", "", false, true)
		}
		c.Set(sessionKey, live)
		c.Next()
	}
}

// SessionID returns the session attached by SessionMiddleware.
func SessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}

func clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
}

// NewUploadLimiter allows perMinute requests per minute with the given
// burst. A non-positive rate disables limiting.
func NewUploadLimiter(perMinute int, burst int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)
}

// RateLimit rejects requests with 429 once limiter is exhausted.
func RateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorBody{Error: ErrorDetail{
				Kind:    KindRateLimited,
				Message: "too many uploads, please try again later",
			}})
			return
		}
		c.Next()
	}
}
