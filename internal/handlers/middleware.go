package handlers

import (
	"errors"
	"strconv"
	"time"

	"myblog/internal/metrics"
	"myblog/internal/models"
	"myblog/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "userId"

	msgLoginRequired = "Please log in first."
)

// sessionMiddleware resolves the session cookie and stores the user id in
// the Gin context. Requests without a live session pass through anonymously.
func (h *Handler) sessionMiddleware(c *gin.Context) {
	token, err := c.Cookie(sessionCookie)
	if err != nil || token == "" {
		c.Next()
		return
	}

	userID, err := h.services.Sessions.Current(c.Request.Context(), token)
	switch {
	case err == nil:
		c.Set(ctxUserID, userID)
	case errors.Is(err, service.ErrNoSession):
		h.setCookie(c, sessionCookie, "", -1)
	default:
		if h.log != nil {
			h.log.Errorw("session_lookup_failed", "err", err)
		}
	}
	c.Next()
}

// requireSession redirects anonymous requests to the login page.
func (h *Handler) requireSession(c *gin.Context) {
	if !h.cfg.RequireSession {
		c.Next()
		return
	}
	if _, ok := c.Get(ctxUserID); !ok {
		h.redirectWithFlash(c, models.FlashError, msgLoginRequired, "/login")
		c.Abort()
		return
	}
	c.Next()
}

func (h *Handler) metricsMiddleware(c *gin.Context) {
	metrics.HTTPRequestsInFlight.Inc()
	start := time.Now()
	defer metrics.HTTPRequestsInFlight.Dec()

	c.Next()

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	method := c.Request.Method
	metrics.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
	metrics.HTTPRequestDurationSeconds.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
}

// currentUser returns the user id set by sessionMiddleware, if any.
func currentUser(c *gin.Context) string {
	if v, ok := c.Get(ctxUserID); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
