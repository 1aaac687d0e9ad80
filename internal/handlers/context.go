package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gamehaqqs/gamehaqqs/internal/middleware"
	"github.com/gamehaqqs/gamehaqqs/pkg/errors"
	"github.com/gamehaqqs/gamehaqqs/pkg/logger"
	"github.com/gamehaqqs/gamehaqqs/pkg/response"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// currentUserID returns the authenticated user, writing a 401 when absent.
func currentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return "", false
	}
	return userID, true
}

// noteIncomplete records follow-up failures of an action that itself succeeded. The client still
// gets the success payload.
func noteIncomplete(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	logger.WithModule("http").Warn("request completed with follow-up errors",
		zap.String("path", c.FullPath()),
		logger.UserID(c.GetString(middleware.CtxUserIDKey)),
		zap.Error(err),
	)
}
