package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"learnhub/internal/transport/http/middleware"
)

func getUserIDFromContext(c *gin.Context) (uint, bool) {
	userIDAny, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}
	userID, ok := userIDAny.(uint)
	if !ok || userID == 0 {
		return 0, false
	}
	return userID, true
}

func parseUintParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(parsed), nil
}
