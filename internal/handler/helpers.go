package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"eventtix/registrar/internal/handler/middleware"
	"eventtix/registrar/internal/service"
)

var ErrNoAdmin = errors.New("admin not found in context")

// currentActor builds the service actor for the authenticated admin and request metadata.
func currentActor(c *gin.Context) (service.Actor, error) {
	admin, ok := middleware.CurrentAdmin(c)
	if !ok {
		return service.Actor{}, ErrNoAdmin
	}
	return service.Actor{
		AdminID:   admin.ID,
		Username:  admin.Username,
		Role:      admin.Role,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}, nil
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func intQuery(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
