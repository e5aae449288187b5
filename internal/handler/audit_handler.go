package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"eventtix/registrar/internal/service"
	"eventtix/registrar/pkg/response"
)

type AuditHandler struct {
	audit service.AuditService
}

func NewAuditHandler(audit service.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

func (h *AuditHandler) List(c *gin.Context) {
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		response.BadRequest(c, "limit must be an integer")
		return
	}
	offset, err := intQuery(c, "offset", 0)
	if err != nil {
		response.BadRequest(c, "offset must be an integer")
		return
	}
	q := service.AuditQuery{Limit: limit, Offset: offset, Action: c.Query("action")}
	if raw := c.Query("admin_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			response.BadRequest(c, "admin_id must be an integer")
			return
		}
		adminID := uint(id)
		q.AdminID = &adminID
	}

	entries, err := h.audit.List(c.Request.Context(), q)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"logs": entries, "count": len(entries)})
}

func (h *AuditHandler) Stats(c *gin.Context) {
	stats, err := h.audit.Stats(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, stats)
}
