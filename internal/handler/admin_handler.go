package handler

import (
	"github.com/gin-gonic/gin"

	"eventtix/registrar/internal/service"
	"eventtix/registrar/pkg/response"
)

// AdminHandler manages admin accounts and event settings. Every route is superadmin-only.
type AdminHandler struct {
	admins   service.AdminService
	settings service.SettingsService
}

func NewAdminHandler(admins service.AdminService, settings service.SettingsService) *AdminHandler {
	return &AdminHandler{admins: admins, settings: settings}
}

func (h *AdminHandler) ListAdmins(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		response.Unauthorized(c, "missing authentication")
		return
	}
	admins, err := h.admins.List(c.Request.Context(), actor)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, admins)
}

func (h *AdminHandler) GetAdmin(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		response.BadRequest(c, "invalid admin id")
		return
	}
	admin, err := h.admins.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, admin)
}

func (h *AdminHandler) CreateAdmin(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		response.Unauthorized(c, "missing authentication")
		return
	}
	var req service.CreateAdminInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	admin, err := h.admins.Create(c.Request.Context(), req, actor)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, admin)
}

func (h *AdminHandler) UpdateAdmin(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		response.BadRequest(c, "invalid admin id")
		return
	}
	actor, err := currentActor(c)
	if err != nil {
		response.Unauthorized(c, "missing authentication")
		return
	}
	var req service.UpdateAdminInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	admin, err := h.admins.Update(c.Request.Context(), id, req, actor)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, admin)
}

func (h *AdminHandler) DeleteAdmin(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		response.BadRequest(c, "invalid admin id")
		return
	}
	actor, err := currentActor(c)
	if err != nil {
		response.Unauthorized(c, "missing authentication")
		return
	}

	if err := h.admins.Delete(c.Request.Context(), id, actor); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"id": id, "deleted": true})
}

func (h *AdminHandler) GetSettings(c *gin.Context) {
	s, err := h.settings.Get(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, s)
}

func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		response.Unauthorized(c, "missing authentication")
		return
	}
	var patch service.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	s, err := h.settings.Update(c.Request.Context(), patch, actor)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, s)
}
