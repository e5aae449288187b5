package handler

import (
	"github.com/gin-gonic/gin"

	"eventtix/registrar/internal/service"
	"eventtix/registrar/pkg/response"
)

// TicketHandler serves the gate scanner and ticket administration.
type TicketHandler struct {
	tickets service.TicketService
}

func NewTicketHandler(tickets service.TicketService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// Verify always answers 200 for a well-formed lookup; validity is in the body.
func (h *TicketHandler) Verify(c *gin.Context) {
	res, err := h.tickets.Verify(c.Request.Context(), c.Param("serial"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, res)
}

func (h *TicketHandler) CheckIn(c *gin.Context) {
	h.mutate(c, func(actor service.Actor) (*service.TicketDetails, error) {
		return h.tickets.CheckIn(c.Request.Context(), c.Param("serial"), actor)
	})
}

func (h *TicketHandler) CheckOut(c *gin.Context) {
	h.mutate(c, func(actor service.Actor) (*service.TicketDetails, error) {
		return h.tickets.CheckOut(c.Request.Context(), c.Param("serial"), actor)
	})
}

func (h *TicketHandler) SetActive(c *gin.Context) {
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	h.mutate(c, func(actor service.Actor) (*service.TicketDetails, error) {
		return h.tickets.SetActive(c.Request.Context(), c.Param("serial"), *req.IsActive, actor)
	})
}

func (h *TicketHandler) ResetAttendance(c *gin.Context) {
	h.mutate(c, func(actor service.Actor) (*service.TicketDetails, error) {
		return h.tickets.ResetAttendance(c.Request.Context(), c.Param("serial"), actor)
	})
}

func (h *TicketHandler) mutate(c *gin.Context, op func(actor service.Actor) (*service.TicketDetails, error)) {
	actor, err := currentActor(c)
	if err != nil {
		response.Unauthorized(c, "missing authentication")
		return
	}
	details, err := op(actor)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, details)
}
