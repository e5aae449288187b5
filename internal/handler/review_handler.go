package handler

import (
	"github.com/gin-gonic/gin"

	"eventtix/registrar/internal/service"
	"eventtix/registrar/pkg/response"
)

type ReviewHandler struct {
	review service.ReviewService
}

func NewReviewHandler(review service.ReviewService) *ReviewHandler {
	return &ReviewHandler{review: review}
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

func (h *ReviewHandler) List(c *gin.Context) {
	page, err := intQuery(c, "page", 1)
	if err != nil {
		response.BadRequest(c, "page must be an integer")
		return
	}
	size, err := intQuery(c, "page_size", 0)
	if err != nil {
		response.BadRequest(c, "page_size must be an integer")
		return
	}

	out, err := h.review.List(c.Request.Context(), service.ListFilter{
		Status:   c.Query("status_filter"),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, out)
}

func (h *ReviewHandler) Detail(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		response.BadRequest(c, "invalid registration id")
		return
	}
	reg, err := h.review.Detail(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, reg)
}

func (h *ReviewHandler) Approve(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		response.BadRequest(c, "invalid registration id")
		return
	}
	actor, err := currentActor(c)
	if err != nil {
		response.Unauthorized(c, "missing authentication")
		return
	}

	out, err := h.review.Approve(c.Request.Context(), id, actor)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, out)
}

func (h *ReviewHandler) Reject(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		response.BadRequest(c, "invalid registration id")
		return
	}
	actor, err := currentActor(c)
	if err != nil {
		response.Unauthorized(c, "missing authentication")
		return
	}
	var req RejectRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request body: "+err.Error())
			return
		}
	}

	out, err := h.review.Reject(c.Request.Context(), id, req.Reason, actor)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, out)
}

func (h *ReviewHandler) Purge(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		response.BadRequest(c, "invalid registration id")
		return
	}
	actor, err := currentActor(c)
	if err != nil {
		response.Unauthorized(c, "missing authentication")
		return
	}

	if err := h.review.Purge(c.Request.Context(), id, actor); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"id": id, "deleted": true})
}

func (h *ReviewHandler) Stats(c *gin.Context) {
	stats, err := h.review.Stats(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, stats)
}
