package handler

import (
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"eventtix/registrar/internal/model"
	"eventtix/registrar/internal/service"
	"eventtix/registrar/pkg/response"
)

const screenshotField = "payment_screenshot"

type RegistrationHandler struct {
	registrations service.RegistrationService
	settings      service.SettingsService
	maxUploadSize int64
}

func NewRegistrationHandler(registrations service.RegistrationService, settings service.SettingsService, maxUploadSize int64) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations, settings: settings, maxUploadSize: maxUploadSize}
}

// Submit accepts the multipart registration form with the payment screenshot.
func (h *RegistrationHandler) Submit(c *gin.Context) {
	in := service.SubmitInput{
		Name:          c.PostForm("name"),
		Email:         c.PostForm("email"),
		Phone:         c.PostForm("phone"),
		TeamName:      c.PostForm("team_name"),
		Members:       c.PostForm("members"),
		PaymentType:   model.PaymentType(c.DefaultPostForm("payment_type", string(model.PaymentTypeIndividual))),
		PaymentMethod: c.PostForm("payment_method"),
	}
	if raw := c.PostForm("amount"); raw != "" {
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			response.BadRequest(c, "amount must be a number")
			return
		}
		in.Amount = amount
	}

	file, err := c.FormFile(screenshotField)
	if err != nil {
		response.BadRequest(c, "payment screenshot is required")
		return
	}
	if h.maxUploadSize > 0 && file.Size > h.maxUploadSize {
		response.BadRequest(c, "payment screenshot is too large")
		return
	}
	f, err := file.Open()
	if err != nil {
		response.BadRequest(c, "unreadable payment screenshot")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		response.BadRequest(c, "unreadable payment screenshot")
		return
	}
	in.Screenshot = service.Screenshot{Filename: file.Filename, Data: data}

	res, err := h.registrations.Submit(c.Request.Context(), in)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, res)
}

func (h *RegistrationHandler) Status(c *gin.Context) {
	st, err := h.registrations.Status(c.Request.Context(), c.Param("email"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, st)
}

// PublicSettings exposes what the registration form needs to render.
func (h *RegistrationHandler) PublicSettings(c *gin.Context) {
	s, err := h.settings.Get(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{
		"event_name":        s.EventName,
		"event_type":        s.EventType,
		"event_date":        s.EventDate,
		"event_time":        s.EventTime,
		"event_venue":       s.EventVenue,
		"event_location":    s.EventLocation,
		"individual_price":  s.IndividualPrice,
		"bulk_price":        s.BulkPrice,
		"bulk_team_size":    s.BulkTeamSize,
		"currency":          s.Currency,
		"upi_id":            s.UPIID,
		"organization_name": s.OrganizationName,
		"support_email":     s.SupportEmail,
	})
}
