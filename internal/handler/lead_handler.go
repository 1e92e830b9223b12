package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/themestore/demoaccess/internal/model"
	"github.com/themestore/demoaccess/internal/service"
	"github.com/themestore/demoaccess/internal/ws"
)

// LeadHandler handles intake-form endpoints
type LeadHandler struct {
	leadService *service.LeadService
	feed        *ws.Hub
}

func NewLeadHandler(leadService *service.LeadService, feed *ws.Hub) *LeadHandler {
	return &LeadHandler{
		leadService: leadService,
		feed:        feed,
	}
}

// Create godoc
// @Summary Submit the demo request form
// @Description Captures a lead. Resubmitting with the same email refreshes the contact details instead of creating a duplicate.
// @Tags Leads
// @Accept json
// @Produce json
// @Param body body model.CreateLeadRequest true "Lead details"
// @Success 201 {object} model.Lead
// @Success 200 {object} model.Lead
// @Failure 400 {object} model.ErrorResponse
// @Router /leads [post]
func (h *LeadHandler) Create(c *gin.Context) {
	var req model.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	lead, created, err := h.leadService.Capture(&req)
	if err != nil {
		writeError(c, err)
		return
	}

	if created {
		h.feed.Publish(&model.FeedEvent{Type: model.FeedEventLeadCreated, LeadID: lead.ID, Payload: lead})
		c.JSON(http.StatusCreated, lead)
		return
	}
	c.JSON(http.StatusOK, lead)
}

// EnquiryLookup godoc
// @Summary Look up prior enquiry details for form auto-fill
// @Tags Leads
// @Produce json
// @Param email query string true "Email address"
// @Success 200 {object} model.EnquiryLookupResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /leads/enquiry [get]
func (h *LeadHandler) EnquiryLookup(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "email is required"})
		return
	}

	resp, err := h.leadService.EnquiryLookup(email)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
