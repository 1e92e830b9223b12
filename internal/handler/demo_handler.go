package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/themestore/demoaccess/internal/model"
	"github.com/themestore/demoaccess/internal/service"
	"github.com/themestore/demoaccess/internal/ws"
)

// DemoHandler handles demo link issuing, the watch page and engagement
// tracking
type DemoHandler struct {
	linkService       *service.DemoLinkService
	engagementService *service.EngagementService
	feed              *ws.Hub
	videoEmbedURL     string
	videoPassword     string
}

func NewDemoHandler(linkService *service.DemoLinkService, engagementService *service.EngagementService, feed *ws.Hub, videoEmbedURL, videoPassword string) *DemoHandler {
	return &DemoHandler{
		linkService:       linkService,
		engagementService: engagementService,
		feed:              feed,
		videoEmbedURL:     videoEmbedURL,
		videoPassword:     videoPassword,
	}
}

// Issue godoc
// @Summary Issue a demo link for a verified lead
// @Description Returns the lead's live link if one exists. A fresh link is minted when none is live, or when the latest follow-up was rescheduled.
// @Tags Demo
// @Accept json
// @Produce json
// @Param body body model.IssueDemoLinkRequest true "Lead email or id"
// @Success 200 {object} model.DemoLinkResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /demo/link [post]
func (h *DemoHandler) Issue(c *gin.Context) {
	var req model.IssueDemoLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}
	if req.Email == "" && req.LeadID == 0 {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "email or lead_id is required"})
		return
	}

	result, err := h.linkService.Issue(req.Email, req.LeadID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.DemoLinkResponse{
		Message:    "Demo link ready",
		DemoLinkID: result.Link.ID,
		DemoURL:    h.linkService.WatchURL(result.Link.Token),
		Token:      result.Link.Token,
		ExpiresAt:  result.Link.ExpiresAt,
		MaxViews:   result.Link.MaxViews,
		Reissued:   result.Reissued,
	})
}

// Watch godoc
// @Summary Open the demo (consumes one view)
// @Description Validates the token and consumes a view. Two viewers racing for the last view cannot both get in.
// @Tags Demo
// @Produce json
// @Param token query string true "Access token"
// @Success 200 {object} model.WatchResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 410 {object} model.ErrorResponse
// @Router /demo/watch [get]
func (h *DemoHandler) Watch(c *gin.Context) {
	raw := c.Query("token")
	if raw == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "token is required"})
		return
	}

	link, err := h.linkService.RecordView(raw)
	if err != nil {
		writeError(c, err)
		return
	}

	lead, err := h.linkService.LeadForLink(link)
	if err != nil {
		writeError(c, err)
		return
	}

	videoURL := h.videoEmbedURL
	if videoURL == "" {
		videoURL = "/api/demo/stream?token=" + raw
	}

	c.JSON(http.StatusOK, model.WatchResponse{
		LeadID:         lead.ID,
		CompanyName:    lead.CompanyName,
		VideoURL:       videoURL,
		VideoPassword:  h.videoPassword,
		RemainingViews: link.RemainingViews(),
		ExpiresAt:      link.ExpiresAt,
		Interest:       lead.Interest,
	})
}

// Stream godoc
// @Summary Get a short-lived video URL
// @Description Token-gated; does not consume a view. The returned URL supports range requests for seeking.
// @Tags Demo
// @Produce json
// @Param token query string true "Access token"
// @Success 200 {object} model.StreamResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 410 {object} model.ErrorResponse
// @Router /demo/stream [get]
func (h *DemoHandler) Stream(c *gin.Context) {
	raw := c.Query("token")
	if raw == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "token is required"})
		return
	}

	streamURL, expiresAt, err := h.linkService.Stream(c.Request.Context(), raw)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.StreamResponse{
		StreamURL: streamURL,
		ExpiresAt: expiresAt,
	})
}

// TrackActivity godoc
// @Summary Record a watch-progress event from the player
// @Description Accepted even after the link lapses, so late pings still attribute.
// @Tags Demo
// @Accept json
// @Produce json
// @Param body body model.TrackActivityRequest true "Player event"
// @Success 200 {object} model.VideoActivity
// @Failure 404 {object} model.ErrorResponse
// @Router /demo/activity [post]
func (h *DemoHandler) TrackActivity(c *gin.Context) {
	var req model.TrackActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	activity, err := h.engagementService.TrackActivity(&req)
	if err != nil {
		writeError(c, err)
		return
	}

	h.feed.Publish(&model.FeedEvent{Type: model.FeedEventVideoActivity, LeadID: activity.LeadID, Payload: activity})
	c.JSON(http.StatusOK, activity)
}

// SaveQuery godoc
// @Summary Submit a question from the watch page
// @Tags Demo
// @Accept json
// @Produce json
// @Param body body model.SaveQueryRequest true "Question"
// @Success 201 {object} model.Query
// @Failure 404 {object} model.ErrorResponse
// @Router /demo/query [post]
func (h *DemoHandler) SaveQuery(c *gin.Context) {
	var req model.SaveQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	query, err := h.engagementService.SaveQuery(&req)
	if err != nil {
		writeError(c, err)
		return
	}

	h.feed.Publish(&model.FeedEvent{Type: model.FeedEventQueryReceived, LeadID: query.LeadID, Payload: query})
	c.JSON(http.StatusCreated, query)
}

// SaveInterest godoc
// @Summary Record the prospect's interest signal
// @Tags Demo
// @Accept json
// @Produce json
// @Param body body model.SaveInterestRequest true "Interest"
// @Success 200 {object} model.Lead
// @Failure 404 {object} model.ErrorResponse
// @Router /demo/interest [post]
func (h *DemoHandler) SaveInterest(c *gin.Context) {
	var req model.SaveInterestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	lead, err := h.engagementService.SaveInterest(&req)
	if err != nil {
		writeError(c, err)
		return
	}

	h.feed.Publish(&model.FeedEvent{Type: model.FeedEventInterestSaved, LeadID: lead.ID, Payload: lead})
	c.JSON(http.StatusOK, lead)
}
