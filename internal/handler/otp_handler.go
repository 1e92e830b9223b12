package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/themestore/demoaccess/internal/model"
	"github.com/themestore/demoaccess/internal/service"
	"github.com/themestore/demoaccess/internal/ws"
)

// OTPHandler handles email verification endpoints
type OTPHandler struct {
	otpService *service.OTPService
	feed       *ws.Hub
	expiry     time.Duration
}

func NewOTPHandler(otpService *service.OTPService, feed *ws.Hub, expiry time.Duration) *OTPHandler {
	return &OTPHandler{
		otpService: otpService,
		feed:       feed,
		expiry:     expiry,
	}
}

// Send godoc
// @Summary Send (or resend) a verification code
// @Description Any still-open code for the email is superseded; only the newest code verifies.
// @Tags OTP
// @Accept json
// @Produce json
// @Param body body model.SendOTPRequest true "Email to verify"
// @Success 200 {object} model.OTPSentResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 429 {object} model.ErrorResponse
// @Router /otp/send [post]
func (h *OTPHandler) Send(c *gin.Context) {
	var req model.SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	challenge, err := h.otpService.SendChallenge(req.Email)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.OTPSentResponse{
		Message:     "OTP sent successfully",
		Email:       req.Email,
		ExpiresIn:   int(h.expiry.Seconds()),
		MaxAttempts: challenge.MaxAttempts,
	})
}

// Verify godoc
// @Summary Verify an email with the submitted code
// @Tags OTP
// @Accept json
// @Produce json
// @Param body body model.VerifyOTPRequest true "Email and code"
// @Success 200 {object} model.OTPVerifiedResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 410 {object} model.ErrorResponse
// @Router /otp/verify [post]
func (h *OTPHandler) Verify(c *gin.Context) {
	var req model.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	lead, err := h.otpService.Verify(req.Email, req.Code)
	if err != nil {
		writeError(c, err)
		return
	}

	h.feed.Publish(&model.FeedEvent{Type: model.FeedEventLeadVerified, LeadID: lead.ID, Payload: lead})

	c.JSON(http.StatusOK, model.OTPVerifiedResponse{
		Message:    "Email verified successfully",
		LeadID:     lead.ID,
		Email:      lead.Email,
		VerifiedAt: time.Now().UTC(),
	})
}
