package model

import "time"

// ==================== Requests ====================

// CreateLeadRequest is the intake form payload
type CreateLeadRequest struct {
	CompanyName    string `json:"company_name" binding:"required,max=255"`
	Location       string `json:"location" binding:"required,max=255"`
	Email          string `json:"email" binding:"required,email,max=255"`
	Mobile         string `json:"mobile" binding:"required,min=10,max=20"`
	CampaignSource string `json:"campaign_source" binding:"max=255"`
}

// SendOTPRequest asks for a fresh verification code
type SendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// VerifyOTPRequest submits a code for verification.
// The 6-digit shape is validated here, before the verifier runs.
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"otp" binding:"required,len=6,numeric"`
}

// IssueDemoLinkRequest mints (or re-returns) a demo link for a verified lead
type IssueDemoLinkRequest struct {
	Email  string `json:"email" binding:"omitempty,email"`
	LeadID uint   `json:"lead_id"`
}

// TrackActivityRequest is a watch-progress ping from the player
type TrackActivityRequest struct {
	Token              string     `json:"token" binding:"required"`
	EventType          VideoEvent `json:"event_type" binding:"required"`
	ProgressPercentage float64    `json:"progress_percentage" binding:"min=0,max=100"`
	DurationWatched    int        `json:"duration_watched" binding:"min=0"`
}

// SaveQueryRequest submits a client question from the watch page
type SaveQueryRequest struct {
	Token string `json:"token" binding:"required"`
	Query string `json:"query" binding:"required"`
}

// SaveInterestRequest records the prospect's interest signal
type SaveInterestRequest struct {
	Token    string       `json:"token" binding:"required"`
	Interest LeadInterest `json:"interest" binding:"required,oneof=interested not_interested"`
}

// SaveFollowupRequest creates or updates a sales follow-up
type SaveFollowupRequest struct {
	LeadID       uint           `json:"lead_id" binding:"required"`
	FollowupID   uint           `json:"followup_id"`
	FollowupType FollowupType   `json:"followup_type"`
	Subject      string         `json:"subject" binding:"max=255"`
	Notes        string         `json:"notes"`
	FollowupDate *time.Time     `json:"followup_date"`
	Status       FollowupStatus `json:"status"`
	CreatedBy    string         `json:"created_by" binding:"max=255"`
}

// RespondQueryRequest is an admin answer to a client question
type RespondQueryRequest struct {
	QueryID  uint   `json:"query_id" binding:"required"`
	Response string `json:"response" binding:"required"`
}

// BulkRespondRequest answers several pending queries at once
type BulkRespondRequest struct {
	QueryIDs []uint `json:"query_ids" binding:"required,min=1"`
	Response string `json:"response" binding:"required"`
}

// AdminLoginRequest authenticates a dashboard user
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ==================== Responses ====================

// ErrorResponse is the uniform error envelope
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse is a plain acknowledgement
type SuccessResponse struct {
	Message string `json:"message"`
}

// OTPSentResponse acknowledges a dispatched verification code
type OTPSentResponse struct {
	Message     string `json:"message"`
	Email       string `json:"email"`
	ExpiresIn   int    `json:"expires_in"` // seconds
	MaxAttempts int    `json:"max_attempts"`
}

// OTPVerifiedResponse acknowledges a successful verification
type OTPVerifiedResponse struct {
	Message    string    `json:"message"`
	LeadID     uint      `json:"lead_id"`
	Email      string    `json:"email"`
	VerifiedAt time.Time `json:"verified_at"`
}

// DemoLinkResponse carries a minted (or reused) demo link
type DemoLinkResponse struct {
	Message    string    `json:"message"`
	DemoLinkID uint      `json:"demo_link_id"`
	DemoURL    string    `json:"demo_url"`
	Token      string    `json:"token"`
	VideoURL   string    `json:"video_url,omitempty"`
	ExpiresAt  time.Time `json:"expires_at"`
	MaxViews   int       `json:"max_views"`
	Reissued   bool      `json:"reissued"`
}

// WatchResponse is the token-gated payload for the watch page
type WatchResponse struct {
	LeadID         uint         `json:"lead_id"`
	CompanyName    string       `json:"company_name"`
	VideoURL       string       `json:"video_url"`
	VideoPassword  string       `json:"video_password,omitempty"`
	RemainingViews int          `json:"remaining_views"`
	ExpiresAt      time.Time    `json:"expires_at"`
	Interest       LeadInterest `json:"interest"`
}

// StreamResponse points the player at a short-lived video URL
type StreamResponse struct {
	StreamURL string    `json:"stream_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// EnquiryLookupResponse is the intake-form auto-fill payload
type EnquiryLookupResponse struct {
	Found       bool   `json:"found"`
	Mobile      string `json:"mobile,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	City        string `json:"city,omitempty"`
}

// AdminLoginResponse carries the dashboard session token
type AdminLoginResponse struct {
	Token string    `json:"token"`
	User  AdminUser `json:"user"`
}

// LeadOverview is one row of the dashboard lead list: the lead joined with
// its latest demo link and best video activity
type LeadOverview struct {
	Lead          Lead           `json:"lead"`
	DemoLink      *DemoLink      `json:"demo_link,omitempty"`
	VideoActivity *VideoActivity `json:"video_activity,omitempty"`
}

// LeadDetail is the full engagement history for one lead
type LeadDetail struct {
	Lead       Lead            `json:"lead"`
	Challenges []OTPChallenge  `json:"otp_challenges"`
	DemoLinks  []DemoLink      `json:"demo_links"`
	Activity   []VideoActivity `json:"video_activity"`
	Queries    []Query         `json:"queries"`
	Followups  []Followup      `json:"followups"`
}

// PagedUserLogs is a LIMIT/OFFSET page of the admin activity log
type PagedUserLogs struct {
	Logs    []UserLog `json:"logs"`
	Total   int64     `json:"total"`
	Page    int       `json:"page"`
	PerPage int       `json:"per_page"`
}

// SweepResponse reports how many links an expiry sweep transitioned
type SweepResponse struct {
	Expired int64 `json:"expired"`
}

// ==================== Feed events (admin dashboard) ====================

// FeedEventType identifies a live dashboard event
type FeedEventType string

const (
	FeedEventLeadCreated   FeedEventType = "lead.created"
	FeedEventLeadVerified  FeedEventType = "lead.verified"
	FeedEventQueryReceived FeedEventType = "query.received"
	FeedEventVideoActivity FeedEventType = "video.activity"
	FeedEventInterestSaved FeedEventType = "interest.saved"
)

// FeedEvent is pushed to connected admin dashboards over the websocket feed
type FeedEvent struct {
	Type      FeedEventType `json:"type"`
	LeadID    uint          `json:"lead_id,omitempty"`
	Payload   interface{}   `json:"payload,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}
