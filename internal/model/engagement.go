package model

import "time"

// VideoEvent is a watch-progress event reported by the player
type VideoEvent string

const (
	VideoEventStarted   VideoEvent = "started"
	VideoEventProgress  VideoEvent = "progress"
	VideoEventCompleted VideoEvent = "completed"
	VideoEventAbandoned VideoEvent = "abandoned"
)

// ValidVideoEvent reports whether the player sent a known event type
func ValidVideoEvent(e VideoEvent) bool {
	switch e {
	case VideoEventStarted, VideoEventProgress, VideoEventCompleted, VideoEventAbandoned:
		return true
	}
	return false
}

// VideoActivity records watch progress for one demo link.
// One row per link, updated in place as events arrive.
type VideoActivity struct {
	ID                 uint       `json:"id" gorm:"primaryKey"`
	DemoLinkID         uint       `json:"demo_link_id" gorm:"not null;index"`
	LeadID             uint       `json:"lead_id" gorm:"not null;index"`
	Status             VideoEvent `json:"status" gorm:"size:16;not null;default:'started'"`
	ProgressPercentage float64    `json:"progress_percentage" gorm:"not null;default:0"`
	DurationWatched    int        `json:"duration_watched" gorm:"not null;default:0"` // seconds
	StartedAt          *time.Time `json:"started_at"`
	LastProgressAt     *time.Time `json:"last_progress_at"`
	CompletedAt        *time.Time `json:"completed_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	DemoLink DemoLink `json:"-" gorm:"foreignKey:DemoLinkID"`
	Lead     Lead     `json:"-" gorm:"foreignKey:LeadID"`
}

// QueryStatus tracks whether the sales team has answered a client question
type QueryStatus string

const (
	QueryStatusPending   QueryStatus = "pending"
	QueryStatusResponded QueryStatus = "responded"
)

// Query is a client question submitted while watching the demo
type Query struct {
	ID            uint        `json:"id" gorm:"primaryKey"`
	LeadID        uint        `json:"lead_id" gorm:"not null;index"`
	DemoLinkID    uint        `json:"demo_link_id" gorm:"not null;index"`
	QueryText     string      `json:"query_text" gorm:"type:text;not null"`
	Status        QueryStatus `json:"status" gorm:"size:16;not null;default:'pending'"`
	AdminResponse string      `json:"admin_response" gorm:"type:text"`
	RespondedAt   *time.Time  `json:"responded_at"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`

	Lead Lead `json:"-" gorm:"foreignKey:LeadID"`
}

// FollowupType classifies a sales follow-up entry
type FollowupType string

const (
	FollowupTypeCall     FollowupType = "call"
	FollowupTypeEmail    FollowupType = "email"
	FollowupTypeMeeting  FollowupType = "meeting"
	FollowupTypeNote     FollowupType = "note"
	FollowupTypeReminder FollowupType = "reminder"
	FollowupTypeOther    FollowupType = "other"
)

// FollowupStatus is the scheduling state of a follow-up.
// A lead whose most recent follow-up is rescheduled may be issued a fresh
// demo link even while an older link is still technically valid.
type FollowupStatus string

const (
	FollowupStatusPending     FollowupStatus = "pending"
	FollowupStatusCompleted   FollowupStatus = "completed"
	FollowupStatusCancelled   FollowupStatus = "cancelled"
	FollowupStatusRescheduled FollowupStatus = "rescheduled"
)

// Followup is a sales-team action recorded against a lead
type Followup struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	LeadID       uint           `json:"lead_id" gorm:"not null;index"`
	FollowupType FollowupType   `json:"followup_type" gorm:"size:16;not null;default:'note'"`
	Subject      string         `json:"subject" gorm:"size:255"`
	Notes        string         `json:"notes" gorm:"type:text"`
	FollowupDate *time.Time     `json:"followup_date"`
	Status       FollowupStatus `json:"status" gorm:"size:16;not null;default:'pending'"`
	CreatedBy    string         `json:"created_by" gorm:"size:255"`
	CompletedAt  *time.Time     `json:"completed_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`

	Lead Lead `json:"-" gorm:"foreignKey:LeadID"`
}

// IsRescheduled reports whether this follow-up carries the reschedule signal
func (f *Followup) IsRescheduled() bool {
	return f.Status == FollowupStatusRescheduled
}
