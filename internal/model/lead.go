package model

import "time"

// LeadStatus tracks how far a prospect has progressed through verification
type LeadStatus string

const (
	LeadStatusPending  LeadStatus = "pending"
	LeadStatusVerified LeadStatus = "verified"
	LeadStatusActive   LeadStatus = "active"
	LeadStatusExpired  LeadStatus = "expired"
	LeadStatusBlocked  LeadStatus = "blocked"
)

// LeadInterest is the prospect's self-reported signal from the watch page
type LeadInterest string

const (
	LeadInterestNone          LeadInterest = "none"
	LeadInterestInterested    LeadInterest = "interested"
	LeadInterestNotInterested LeadInterest = "not_interested"
)

// Lead is a prospective customer captured from the intake form.
// Email is unique; leads are never hard-deleted.
type Lead struct {
	ID             uint         `json:"id" gorm:"primaryKey"`
	CompanyName    string       `json:"company_name" gorm:"size:255;not null"`
	Location       string       `json:"location" gorm:"size:255;not null"`
	Email          string       `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Mobile         string       `json:"mobile" gorm:"size:20;not null"`
	CampaignSource string       `json:"campaign_source" gorm:"size:255"`
	Status         LeadStatus   `json:"status" gorm:"size:16;not null;default:'pending'"`
	Interest       LeadInterest `json:"interest" gorm:"size:16;not null;default:'none'"`
	ViewCount      int          `json:"view_count" gorm:"not null;default:0"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// IsVerified reports whether the lead passed OTP verification
func (l *Lead) IsVerified() bool {
	return l.Status == LeadStatusVerified
}

// Enquiry is a pre-existing sales enquiry used to auto-fill the intake form
type Enquiry struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Email       string `json:"email" gorm:"size:255;not null;index"`
	Mobile      string `json:"mobile" gorm:"size:20"`
	CompanyName string `json:"company_name" gorm:"size:255"`
	City        string `json:"city" gorm:"size:255"`
}
