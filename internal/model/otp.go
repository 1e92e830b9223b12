package model

import "time"

// OTPStatus is the lifecycle state of a verification challenge.
// pending -> verified | failed -> blocked | expired.
// A failed challenge never returns to pending; a resend supersedes it.
type OTPStatus string

const (
	OTPStatusPending  OTPStatus = "pending"
	OTPStatusVerified OTPStatus = "verified"
	OTPStatusFailed   OTPStatus = "failed"
	OTPStatusBlocked  OTPStatus = "blocked"
	OTPStatusExpired  OTPStatus = "expired"
)

// OTPChallenge is one verification attempt window for a lead.
// The code is kept both raw and bcrypt-hashed: the hash is what Verify
// compares against, the raw value exists for operator audit of undelivered
// mail. Hash-only storage plus a lookup index would tighten this without
// changing the contract.
type OTPChallenge struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	LeadID      uint       `json:"lead_id" gorm:"not null;index"`
	Code        string     `json:"-" gorm:"size:6;not null"`
	CodeHash    string     `json:"-" gorm:"size:255;not null"`
	Attempts    int        `json:"attempts" gorm:"not null;default:0"`
	MaxAttempts int        `json:"max_attempts" gorm:"not null;default:3"`
	Status      OTPStatus  `json:"status" gorm:"size:16;not null;default:'pending'"`
	ExpiresAt   time.Time  `json:"expires_at" gorm:"not null"` // display only; expiry is derived from CreatedAt
	VerifiedAt  *time.Time `json:"verified_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Lead Lead `json:"-" gorm:"foreignKey:LeadID"`
}

// ExpiredBy reports whether the challenge is past its window at the given
// instant. Always derived from CreatedAt + ttl, never from the stored
// ExpiresAt column, so a drifted or mis-parsed deadline cannot invalidate a
// live code.
func (o *OTPChallenge) ExpiredBy(now time.Time, ttl time.Duration) bool {
	return now.After(o.CreatedAt.Add(ttl))
}

// RemainingAttempts returns how many tries are left before lockout
func (o *OTPChallenge) RemainingAttempts() int {
	remaining := o.MaxAttempts - o.Attempts
	if remaining < 0 {
		return 0
	}
	return remaining
}
