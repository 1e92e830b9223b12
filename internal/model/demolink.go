package model

import "time"

// DemoLinkStatus is the lifecycle state of an access token.
// active -> used (view budget spent) | expired (TTL elapsed or superseded).
type DemoLinkStatus string

const (
	DemoLinkStatusActive  DemoLinkStatus = "active"
	DemoLinkStatusExpired DemoLinkStatus = "expired"
	DemoLinkStatusUsed    DemoLinkStatus = "used"
)

// DemoLink is a capability token granting time- and view-bounded access to
// the demo video. The plaintext token is stored for exact-match lookup and
// the bcrypt hash doubles as a fallback lookup path; keeping both is a
// deliberate trade-off the storage layer documents.
type DemoLink struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	LeadID     uint           `json:"lead_id" gorm:"not null;index"`
	Token      string         `json:"-" gorm:"size:128;not null;index"`
	TokenHash  string         `json:"-" gorm:"size:255;not null"`
	Status     DemoLinkStatus `json:"status" gorm:"size:16;not null;default:'active'"`
	ViewsCount int            `json:"views_count" gorm:"not null;default:0"`
	MaxViews   int            `json:"max_views" gorm:"not null;default:1"`
	ExpiresAt  time.Time      `json:"expires_at" gorm:"not null"` // advisory; authoritative expiry derives from CreatedAt
	AccessedAt *time.Time     `json:"accessed_at"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`

	Lead Lead `json:"-" gorm:"foreignKey:LeadID"`
}

// ExpiredBy reports whether the link is past its TTL at the given instant,
// always recomputed from CreatedAt
func (d *DemoLink) ExpiredBy(now time.Time, ttl time.Duration) bool {
	return now.After(d.CreatedAt.Add(ttl))
}

// Exhausted reports whether the view budget is spent
func (d *DemoLink) Exhausted() bool {
	return d.ViewsCount >= d.MaxViews
}

// RemainingViews returns how many gated views the link still grants
func (d *DemoLink) RemainingViews() int {
	remaining := d.MaxViews - d.ViewsCount
	if remaining < 0 {
		return 0
	}
	return remaining
}
