package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/themestore/demoaccess/internal/model"
	"github.com/themestore/demoaccess/pkg/token"
	"gorm.io/gorm"
)

// fallbackScanLimit bounds the bcrypt scan when an exact token match misses
const fallbackScanLimit = 500

// linkStore is the slice of the demo link repository the service needs
type linkStore interface {
	Create(link *model.DemoLink) error
	SetExpiresAt(id uint, expiresAt time.Time) error
	FindByID(id uint) (*model.DemoLink, error)
	FindByToken(token string) (*model.DemoLink, error)
	FindActiveForLead(leadID uint) (*model.DemoLink, error)
	ListRecentActive(limit int) ([]model.DemoLink, error)
	IncrementViews(id uint, at time.Time) (bool, error)
	MarkUsedIfExhausted(id uint) error
	MarkExpired(id uint) error
	ExpireActiveForLead(leadID uint) error
	SweepExpired(cutoff time.Time) (int64, error)
}

// linkLeadStore is the slice of the lead repository the service needs
type linkLeadStore interface {
	FindByEmail(email string) (*model.Lead, error)
	FindByID(id uint) (*model.Lead, error)
	IncrementViewCount(id uint) error
}

// followupReader surfaces the reissue signal
type followupReader interface {
	LatestFollowupForLead(leadID uint) (*model.Followup, error)
}

// linkMailer delivers the watch URL
type linkMailer interface {
	SendDemoLink(toEmail, name, demoURL string, expiryMinutes, maxViews int, videoPassword string) error
}

// streamStorage presigns short-lived video URLs
type streamStorage interface {
	PresignedStreamURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// DemoLinkConfig holds the token lifecycle knobs
type DemoLinkConfig struct {
	TTL           time.Duration
	MaxViews      int
	LeadViewCap   int
	PublicBaseURL string
	VideoObject   string
	StreamExpiry  time.Duration
	VideoPassword string
}

// DemoLinkService mints, validates and consumes demo access links
type DemoLinkService struct {
	links     linkStore
	leads     linkLeadStore
	followups followupReader
	mail      linkMailer
	videos    streamStorage
	cfg       DemoLinkConfig

	now func() time.Time
}

// NewDemoLinkService creates the link service
func NewDemoLinkService(links linkStore, leads linkLeadStore, followups followupReader, mail linkMailer, videos streamStorage, cfg DemoLinkConfig) *DemoLinkService {
	return &DemoLinkService{
		links:     links,
		leads:     leads,
		followups: followups,
		mail:      mail,
		videos:    videos,
		cfg:       cfg,
		now:       time.Now,
	}
}

// IssueResult carries a minted or reused link plus how it was obtained
type IssueResult struct {
	Link     *model.DemoLink
	Lead     *model.Lead
	Reissued bool // true when a live link was force-expired and replaced
}

// Issue returns a demo link for a verified lead. Issue is idempotent: a live
// link is returned as-is unless the lead's latest follow-up is rescheduled,
// in which case the old link is force-expired and a fresh one minted.
func (s *DemoLinkService) Issue(email string, leadID uint) (*IssueResult, error) {
	lead, err := s.findLead(email, leadID)
	if err != nil {
		return nil, err
	}

	if !lead.IsVerified() {
		return nil, ErrNotVerified
	}
	if lead.ViewCount >= s.cfg.LeadViewCap {
		return nil, ErrExhausted
	}

	now := s.now()
	reissued := false

	existing, err := s.links.FindActiveForLead(lead.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up active link: %w", err)
	}

	if existing != nil {
		if existing.ExpiredBy(now, s.cfg.TTL) {
			if err := s.links.MarkExpired(existing.ID); err != nil {
				return nil, fmt.Errorf("failed to expire stale link: %w", err)
			}
		} else if s.rescheduled(lead.ID) {
			// Sales pushed the demo out; the old window no longer applies
			if err := s.links.ExpireActiveForLead(lead.ID); err != nil {
				return nil, fmt.Errorf("failed to expire link on reschedule: %w", err)
			}
			reissued = true
		} else {
			return &IssueResult{Link: existing, Lead: lead}, nil
		}
	}

	link, err := s.mint(lead)
	if err != nil {
		return nil, err
	}

	demoURL := s.WatchURL(link.Token)
	expiryMinutes := int(s.cfg.TTL.Minutes())
	if err := s.mail.SendDemoLink(lead.Email, lead.CompanyName, demoURL, expiryMinutes, link.MaxViews, s.cfg.VideoPassword); err != nil {
		// The link is already live and returned in the response
		log.Printf("⚠️  Demo link email failed for lead %d: %v", lead.ID, err)
	}

	log.Printf("🔗 Demo link %d issued to lead %d (reissued=%t)", link.ID, lead.ID, reissued)
	return &IssueResult{Link: link, Lead: lead, Reissued: reissued}, nil
}

// mint creates a fresh link. The expiry deadline is computed from the
// CreatedAt the database stored, then written back to the advisory column.
func (s *DemoLinkService) mint(lead *model.Lead) (*model.DemoLink, error) {
	raw, err := token.Generate(token.MinLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	hash, err := token.Hash(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to hash token: %w", err)
	}

	link := &model.DemoLink{
		LeadID:    lead.ID,
		Token:     raw,
		TokenHash: hash,
		Status:    model.DemoLinkStatusActive,
		MaxViews:  s.cfg.MaxViews,
		ExpiresAt: s.now().Add(s.cfg.TTL), // provisional; rewritten below
	}
	if err := s.links.Create(link); err != nil {
		return nil, fmt.Errorf("failed to store link: %w", err)
	}

	expiresAt := link.CreatedAt.Add(s.cfg.TTL)
	if err := s.links.SetExpiresAt(link.ID, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to set link expiry: %w", err)
	}
	link.ExpiresAt = expiresAt

	return link, nil
}

// Validate resolves a token and enforces the access gates: the link must
// exist, be active, inside its TTL and have view budget left.
func (s *DemoLinkService) Validate(raw string) (*model.DemoLink, error) {
	link, err := s.lookup(raw)
	if err != nil {
		return nil, err
	}

	switch link.Status {
	case model.DemoLinkStatusExpired:
		return nil, ErrExpired
	case model.DemoLinkStatusUsed:
		return nil, ErrExhausted
	}

	if link.ExpiredBy(s.now(), s.cfg.TTL) {
		if err := s.links.MarkExpired(link.ID); err != nil {
			log.Printf("⚠️  Failed to mark link %d expired: %v", link.ID, err)
		}
		return nil, ErrExpired
	}

	if link.Exhausted() {
		if err := s.links.MarkUsedIfExhausted(link.ID); err != nil {
			log.Printf("⚠️  Failed to mark link %d used: %v", link.ID, err)
		}
		return nil, ErrExhausted
	}

	return link, nil
}

// Resolve maps a token to its link without enforcing the access gates.
// Engagement endpoints use it so a prospect can still ask a question or
// leave an interest signal after the link itself has lapsed.
func (s *DemoLinkService) Resolve(raw string) (*model.DemoLink, error) {
	return s.lookup(raw)
}

// lookup finds a link by exact token match, falling back to a bounded
// bcrypt scan over recent active links. The fallback exists for rows whose
// plaintext token column was scrubbed.
func (s *DemoLinkService) lookup(raw string) (*model.DemoLink, error) {
	link, err := s.links.FindByToken(raw)
	if err == nil {
		return link, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}

	candidates, err := s.links.ListRecentActive(fallbackScanLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to scan for token: %w", err)
	}
	for i := range candidates {
		if token.Verify(raw, candidates[i].TokenHash) {
			return &candidates[i], nil
		}
	}
	return nil, ErrNotFound
}

// RecordView consumes one view against the link. The decrement is a
// conditional UPDATE, so two viewers racing for the last slot cannot both
// win. Returns the link as it stands after the view.
func (s *DemoLinkService) RecordView(raw string) (*model.DemoLink, error) {
	link, err := s.Validate(raw)
	if err != nil {
		return nil, err
	}

	now := s.now()
	consumed, err := s.links.IncrementViews(link.ID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to record view: %w", err)
	}
	if !consumed {
		if err := s.links.MarkUsedIfExhausted(link.ID); err != nil {
			log.Printf("⚠️  Failed to mark link %d used: %v", link.ID, err)
		}
		return nil, ErrExhausted
	}

	if err := s.links.MarkUsedIfExhausted(link.ID); err != nil {
		log.Printf("⚠️  Failed to mark link %d used: %v", link.ID, err)
	}
	if err := s.leads.IncrementViewCount(link.LeadID); err != nil {
		log.Printf("⚠️  Failed to bump view count for lead %d: %v", link.LeadID, err)
	}

	return s.links.FindByID(link.ID)
}

// Stream returns a short-lived presigned URL for the demo video. The token
// must still pass the full access gates; streaming does not consume a view.
func (s *DemoLinkService) Stream(ctx context.Context, raw string) (string, time.Time, error) {
	if _, err := s.Validate(raw); err != nil {
		return "", time.Time{}, err
	}

	streamURL, err := s.videos.PresignedStreamURL(ctx, s.cfg.VideoObject, s.cfg.StreamExpiry)
	if err != nil {
		log.Printf("❌ Failed to presign stream URL: %v", err)
		return "", time.Time{}, ErrStorage
	}
	return streamURL, s.now().Add(s.cfg.StreamExpiry), nil
}

// SweepExpired expires every active link past its TTL. Idempotent; run from
// the sweeper CLI or the admin dashboard.
func (s *DemoLinkService) SweepExpired() (int64, error) {
	cutoff := s.now().Add(-s.cfg.TTL)
	n, err := s.links.SweepExpired(cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired links: %w", err)
	}
	if n > 0 {
		log.Printf("🧹 Expired %d demo link(s)", n)
	}
	return n, nil
}

// LeadForLink returns the lead a link belongs to
func (s *DemoLinkService) LeadForLink(link *model.DemoLink) (*model.Lead, error) {
	lead, err := s.leads.FindByID(link.LeadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up lead: %w", err)
	}
	return lead, nil
}

// WatchURL builds the public watch-page URL for a token
func (s *DemoLinkService) WatchURL(raw string) string {
	return fmt.Sprintf("%s/watch?token=%s", s.cfg.PublicBaseURL, url.QueryEscape(raw))
}

func (s *DemoLinkService) rescheduled(leadID uint) bool {
	latest, err := s.followups.LatestFollowupForLead(leadID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("⚠️  Failed to read follow-ups for lead %d: %v", leadID, err)
		}
		return false
	}
	return latest.IsRescheduled()
}

func (s *DemoLinkService) findLead(email string, leadID uint) (*model.Lead, error) {
	var (
		lead *model.Lead
		err  error
	)
	if leadID != 0 {
		lead, err = s.leads.FindByID(leadID)
	} else {
		lead, err = s.leads.FindByEmail(email)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up lead: %w", err)
	}
	return lead, nil
}
