package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/themestore/demoaccess/internal/model"
	"gorm.io/gorm"
)

// ==================== fakes ====================

type fakeLinkStore struct {
	links  []*model.DemoLink
	nextID uint
	clock  func() time.Time
}

func (f *fakeLinkStore) Create(link *model.DemoLink) error {
	f.nextID++
	link.ID = f.nextID
	link.CreatedAt = f.clock()
	f.links = append(f.links, link)
	return nil
}

func (f *fakeLinkStore) SetExpiresAt(id uint, expiresAt time.Time) error {
	if l := f.byID(id); l != nil {
		l.ExpiresAt = expiresAt
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeLinkStore) FindByID(id uint) (*model.DemoLink, error) {
	if l := f.byID(id); l != nil {
		return l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLinkStore) FindByToken(token string) (*model.DemoLink, error) {
	for _, l := range f.links {
		if l.Token == token {
			return l, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLinkStore) FindActiveForLead(leadID uint) (*model.DemoLink, error) {
	for i := len(f.links) - 1; i >= 0; i-- {
		if f.links[i].LeadID == leadID && f.links[i].Status == model.DemoLinkStatusActive {
			return f.links[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLinkStore) ListRecentActive(limit int) ([]model.DemoLink, error) {
	var out []model.DemoLink
	for i := len(f.links) - 1; i >= 0 && len(out) < limit; i-- {
		if f.links[i].Status == model.DemoLinkStatusActive {
			out = append(out, *f.links[i])
		}
	}
	return out, nil
}

func (f *fakeLinkStore) IncrementViews(id uint, at time.Time) (bool, error) {
	l := f.byID(id)
	if l == nil {
		return false, gorm.ErrRecordNotFound
	}
	if l.Status != model.DemoLinkStatusActive || l.ViewsCount >= l.MaxViews {
		return false, nil
	}
	l.ViewsCount++
	l.AccessedAt = &at
	return true, nil
}

func (f *fakeLinkStore) MarkUsedIfExhausted(id uint) error {
	l := f.byID(id)
	if l != nil && l.Status == model.DemoLinkStatusActive && l.ViewsCount >= l.MaxViews {
		l.Status = model.DemoLinkStatusUsed
	}
	return nil
}

func (f *fakeLinkStore) MarkExpired(id uint) error {
	if l := f.byID(id); l != nil {
		l.Status = model.DemoLinkStatusExpired
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeLinkStore) ExpireActiveForLead(leadID uint) error {
	for _, l := range f.links {
		if l.LeadID == leadID && l.Status == model.DemoLinkStatusActive {
			l.Status = model.DemoLinkStatusExpired
		}
	}
	return nil
}

func (f *fakeLinkStore) SweepExpired(cutoff time.Time) (int64, error) {
	var n int64
	for _, l := range f.links {
		if l.Status == model.DemoLinkStatusActive && l.CreatedAt.Before(cutoff) {
			l.Status = model.DemoLinkStatusExpired
			n++
		}
	}
	return n, nil
}

func (f *fakeLinkStore) byID(id uint) *model.DemoLink {
	for _, l := range f.links {
		if l.ID == id {
			return l
		}
	}
	return nil
}

type fakeLinkLeadStore struct {
	leads map[uint]*model.Lead
}

func (f *fakeLinkLeadStore) FindByEmail(email string) (*model.Lead, error) {
	for _, lead := range f.leads {
		if lead.Email == email {
			return lead, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLinkLeadStore) FindByID(id uint) (*model.Lead, error) {
	if lead, ok := f.leads[id]; ok {
		return lead, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLinkLeadStore) IncrementViewCount(id uint) error {
	if lead, ok := f.leads[id]; ok {
		lead.ViewCount++
		return nil
	}
	return gorm.ErrRecordNotFound
}

type fakeFollowupReader struct {
	latest *model.Followup
}

func (f *fakeFollowupReader) LatestFollowupForLead(leadID uint) (*model.Followup, error) {
	if f.latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.latest, nil
}

type fakeLinkMailer struct {
	sent []string // demo URLs
}

func (f *fakeLinkMailer) SendDemoLink(toEmail, name, demoURL string, expiryMinutes, maxViews int, videoPassword string) error {
	f.sent = append(f.sent, demoURL)
	return nil
}

type fakeStreamStorage struct{}

func (fakeStreamStorage) PresignedStreamURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("http://minio.local/%s?sig=abc", objectName), nil
}

// ==================== harness ====================

type linkFixture struct {
	svc       *DemoLinkService
	store     *fakeLinkStore
	leads     *fakeLinkLeadStore
	followups *fakeFollowupReader
	mail      *fakeLinkMailer
	clock     *time.Time
}

func newLinkFixture(t *testing.T) *linkFixture {
	t.Helper()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := &now
	tick := func() time.Time { return *clock }

	store := &fakeLinkStore{clock: tick}
	leads := &fakeLinkLeadStore{leads: map[uint]*model.Lead{
		1: {ID: 1, Email: "lead@example.com", CompanyName: "Acme", Status: model.LeadStatusVerified},
		2: {ID: 2, Email: "pending@example.com", CompanyName: "Beta", Status: model.LeadStatusPending},
	}}
	followups := &fakeFollowupReader{}
	mail := &fakeLinkMailer{}

	svc := NewDemoLinkService(store, leads, followups, mail, fakeStreamStorage{}, DemoLinkConfig{
		TTL:           time.Hour,
		MaxViews:      2,
		LeadViewCap:   2,
		PublicBaseURL: "https://demo.themestore.example",
		VideoObject:   "demo/product-walkthrough.mp4",
		StreamExpiry:  15 * time.Minute,
	})
	svc.now = tick

	return &linkFixture{svc: svc, store: store, leads: leads, followups: followups, mail: mail, clock: clock}
}

func (fx *linkFixture) advance(d time.Duration) {
	*fx.clock = fx.clock.Add(d)
}

// ==================== tests ====================

func TestIssueMintsLink(t *testing.T) {
	fx := newLinkFixture(t)

	result, err := fx.svc.Issue("lead@example.com", 0)
	require.NoError(t, err)

	assert.False(t, result.Reissued)
	assert.GreaterOrEqual(t, len(result.Link.Token), 64)
	assert.Equal(t, model.DemoLinkStatusActive, result.Link.Status)
	assert.Equal(t, 2, result.Link.MaxViews)
	assert.Equal(t, fx.clock.Add(time.Hour), result.Link.ExpiresAt)
	require.Len(t, fx.mail.sent, 1)
	assert.Contains(t, fx.mail.sent[0], result.Link.Token)
}

func TestIssueRequiresVerifiedLead(t *testing.T) {
	fx := newLinkFixture(t)

	_, err := fx.svc.Issue("pending@example.com", 0)
	assert.ErrorIs(t, err, ErrNotVerified)
}

func TestIssueUnknownLead(t *testing.T) {
	fx := newLinkFixture(t)

	_, err := fx.svc.Issue("nobody@example.com", 0)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = fx.svc.Issue("", 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIssueIsIdempotentWhileLinkLive(t *testing.T) {
	fx := newLinkFixture(t)

	first, err := fx.svc.Issue("lead@example.com", 0)
	require.NoError(t, err)

	fx.advance(10 * time.Minute)
	second, err := fx.svc.Issue("lead@example.com", 0)
	require.NoError(t, err)

	assert.Equal(t, first.Link.ID, second.Link.ID)
	assert.False(t, second.Reissued)
	assert.Len(t, fx.mail.sent, 1) // no second email for a reused link
}

func TestIssueReissuesAfterReschedule(t *testing.T) {
	fx := newLinkFixture(t)

	first, err := fx.svc.Issue("lead@example.com", 0)
	require.NoError(t, err)

	fx.followups.latest = &model.Followup{LeadID: 1, Status: model.FollowupStatusRescheduled}

	fx.advance(10 * time.Minute)
	second, err := fx.svc.Issue("lead@example.com", 0)
	require.NoError(t, err)

	assert.True(t, second.Reissued)
	assert.NotEqual(t, first.Link.ID, second.Link.ID)
	assert.Equal(t, model.DemoLinkStatusExpired, first.Link.Status)
}

func TestIssueNonRescheduledFollowupDoesNotReissue(t *testing.T) {
	fx := newLinkFixture(t)

	first, err := fx.svc.Issue("lead@example.com", 0)
	require.NoError(t, err)

	fx.followups.latest = &model.Followup{LeadID: 1, Status: model.FollowupStatusCompleted}

	second, err := fx.svc.Issue("lead@example.com", 0)
	require.NoError(t, err)
	assert.Equal(t, first.Link.ID, second.Link.ID)
}

func TestIssueMintsFreshAfterTTL(t *testing.T) {
	fx := newLinkFixture(t)

	first, err := fx.svc.Issue("lead@example.com", 0)
	require.NoError(t, err)

	fx.advance(time.Hour + time.Minute)
	second, err := fx.svc.Issue("lead@example.com", 0)
	require.NoError(t, err)

	assert.NotEqual(t, first.Link.ID, second.Link.ID)
	assert.Equal(t, model.DemoLinkStatusExpired, first.Link.Status)
}

func TestIssueRespectsLeadViewCap(t *testing.T) {
	fx := newLinkFixture(t)
	fx.leads.leads[1].ViewCount = 2

	_, err := fx.svc.Issue("lead@example.com", 0)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestValidateUnknownToken(t *testing.T) {
	fx := newLinkFixture(t)

	_, err := fx.svc.Validate("no-such-token")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidateExpiredByClock(t *testing.T) {
	fx := newLinkFixture(t)

	result, err := fx.svc.Issue("lead@example.com", 0)
	require.NoError(t, err)

	fx.advance(time.Hour + time.Second)

	_, err = fx.svc.Validate(result.Link.Token)
	assert.ErrorIs(t, err, ErrExpired)
	assert.Equal(t, model.DemoLinkStatusExpired, result.Link.Status)
}

func TestLookupFallsBackToHashScan(t *testing.T) {
	fx := newLinkFixture(t)

	result, err := fx.svc.Issue("lead@example.com", 0)
	require.NoError(t, err)

	// simulate a scrubbed plaintext column
	raw := result.Link.Token
	result.Link.Token = ""

	link, err := fx.svc.Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, result.Link.ID, link.ID)
}

func TestRecordViewConsumesBudget(t *testing.T) {
	fx := newLinkFixture(t)

	result, err := fx.svc.Issue("lead@example.com", 0)
	require.NoError(t, err)

	link, err := fx.svc.RecordView(result.Link.Token)
	require.NoError(t, err)
	assert.Equal(t, 1, link.ViewsCount)
	require.NotNil(t, link.AccessedAt)
	assert.Equal(t, 1, fx.leads.leads[1].ViewCount)

	link, err = fx.svc.RecordView(result.Link.Token)
	require.NoError(t, err)
	assert.Equal(t, 2, link.ViewsCount)
	assert.Equal(t, model.DemoLinkStatusUsed, link.Status)

	_, err = fx.svc.RecordView(result.Link.Token)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestResolveIgnoresAccessGates(t *testing.T) {
	fx := newLinkFixture(t)

	result, err := fx.svc.Issue("lead@example.com", 0)
	require.NoError(t, err)

	fx.advance(2 * time.Hour) // well past the TTL

	link, err := fx.svc.Resolve(result.Link.Token)
	require.NoError(t, err)
	assert.Equal(t, result.Link.ID, link.ID)
}

func TestStreamDoesNotConsumeView(t *testing.T) {
	fx := newLinkFixture(t)

	result, err := fx.svc.Issue("lead@example.com", 0)
	require.NoError(t, err)

	streamURL, expiresAt, err := fx.svc.Stream(context.Background(), result.Link.Token)
	require.NoError(t, err)
	assert.Contains(t, streamURL, "demo/product-walkthrough.mp4")
	assert.Equal(t, fx.clock.Add(15*time.Minute), expiresAt)
	assert.Equal(t, 0, result.Link.ViewsCount)
}

func TestSweepExpiredIsIdempotent(t *testing.T) {
	fx := newLinkFixture(t)

	_, err := fx.svc.Issue("lead@example.com", 0)
	require.NoError(t, err)

	fx.advance(time.Hour + time.Minute)

	n, err := fx.svc.SweepExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = fx.svc.SweepExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestWatchURLEscapesToken(t *testing.T) {
	fx := newLinkFixture(t)

	got := fx.svc.WatchURL("abc+def")
	assert.Equal(t, "https://demo.themestore.example/watch?token=abc%2Bdef", got)
}
