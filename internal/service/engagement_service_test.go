package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/themestore/demoaccess/internal/model"
	"gorm.io/gorm"
)

// ==================== fakes ====================

type fakeEngagementStore struct {
	activities []*model.VideoActivity
	queries    []*model.Query
	followups  []*model.Followup
	nextID     uint
}

func (f *fakeEngagementStore) FindActivityByLink(demoLinkID uint) (*model.VideoActivity, error) {
	for _, a := range f.activities {
		if a.DemoLinkID == demoLinkID {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEngagementStore) CreateActivity(a *model.VideoActivity) error {
	f.nextID++
	a.ID = f.nextID
	f.activities = append(f.activities, a)
	return nil
}

func (f *fakeEngagementStore) SaveActivity(a *model.VideoActivity) error { return nil }

func (f *fakeEngagementStore) CreateQuery(q *model.Query) error {
	f.nextID++
	q.ID = f.nextID
	f.queries = append(f.queries, q)
	return nil
}

func (f *fakeEngagementStore) FindQueryByID(id uint) (*model.Query, error) {
	for _, q := range f.queries {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEngagementStore) FindQueriesByIDs(ids []uint) ([]model.Query, error) {
	var out []model.Query
	for _, id := range ids {
		if q, err := f.FindQueryByID(id); err == nil {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (f *fakeEngagementStore) ListPendingQueries() ([]model.Query, error) {
	var pending []model.Query
	for _, q := range f.queries {
		if q.Status == model.QueryStatusPending {
			pending = append(pending, *q)
		}
	}
	return pending, nil
}

func (f *fakeEngagementStore) SaveQuery(q *model.Query) error {
	for i, existing := range f.queries {
		if existing.ID == q.ID {
			f.queries[i] = q
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeEngagementStore) CreateFollowup(fu *model.Followup) error {
	f.nextID++
	fu.ID = f.nextID
	f.followups = append(f.followups, fu)
	return nil
}

func (f *fakeEngagementStore) FindFollowupByID(id uint) (*model.Followup, error) {
	for _, fu := range f.followups {
		if fu.ID == id {
			return fu, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEngagementStore) SaveFollowup(fu *model.Followup) error { return nil }

type fakeResolver struct {
	link *model.DemoLink
}

func (f *fakeResolver) Resolve(raw string) (*model.DemoLink, error) {
	if f.link == nil || raw != f.link.Token {
		return nil, ErrNotFound
	}
	return f.link, nil
}

type fakeEngagementLeadStore struct {
	leads map[uint]*model.Lead
}

func (f *fakeEngagementLeadStore) FindByID(id uint) (*model.Lead, error) {
	if lead, ok := f.leads[id]; ok {
		return lead, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEngagementLeadStore) SetInterest(id uint, interest model.LeadInterest) error {
	if lead, ok := f.leads[id]; ok {
		lead.Interest = interest
		return nil
	}
	return gorm.ErrRecordNotFound
}

type fakeEngagementMailer struct {
	responses []string // emails query responses went to
	alerts    []string // companies flagged as abandoned
}

func (f *fakeEngagementMailer) SendQueryResponse(toEmail, name, queryText, response string) error {
	f.responses = append(f.responses, toEmail)
	return nil
}

func (f *fakeEngagementMailer) SendAbandonedAlert(toEmail, companyName, leadEmail string, progress float64) error {
	f.alerts = append(f.alerts, companyName)
	return nil
}

// ==================== harness ====================

type engagementFixture struct {
	svc   *EngagementService
	store *fakeEngagementStore
	leads *fakeEngagementLeadStore
	mail  *fakeEngagementMailer
	clock *time.Time
}

func newEngagementFixture(t *testing.T) *engagementFixture {
	t.Helper()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := &now

	store := &fakeEngagementStore{}
	resolver := &fakeResolver{link: &model.DemoLink{ID: 7, LeadID: 1, Token: "tok"}}
	leads := &fakeEngagementLeadStore{leads: map[uint]*model.Lead{
		1: {ID: 1, Email: "lead@example.com", CompanyName: "Acme", Interest: model.LeadInterestNone},
	}}
	mail := &fakeEngagementMailer{}

	svc := NewEngagementService(store, resolver, leads, mail, "sales@themestore.example")
	svc.now = func() time.Time { return *clock }

	return &engagementFixture{svc: svc, store: store, leads: leads, mail: mail, clock: clock}
}

// ==================== tests ====================

func TestTrackActivityCreatesRow(t *testing.T) {
	fx := newEngagementFixture(t)

	activity, err := fx.svc.TrackActivity(&model.TrackActivityRequest{
		Token: "tok", EventType: model.VideoEventStarted,
	})
	require.NoError(t, err)

	assert.Equal(t, uint(7), activity.DemoLinkID)
	assert.Equal(t, uint(1), activity.LeadID)
	assert.Equal(t, model.VideoEventStarted, activity.Status)
	require.NotNil(t, activity.StartedAt)
}

func TestTrackActivityProgressIsMonotonic(t *testing.T) {
	fx := newEngagementFixture(t)

	_, err := fx.svc.TrackActivity(&model.TrackActivityRequest{
		Token: "tok", EventType: model.VideoEventProgress, ProgressPercentage: 40, DurationWatched: 60,
	})
	require.NoError(t, err)

	// an out-of-order ping with lower numbers cannot move things backwards
	activity, err := fx.svc.TrackActivity(&model.TrackActivityRequest{
		Token: "tok", EventType: model.VideoEventProgress, ProgressPercentage: 25, DurationWatched: 30,
	})
	require.NoError(t, err)

	assert.Equal(t, float64(40), activity.ProgressPercentage)
	assert.Equal(t, 60, activity.DurationWatched)
}

func TestTrackActivityCompletedSticks(t *testing.T) {
	fx := newEngagementFixture(t)

	_, err := fx.svc.TrackActivity(&model.TrackActivityRequest{
		Token: "tok", EventType: model.VideoEventCompleted, ProgressPercentage: 97,
	})
	require.NoError(t, err)

	activity, err := fx.svc.TrackActivity(&model.TrackActivityRequest{
		Token: "tok", EventType: model.VideoEventAbandoned, ProgressPercentage: 50,
	})
	require.NoError(t, err)

	assert.Equal(t, model.VideoEventCompleted, activity.Status)
	assert.Equal(t, float64(100), activity.ProgressPercentage)
	require.NotNil(t, activity.CompletedAt)
	assert.Empty(t, fx.mail.alerts) // no abandon alert once completed
}

func TestTrackActivityAbandonedAlertsSales(t *testing.T) {
	fx := newEngagementFixture(t)

	activity, err := fx.svc.TrackActivity(&model.TrackActivityRequest{
		Token: "tok", EventType: model.VideoEventAbandoned, ProgressPercentage: 35,
	})
	require.NoError(t, err)

	assert.Equal(t, model.VideoEventAbandoned, activity.Status)
	require.Len(t, fx.mail.alerts, 1)
	assert.Equal(t, "Acme", fx.mail.alerts[0])
}

func TestTrackActivityRejectsUnknownEvent(t *testing.T) {
	fx := newEngagementFixture(t)

	_, err := fx.svc.TrackActivity(&model.TrackActivityRequest{
		Token: "tok", EventType: "rewound",
	})
	assert.Error(t, err)
}

func TestSaveQuery(t *testing.T) {
	fx := newEngagementFixture(t)

	query, err := fx.svc.SaveQuery(&model.SaveQueryRequest{Token: "tok", Query: "Does it support SSO?"})
	require.NoError(t, err)

	assert.Equal(t, uint(1), query.LeadID)
	assert.Equal(t, uint(7), query.DemoLinkID)
	assert.Equal(t, model.QueryStatusPending, query.Status)
}

func TestSaveInterest(t *testing.T) {
	fx := newEngagementFixture(t)

	lead, err := fx.svc.SaveInterest(&model.SaveInterestRequest{Token: "tok", Interest: model.LeadInterestInterested})
	require.NoError(t, err)

	assert.Equal(t, model.LeadInterestInterested, lead.Interest)
}

func TestRespondEmailsTheLead(t *testing.T) {
	fx := newEngagementFixture(t)

	saved, err := fx.svc.SaveQuery(&model.SaveQueryRequest{Token: "tok", Query: "Pricing?"})
	require.NoError(t, err)
	saved.Lead = *fx.leads.leads[1]

	query, err := fx.svc.Respond(saved.ID, "See attached plan.")
	require.NoError(t, err)

	assert.Equal(t, model.QueryStatusResponded, query.Status)
	assert.Equal(t, "See attached plan.", query.AdminResponse)
	require.NotNil(t, query.RespondedAt)
	require.Len(t, fx.mail.responses, 1)
	assert.Equal(t, "lead@example.com", fx.mail.responses[0])
}

func TestRespondUnknownQuery(t *testing.T) {
	fx := newEngagementFixture(t)

	_, err := fx.svc.Respond(99, "hello")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBulkRespondSkipsAnswered(t *testing.T) {
	fx := newEngagementFixture(t)

	q1, err := fx.svc.SaveQuery(&model.SaveQueryRequest{Token: "tok", Query: "A?"})
	require.NoError(t, err)
	q1.Lead = *fx.leads.leads[1]
	q2, err := fx.svc.SaveQuery(&model.SaveQueryRequest{Token: "tok", Query: "B?"})
	require.NoError(t, err)
	q2.Lead = *fx.leads.leads[1]

	_, err = fx.svc.Respond(q1.ID, "answered already")
	require.NoError(t, err)

	n, err := fx.svc.BulkRespond([]uint{q1.ID, q2.ID}, "same answer for everyone")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPendingQueriesOnlyListsUnanswered(t *testing.T) {
	fx := newEngagementFixture(t)

	q1, err := fx.svc.SaveQuery(&model.SaveQueryRequest{Token: "tok", Query: "A?"})
	require.NoError(t, err)
	q1.Lead = *fx.leads.leads[1]
	q2, err := fx.svc.SaveQuery(&model.SaveQueryRequest{Token: "tok", Query: "B?"})
	require.NoError(t, err)

	_, err = fx.svc.Respond(q1.ID, "answered")
	require.NoError(t, err)

	pending, err := fx.svc.PendingQueries()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, q2.ID, pending[0].ID)
}

func TestSaveFollowupCreateAndUpdate(t *testing.T) {
	fx := newEngagementFixture(t)

	created, err := fx.svc.SaveFollowup(&model.SaveFollowupRequest{
		LeadID: 1, Subject: "Intro call", CreatedBy: "sales1",
	})
	require.NoError(t, err)
	assert.Equal(t, model.FollowupTypeNote, created.FollowupType)
	assert.Equal(t, model.FollowupStatusPending, created.Status)

	updated, err := fx.svc.SaveFollowup(&model.SaveFollowupRequest{
		LeadID: 1, FollowupID: created.ID, Status: model.FollowupStatusCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, model.FollowupStatusCompleted, updated.Status)
	require.NotNil(t, updated.CompletedAt)
}

func TestSaveFollowupUnknownLead(t *testing.T) {
	fx := newEngagementFixture(t)

	_, err := fx.svc.SaveFollowup(&model.SaveFollowupRequest{LeadID: 42})
	assert.ErrorIs(t, err, ErrNotFound)
}
