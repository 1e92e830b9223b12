package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/themestore/demoaccess/internal/model"
	"gorm.io/gorm"
)

// engagementStore is the slice of the engagement repository the service needs
type engagementStore interface {
	FindActivityByLink(demoLinkID uint) (*model.VideoActivity, error)
	CreateActivity(activity *model.VideoActivity) error
	SaveActivity(activity *model.VideoActivity) error
	CreateQuery(query *model.Query) error
	FindQueryByID(id uint) (*model.Query, error)
	FindQueriesByIDs(ids []uint) ([]model.Query, error)
	ListPendingQueries() ([]model.Query, error)
	SaveQuery(query *model.Query) error
	CreateFollowup(f *model.Followup) error
	FindFollowupByID(id uint) (*model.Followup, error)
	SaveFollowup(f *model.Followup) error
}

// tokenResolver maps a raw token to its link without the access gates, so
// engagement still attributes correctly after a link lapses
type tokenResolver interface {
	Resolve(raw string) (*model.DemoLink, error)
}

// engagementLeadStore is the slice of the lead repository the service needs
type engagementLeadStore interface {
	FindByID(id uint) (*model.Lead, error)
	SetInterest(id uint, interest model.LeadInterest) error
}

// engagementMailer sends query responses and abandoned-demo alerts
type engagementMailer interface {
	SendQueryResponse(toEmail, name, queryText, response string) error
	SendAbandonedAlert(toEmail, companyName, leadEmail string, progress float64) error
}

// EngagementService records watch activity, client questions, interest
// signals and sales follow-ups
type EngagementService struct {
	store        engagementStore
	links        tokenResolver
	leads        engagementLeadStore
	mail         engagementMailer
	adminAlertTo string

	now func() time.Time
}

// NewEngagementService creates the engagement service
func NewEngagementService(store engagementStore, links tokenResolver, leads engagementLeadStore, mail engagementMailer, adminAlertTo string) *EngagementService {
	return &EngagementService{
		store:        store,
		links:        links,
		leads:        leads,
		mail:         mail,
		adminAlertTo: adminAlertTo,
		now:          time.Now,
	}
}

// TrackActivity folds a player event into the link's single activity row.
// Progress only moves forward and a completed row is never downgraded, so
// out-of-order pings from the player are harmless.
func (s *EngagementService) TrackActivity(req *model.TrackActivityRequest) (*model.VideoActivity, error) {
	if !model.ValidVideoEvent(req.EventType) {
		return nil, fmt.Errorf("unknown event type %q", req.EventType)
	}

	link, err := s.links.Resolve(req.Token)
	if err != nil {
		return nil, err
	}

	now := s.now()

	activity, err := s.store.FindActivityByLink(link.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		activity = &model.VideoActivity{
			DemoLinkID: link.ID,
			LeadID:     link.LeadID,
			Status:     model.VideoEventStarted,
			StartedAt:  &now,
		}
		if err := s.store.CreateActivity(activity); err != nil {
			return nil, fmt.Errorf("failed to create activity: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to look up activity: %w", err)
	}

	completed := activity.Status == model.VideoEventCompleted

	if req.ProgressPercentage > activity.ProgressPercentage {
		activity.ProgressPercentage = req.ProgressPercentage
	}
	if req.DurationWatched > activity.DurationWatched {
		activity.DurationWatched = req.DurationWatched
	}

	switch req.EventType {
	case model.VideoEventStarted:
		if activity.StartedAt == nil {
			activity.StartedAt = &now
		}
	case model.VideoEventProgress:
		activity.LastProgressAt = &now
		if !completed {
			activity.Status = model.VideoEventProgress
		}
	case model.VideoEventCompleted:
		activity.Status = model.VideoEventCompleted
		activity.CompletedAt = &now
		activity.ProgressPercentage = 100
	case model.VideoEventAbandoned:
		activity.LastProgressAt = &now
		if !completed {
			activity.Status = model.VideoEventAbandoned
		}
	}

	if err := s.store.SaveActivity(activity); err != nil {
		return nil, fmt.Errorf("failed to save activity: %w", err)
	}

	if req.EventType == model.VideoEventAbandoned && !completed {
		s.alertAbandoned(link.LeadID, activity.ProgressPercentage)
	}

	return activity, nil
}

// alertAbandoned emails the sales team when a prospect walks away mid-demo
func (s *EngagementService) alertAbandoned(leadID uint, progress float64) {
	if s.adminAlertTo == "" {
		return
	}
	lead, err := s.leads.FindByID(leadID)
	if err != nil {
		log.Printf("⚠️  Abandoned alert: failed to load lead %d: %v", leadID, err)
		return
	}
	if err := s.mail.SendAbandonedAlert(s.adminAlertTo, lead.CompanyName, lead.Email, progress); err != nil {
		log.Printf("⚠️  Abandoned alert email failed for lead %d: %v", leadID, err)
	}
}

// SaveQuery stores a client question from the watch page
func (s *EngagementService) SaveQuery(req *model.SaveQueryRequest) (*model.Query, error) {
	link, err := s.links.Resolve(req.Token)
	if err != nil {
		return nil, err
	}

	query := &model.Query{
		LeadID:     link.LeadID,
		DemoLinkID: link.ID,
		QueryText:  req.Query,
		Status:     model.QueryStatusPending,
	}
	if err := s.store.CreateQuery(query); err != nil {
		return nil, fmt.Errorf("failed to save query: %w", err)
	}

	log.Printf("❓ Query %d received from lead %d", query.ID, link.LeadID)
	return query, nil
}

// SaveInterest records the prospect's interest signal on the lead
func (s *EngagementService) SaveInterest(req *model.SaveInterestRequest) (*model.Lead, error) {
	link, err := s.links.Resolve(req.Token)
	if err != nil {
		return nil, err
	}

	if err := s.leads.SetInterest(link.LeadID, req.Interest); err != nil {
		return nil, fmt.Errorf("failed to save interest: %w", err)
	}

	lead, err := s.leads.FindByID(link.LeadID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload lead: %w", err)
	}

	log.Printf("⭐ Lead %d marked %s", lead.ID, req.Interest)
	return lead, nil
}

// PendingQueries returns every unanswered question, oldest first, for the
// dashboard triage view
func (s *EngagementService) PendingQueries() ([]model.Query, error) {
	queries, err := s.store.ListPendingQueries()
	if err != nil {
		return nil, fmt.Errorf("failed to list pending queries: %w", err)
	}
	return queries, nil
}

// Respond answers one pending query and emails the answer to the lead
func (s *EngagementService) Respond(queryID uint, response string) (*model.Query, error) {
	query, err := s.store.FindQueryByID(queryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up query: %w", err)
	}

	now := s.now()
	query.AdminResponse = response
	query.Status = model.QueryStatusResponded
	query.RespondedAt = &now
	if err := s.store.SaveQuery(query); err != nil {
		return nil, fmt.Errorf("failed to save response: %w", err)
	}

	if err := s.mail.SendQueryResponse(query.Lead.Email, query.Lead.CompanyName, query.QueryText, response); err != nil {
		log.Printf("⚠️  Query response email failed for query %d: %v", query.ID, err)
	}

	return query, nil
}

// BulkRespond answers several queries with the same response. Each query
// still gets its own email. Returns how many queries were updated.
func (s *EngagementService) BulkRespond(queryIDs []uint, response string) (int, error) {
	queries, err := s.store.FindQueriesByIDs(queryIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to look up queries: %w", err)
	}

	now := s.now()
	responded := 0
	for i := range queries {
		q := &queries[i]
		if q.Status == model.QueryStatusResponded {
			continue
		}
		q.AdminResponse = response
		q.Status = model.QueryStatusResponded
		q.RespondedAt = &now
		if err := s.store.SaveQuery(q); err != nil {
			log.Printf("⚠️  Bulk respond: failed to save query %d: %v", q.ID, err)
			continue
		}
		if err := s.mail.SendQueryResponse(q.Lead.Email, q.Lead.CompanyName, q.QueryText, response); err != nil {
			log.Printf("⚠️  Query response email failed for query %d: %v", q.ID, err)
		}
		responded++
	}
	return responded, nil
}

// SaveFollowup creates a follow-up, or updates one when FollowupID is set.
// A follow-up moved to rescheduled is what later authorizes a link reissue.
func (s *EngagementService) SaveFollowup(req *model.SaveFollowupRequest) (*model.Followup, error) {
	if _, err := s.leads.FindByID(req.LeadID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up lead: %w", err)
	}

	now := s.now()

	if req.FollowupID != 0 {
		f, err := s.store.FindFollowupByID(req.FollowupID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to look up follow-up: %w", err)
		}
		if req.FollowupType != "" {
			f.FollowupType = req.FollowupType
		}
		if req.Subject != "" {
			f.Subject = req.Subject
		}
		if req.Notes != "" {
			f.Notes = req.Notes
		}
		if req.FollowupDate != nil {
			f.FollowupDate = req.FollowupDate
		}
		if req.Status != "" {
			f.Status = req.Status
			if req.Status == model.FollowupStatusCompleted && f.CompletedAt == nil {
				f.CompletedAt = &now
			}
		}
		if err := s.store.SaveFollowup(f); err != nil {
			return nil, fmt.Errorf("failed to update follow-up: %w", err)
		}
		return f, nil
	}

	f := &model.Followup{
		LeadID:       req.LeadID,
		FollowupType: req.FollowupType,
		Subject:      req.Subject,
		Notes:        req.Notes,
		FollowupDate: req.FollowupDate,
		Status:       req.Status,
		CreatedBy:    req.CreatedBy,
	}
	if f.FollowupType == "" {
		f.FollowupType = model.FollowupTypeNote
	}
	if f.Status == "" {
		f.Status = model.FollowupStatusPending
	}
	if err := s.store.CreateFollowup(f); err != nil {
		return nil, fmt.Errorf("failed to create follow-up: %w", err)
	}
	return f, nil
}
