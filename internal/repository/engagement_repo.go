package repository

import (
	"github.com/themestore/demoaccess/internal/model"
	"gorm.io/gorm"
)

// EngagementRepository handles database operations for video activity,
// client queries and sales follow-ups
type EngagementRepository struct {
	db *gorm.DB
}

func NewEngagementRepository(db *gorm.DB) *EngagementRepository {
	return &EngagementRepository{db: db}
}

// ==================== Video activity ====================

// FindActivityByLink returns the activity row for a demo link, if any.
// There is at most one row per link; events update it in place.
func (r *EngagementRepository) FindActivityByLink(demoLinkID uint) (*model.VideoActivity, error) {
	var activity model.VideoActivity
	err := r.db.Where("demo_link_id = ?", demoLinkID).First(&activity).Error
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

// CreateActivity inserts a new activity row
func (r *EngagementRepository) CreateActivity(activity *model.VideoActivity) error {
	return r.db.Create(activity).Error
}

// SaveActivity persists changes to an activity row
func (r *EngagementRepository) SaveActivity(activity *model.VideoActivity) error {
	return r.db.Save(activity).Error
}

// ListActivityForLead returns all activity rows for a lead, newest first
func (r *EngagementRepository) ListActivityForLead(leadID uint) ([]model.VideoActivity, error) {
	var activity []model.VideoActivity
	err := r.db.Where("lead_id = ?", leadID).
		Order("created_at DESC").
		Find(&activity).Error
	return activity, err
}

// BestActivityForLead returns the lead's furthest-progressed activity row
func (r *EngagementRepository) BestActivityForLead(leadID uint) (*model.VideoActivity, error) {
	var activity model.VideoActivity
	err := r.db.Where("lead_id = ?", leadID).
		Order("progress_percentage DESC").
		First(&activity).Error
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

// ==================== Queries ====================

// CreateQuery inserts a client question
func (r *EngagementRepository) CreateQuery(query *model.Query) error {
	return r.db.Create(query).Error
}

// FindQueryByID returns one query with its lead preloaded
func (r *EngagementRepository) FindQueryByID(id uint) (*model.Query, error) {
	var query model.Query
	err := r.db.Preload("Lead").First(&query, id).Error
	if err != nil {
		return nil, err
	}
	return &query, nil
}

// FindQueriesByIDs returns the queries matching the given ids, leads preloaded
func (r *EngagementRepository) FindQueriesByIDs(ids []uint) ([]model.Query, error) {
	var queries []model.Query
	err := r.db.Preload("Lead").Where("id IN ?", ids).Find(&queries).Error
	return queries, err
}

// SaveQuery persists changes to a query
func (r *EngagementRepository) SaveQuery(query *model.Query) error {
	return r.db.Save(query).Error
}

// ListQueriesForLead returns all queries for a lead, newest first
func (r *EngagementRepository) ListQueriesForLead(leadID uint) ([]model.Query, error) {
	var queries []model.Query
	err := r.db.Where("lead_id = ?", leadID).
		Order("created_at DESC").
		Find(&queries).Error
	return queries, err
}

// ListPendingQueries returns every unanswered query, oldest first
func (r *EngagementRepository) ListPendingQueries() ([]model.Query, error) {
	var queries []model.Query
	err := r.db.Preload("Lead").
		Where("status = ?", model.QueryStatusPending).
		Order("created_at ASC").
		Find(&queries).Error
	return queries, err
}

// ==================== Follow-ups ====================

// CreateFollowup inserts a follow-up entry
func (r *EngagementRepository) CreateFollowup(f *model.Followup) error {
	return r.db.Create(f).Error
}

// FindFollowupByID returns one follow-up
func (r *EngagementRepository) FindFollowupByID(id uint) (*model.Followup, error) {
	var f model.Followup
	err := r.db.First(&f, id).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// SaveFollowup persists changes to a follow-up
func (r *EngagementRepository) SaveFollowup(f *model.Followup) error {
	return r.db.Save(f).Error
}

// LatestFollowupForLead returns the most recent follow-up for a lead.
// Its status drives the reissue decision when the lead asks for a new link.
func (r *EngagementRepository) LatestFollowupForLead(leadID uint) (*model.Followup, error) {
	var f model.Followup
	err := r.db.Where("lead_id = ?", leadID).
		Order("created_at DESC").
		First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFollowupsForLead returns all follow-ups for a lead, newest first
func (r *EngagementRepository) ListFollowupsForLead(leadID uint) ([]model.Followup, error) {
	var followups []model.Followup
	err := r.db.Where("lead_id = ?", leadID).
		Order("created_at DESC").
		Find(&followups).Error
	return followups, err
}
