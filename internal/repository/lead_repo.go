package repository

import (
	"time"

	"github.com/themestore/demoaccess/internal/model"
	"gorm.io/gorm"
)

// LeadRepository handles database operations for leads
type LeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// Create inserts a new lead
func (r *LeadRepository) Create(lead *model.Lead) error {
	return r.db.Create(lead).Error
}

// FindByEmail returns the lead with the given email
func (r *LeadRepository) FindByEmail(email string) (*model.Lead, error) {
	var lead model.Lead
	err := r.db.Where("email = ?", email).First(&lead).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// FindByID returns the lead with the given id
func (r *LeadRepository) FindByID(id uint) (*model.Lead, error) {
	var lead model.Lead
	err := r.db.First(&lead, id).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// Update persists changes to a lead
func (r *LeadRepository) Update(lead *model.Lead) error {
	return r.db.Save(lead).Error
}

// UpdateStatus transitions a lead to the given status
func (r *LeadRepository) UpdateStatus(id uint, status model.LeadStatus) error {
	return r.db.Model(&model.Lead{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// SetInterest records the prospect's interest signal
func (r *LeadRepository) SetInterest(id uint, interest model.LeadInterest) error {
	return r.db.Model(&model.Lead{}).
		Where("id = ?", id).
		Update("interest", interest).Error
}

// IncrementViewCount bumps the lead's cumulative view counter atomically
func (r *LeadRepository) IncrementViewCount(id uint) error {
	return r.db.Model(&model.Lead{}).
		Where("id = ?", id).
		Update("view_count", gorm.Expr("view_count + 1")).Error
}

// List returns leads newest-first, optionally bounded by creation date
func (r *LeadRepository) List(from, to *time.Time) ([]model.Lead, error) {
	var leads []model.Lead
	q := r.db.Order("created_at DESC")
	if from != nil {
		q = q.Where("created_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("created_at <= ?", *to)
	}
	err := q.Find(&leads).Error
	return leads, err
}

// FindEnquiryByEmail returns the most recent sales enquiry for an email,
// used to auto-fill the intake form
func (r *LeadRepository) FindEnquiryByEmail(email string) (*model.Enquiry, error) {
	var enquiry model.Enquiry
	err := r.db.Where("email = ?", email).
		Order("id DESC").
		First(&enquiry).Error
	if err != nil {
		return nil, err
	}
	return &enquiry, nil
}
