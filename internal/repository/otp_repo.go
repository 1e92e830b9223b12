package repository

import (
	"time"

	"github.com/themestore/demoaccess/internal/model"
	"gorm.io/gorm"
)

// OTPRepository handles database operations for verification challenges
type OTPRepository struct {
	db *gorm.DB
}

func NewOTPRepository(db *gorm.DB) *OTPRepository {
	return &OTPRepository{db: db}
}

// Create inserts a new challenge
func (r *OTPRepository) Create(otp *model.OTPChallenge) error {
	return r.db.Create(otp).Error
}

// FindLatest returns the newest challenge for a lead regardless of status
func (r *OTPRepository) FindLatest(leadID uint) (*model.OTPChallenge, error) {
	var otp model.OTPChallenge
	err := r.db.Where("lead_id = ?", leadID).
		Order("created_at DESC").
		First(&otp).Error
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

// ExpireOpen supersedes every open challenge for the lead. Both pending and
// failed count as open. Called before a resend so exactly one challenge is
// live at a time.
func (r *OTPRepository) ExpireOpen(leadID uint) error {
	return r.db.Model(&model.OTPChallenge{}).
		Where("lead_id = ? AND status IN ?", leadID,
			[]model.OTPStatus{model.OTPStatusPending, model.OTPStatusFailed}).
		Update("status", model.OTPStatusExpired).Error
}

// RecordFailure bumps the attempt counter and moves the challenge to the
// given status (failed, or blocked at the cap)
func (r *OTPRepository) RecordFailure(id uint, status model.OTPStatus) error {
	return r.db.Model(&model.OTPChallenge{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts": gorm.Expr("attempts + 1"),
			"status":   status,
		}).Error
}

// MarkVerified closes the challenge successfully
func (r *OTPRepository) MarkVerified(id uint, at time.Time) error {
	return r.db.Model(&model.OTPChallenge{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      model.OTPStatusVerified,
			"verified_at": at,
		}).Error
}

// MarkExpired closes a challenge whose window elapsed
func (r *OTPRepository) MarkExpired(id uint) error {
	return r.db.Model(&model.OTPChallenge{}).
		Where("id = ?", id).
		Update("status", model.OTPStatusExpired).Error
}

// CountRecent counts challenges created for a lead since the given time
// (resend rate limiting)
func (r *OTPRepository) CountRecent(leadID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.OTPChallenge{}).
		Where("lead_id = ? AND created_at > ?", leadID, since).
		Count(&count).Error
	return count, err
}

// ListForLead returns every challenge for a lead, newest first
func (r *OTPRepository) ListForLead(leadID uint) ([]model.OTPChallenge, error) {
	var otps []model.OTPChallenge
	err := r.db.Where("lead_id = ?", leadID).
		Order("created_at DESC").
		Find(&otps).Error
	return otps, err
}
