package repository

import (
	"time"

	"github.com/themestore/demoaccess/internal/model"
	"gorm.io/gorm"
)

// DemoLinkRepository handles database operations for demo access links
type DemoLinkRepository struct {
	db *gorm.DB
}

func NewDemoLinkRepository(db *gorm.DB) *DemoLinkRepository {
	return &DemoLinkRepository{db: db}
}

// Create inserts a new link and reloads it so CreatedAt reflects what the
// database actually stored. Expiry math runs off that value, not off the
// in-process clock at insert time.
func (r *DemoLinkRepository) Create(link *model.DemoLink) error {
	if err := r.db.Create(link).Error; err != nil {
		return err
	}
	return r.db.First(link, link.ID).Error
}

// SetExpiresAt rewrites the advisory expiry column
func (r *DemoLinkRepository) SetExpiresAt(id uint, expiresAt time.Time) error {
	return r.db.Model(&model.DemoLink{}).
		Where("id = ?", id).
		Update("expires_at", expiresAt).Error
}

// FindByID returns the link with the given id
func (r *DemoLinkRepository) FindByID(id uint) (*model.DemoLink, error) {
	var link model.DemoLink
	err := r.db.First(&link, id).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// FindByToken returns the link matching the exact token value
func (r *DemoLinkRepository) FindByToken(token string) (*model.DemoLink, error) {
	var link model.DemoLink
	err := r.db.Where("token = ?", token).First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// FindActiveForLead returns the newest active link for a lead
func (r *DemoLinkRepository) FindActiveForLead(leadID uint) (*model.DemoLink, error) {
	var link model.DemoLink
	err := r.db.Where("lead_id = ? AND status = ?", leadID, model.DemoLinkStatusActive).
		Order("created_at DESC").
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// ListRecentActive returns active links newest-first, capped at limit.
// Feeds the bcrypt fallback scan when an exact token match misses.
func (r *DemoLinkRepository) ListRecentActive(limit int) ([]model.DemoLink, error) {
	var links []model.DemoLink
	err := r.db.Where("status = ?", model.DemoLinkStatusActive).
		Order("created_at DESC").
		Limit(limit).
		Find(&links).Error
	return links, err
}

// IncrementViews consumes one view if budget remains. The condition rides
// in the UPDATE itself so two concurrent viewers cannot both take the last
// slot. Returns true when a view was consumed.
func (r *DemoLinkRepository) IncrementViews(id uint, at time.Time) (bool, error) {
	res := r.db.Model(&model.DemoLink{}).
		Where("id = ? AND views_count < max_views AND status = ?", id, model.DemoLinkStatusActive).
		Updates(map[string]interface{}{
			"views_count": gorm.Expr("views_count + 1"),
			"accessed_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkUsedIfExhausted flips an active link to used once its budget is spent
func (r *DemoLinkRepository) MarkUsedIfExhausted(id uint) error {
	return r.db.Model(&model.DemoLink{}).
		Where("id = ? AND views_count >= max_views AND status = ?", id, model.DemoLinkStatusActive).
		Update("status", model.DemoLinkStatusUsed).Error
}

// MarkExpired transitions one link to expired
func (r *DemoLinkRepository) MarkExpired(id uint) error {
	return r.db.Model(&model.DemoLink{}).
		Where("id = ?", id).
		Update("status", model.DemoLinkStatusExpired).Error
}

// ExpireActiveForLead force-expires every active link for a lead (reissue
// after a rescheduled follow-up)
func (r *DemoLinkRepository) ExpireActiveForLead(leadID uint) error {
	return r.db.Model(&model.DemoLink{}).
		Where("lead_id = ? AND status = ?", leadID, model.DemoLinkStatusActive).
		Update("status", model.DemoLinkStatusExpired).Error
}

// SweepExpired transitions every active link created before the cutoff to
// expired and reports how many rows moved. Safe to run repeatedly.
func (r *DemoLinkRepository) SweepExpired(cutoff time.Time) (int64, error) {
	res := r.db.Model(&model.DemoLink{}).
		Where("status = ? AND created_at < ?", model.DemoLinkStatusActive, cutoff).
		Update("status", model.DemoLinkStatusExpired)
	return res.RowsAffected, res.Error
}

// ListForLead returns every link for a lead, newest first
func (r *DemoLinkRepository) ListForLead(leadID uint) ([]model.DemoLink, error) {
	var links []model.DemoLink
	err := r.db.Where("lead_id = ?", leadID).
		Order("created_at DESC").
		Find(&links).Error
	return links, err
}
