package repository

import (
	"github.com/themestore/demoaccess/internal/model"
	"gorm.io/gorm"
)

// AdminRepository handles database operations for dashboard users and their
// activity log
type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// FindUserByUsername returns an active dashboard user by username
func (r *AdminRepository) FindUserByUsername(username string) (*model.AdminUser, error) {
	var user model.AdminUser
	err := r.db.Where("username = ? AND active = ?", username, true).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindUserByID returns a dashboard user by id
func (r *AdminRepository) FindUserByID(id uint) (*model.AdminUser, error) {
	var user model.AdminUser
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a dashboard user (seeding)
func (r *AdminRepository) CreateUser(user *model.AdminUser) error {
	return r.db.Create(user).Error
}

// CreateUserLog appends a login/logout row to the activity log
func (r *AdminRepository) CreateUserLog(entry *model.UserLog) error {
	return r.db.Create(entry).Error
}

// ListUserLogs returns one LIMIT/OFFSET page of the activity log plus the
// total row count for the pager
func (r *AdminRepository) ListUserLogs(page, perPage int) ([]model.UserLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	var total int64
	if err := r.db.Model(&model.UserLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []model.UserLog
	err := r.db.Order("logged_at DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&logs).Error
	return logs, total, err
}
