package model

import "time"

// AdminRole separates full-access admins from sales users
type AdminRole string

const (
	AdminRoleAdmin AdminRole = "Admin"
	AdminRoleSales AdminRole = "Sales"
)

// AdminUser is a sales-team member who triages leads through the dashboard
type AdminUser struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"size:64;not null;uniqueIndex"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Password  string    `json:"-" gorm:"size:255;not null"` // bcrypt
	Role      AdminRole `json:"role" gorm:"size:16;not null;default:'Sales'"`
	Active    bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserLogAction is a dashboard session event
type UserLogAction string

const (
	UserLogActionLogin  UserLogAction = "login"
	UserLogActionLogout UserLogAction = "logout"
)

// UserLog is one login/logout row in the admin activity log
type UserLog struct {
	ID       uint          `json:"id" gorm:"primaryKey"`
	UserID   uint          `json:"user_id" gorm:"not null;index"`
	Username string        `json:"username" gorm:"size:64;not null"`
	Name     string        `json:"name" gorm:"size:255"`
	Role     AdminRole     `json:"role" gorm:"size:16"`
	Action   UserLogAction `json:"action" gorm:"size:16;not null"`
	LoggedAt time.Time     `json:"logged_at" gorm:"not null;index"`
}
