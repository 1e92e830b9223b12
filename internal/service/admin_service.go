package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/themestore/demoaccess/internal/model"
	"github.com/themestore/demoaccess/pkg/auth"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned for a bad username/password pair
var ErrInvalidCredentials = errors.New("invalid username or password")

// adminStore is the slice of the admin repository the service needs
type adminStore interface {
	FindUserByUsername(username string) (*model.AdminUser, error)
	FindUserByID(id uint) (*model.AdminUser, error)
	CreateUserLog(entry *model.UserLog) error
	ListUserLogs(page, perPage int) ([]model.UserLog, int64, error)
}

// dashboardLeadStore feeds the lead list and detail views
type dashboardLeadStore interface {
	List(from, to *time.Time) ([]model.Lead, error)
	FindByID(id uint) (*model.Lead, error)
}

// dashboardLinkStore feeds link history into the dashboard
type dashboardLinkStore interface {
	ListForLead(leadID uint) ([]model.DemoLink, error)
}

// dashboardOTPStore feeds challenge history into the lead detail view
type dashboardOTPStore interface {
	ListForLead(leadID uint) ([]model.OTPChallenge, error)
}

// dashboardEngagementStore feeds activity, queries and follow-ups
type dashboardEngagementStore interface {
	BestActivityForLead(leadID uint) (*model.VideoActivity, error)
	ListActivityForLead(leadID uint) ([]model.VideoActivity, error)
	ListQueriesForLead(leadID uint) ([]model.Query, error)
	ListFollowupsForLead(leadID uint) ([]model.Followup, error)
}

// AdminService backs the sales dashboard: session handling plus the lead
// list and detail views
type AdminService struct {
	admins     adminStore
	leads      dashboardLeadStore
	links      dashboardLinkStore
	otps       dashboardOTPStore
	engagement dashboardEngagementStore
	jwt        *auth.JWTManager
	redis      *redis.Client

	now func() time.Time
}

// NewAdminService creates the dashboard service
func NewAdminService(admins adminStore, leads dashboardLeadStore, links dashboardLinkStore, otps dashboardOTPStore, engagement dashboardEngagementStore, jwt *auth.JWTManager, rdb *redis.Client) *AdminService {
	return &AdminService{
		admins:     admins,
		leads:      leads,
		links:      links,
		otps:       otps,
		engagement: engagement,
		jwt:        jwt,
		redis:      rdb,
		now:        time.Now,
	}
}

// Login authenticates a dashboard user and returns a session token.
// Successful logins land in the activity log.
func (s *AdminService) Login(username, password string) (string, *model.AdminUser, error) {
	user, err := s.admins.FindUserByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logAction(user, model.UserLogActionLogin)
	log.Printf("👤 %s logged in", user.Username)
	return token, user, nil
}

// Logout blacklists the session token in Redis for its remaining lifetime
// and records the logout
func (s *AdminService) Logout(ctx context.Context, tokenString string, claims *auth.Claims) error {
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl > 0 {
		key := "blacklist:" + tokenString
		if err := s.redis.Set(ctx, key, "1", ttl).Err(); err != nil {
			return fmt.Errorf("failed to blacklist token: %w", err)
		}
	}

	user, err := s.admins.FindUserByID(claims.UserID)
	if err != nil {
		log.Printf("⚠️  Logout: failed to load user %d: %v", claims.UserID, err)
		return nil
	}
	s.logAction(user, model.UserLogActionLogout)
	log.Printf("👤 %s logged out", user.Username)
	return nil
}

func (s *AdminService) logAction(user *model.AdminUser, action model.UserLogAction) {
	entry := &model.UserLog{
		UserID:   user.ID,
		Username: user.Username,
		Name:     user.Name,
		Role:     user.Role,
		Action:   action,
		LoggedAt: s.now(),
	}
	if err := s.admins.CreateUserLog(entry); err != nil {
		log.Printf("⚠️  Failed to record %s for user %d: %v", action, user.ID, err)
	}
}

// UserLogs returns one page of the login/logout activity log
func (s *AdminService) UserLogs(page, perPage int) (*model.PagedUserLogs, error) {
	logs, total, err := s.admins.ListUserLogs(page, perPage)
	if err != nil {
		return nil, fmt.Errorf("failed to list user logs: %w", err)
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return &model.PagedUserLogs{
		Logs:    logs,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}, nil
}

// LeadOverview returns the dashboard lead list: each lead joined with its
// newest demo link and furthest watch progress, optionally date-filtered
func (s *AdminService) LeadOverview(from, to *time.Time) ([]model.LeadOverview, error) {
	leads, err := s.leads.List(from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}

	rows := make([]model.LeadOverview, 0, len(leads))
	for _, lead := range leads {
		row := model.LeadOverview{Lead: lead}

		links, err := s.links.ListForLead(lead.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list links for lead %d: %w", lead.ID, err)
		}
		if len(links) > 0 {
			row.DemoLink = &links[0]
		}

		activity, err := s.engagement.BestActivityForLead(lead.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to load activity for lead %d: %w", lead.ID, err)
		}
		row.VideoActivity = activity

		rows = append(rows, row)
	}
	return rows, nil
}

// LeadDetail returns the full engagement history for one lead
func (s *AdminService) LeadDetail(leadID uint) (*model.LeadDetail, error) {
	lead, err := s.leads.FindByID(leadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up lead: %w", err)
	}

	challenges, err := s.otps.ListForLead(leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	links, err := s.links.ListForLead(leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	activity, err := s.engagement.ListActivityForLead(leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	queries, err := s.engagement.ListQueriesForLead(leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list queries: %w", err)
	}
	followups, err := s.engagement.ListFollowupsForLead(leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list follow-ups: %w", err)
	}

	return &model.LeadDetail{
		Lead:       *lead,
		Challenges: challenges,
		DemoLinks:  links,
		Activity:   activity,
		Queries:    queries,
		Followups:  followups,
	}, nil
}
