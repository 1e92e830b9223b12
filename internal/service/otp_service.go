package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/themestore/demoaccess/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// otpStore is the slice of the challenge repository the verifier needs
type otpStore interface {
	Create(otp *model.OTPChallenge) error
	FindLatest(leadID uint) (*model.OTPChallenge, error)
	ExpireOpen(leadID uint) error
	RecordFailure(id uint, status model.OTPStatus) error
	MarkVerified(id uint, at time.Time) error
	MarkExpired(id uint) error
	CountRecent(leadID uint, since time.Time) (int64, error)
}

// otpLeadStore is the slice of the lead repository the verifier needs
type otpLeadStore interface {
	FindByEmail(email string) (*model.Lead, error)
	UpdateStatus(id uint, status model.LeadStatus) error
}

// otpMailer delivers verification codes
type otpMailer interface {
	SendOTP(toEmail, name, code string, expiryMinutes, maxAttempts int, videoPassword string) error
}

// OTPService runs the email verification flow: one live challenge per lead,
// a bounded number of attempts, and a resend rate limit.
type OTPService struct {
	otps  otpStore
	leads otpLeadStore
	mail  otpMailer

	expiry        time.Duration
	maxAttempts   int
	resendLimit   int // challenges per lead per hour
	videoPassword string

	now func() time.Time
}

// NewOTPService creates the verifier
func NewOTPService(otps otpStore, leads otpLeadStore, mail otpMailer, expiry time.Duration, maxAttempts, resendLimit int, videoPassword string) *OTPService {
	return &OTPService{
		otps:          otps,
		leads:         leads,
		mail:          mail,
		expiry:        expiry,
		maxAttempts:   maxAttempts,
		resendLimit:   resendLimit,
		videoPassword: videoPassword,
		now:           time.Now,
	}
}

// SendChallenge mints and emails a fresh code for the lead behind the email.
// Any open challenge (pending or failed) is superseded first, so exactly one
// challenge is live at a time and a resend always resets the attempt budget.
func (s *OTPService) SendChallenge(email string) (*model.OTPChallenge, error) {
	lead, err := s.leads.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up lead: %w", err)
	}

	if lead.IsVerified() {
		return nil, ErrAlreadyVerified
	}

	now := s.now()

	recent, err := s.otps.CountRecent(lead.ID, now.Add(-time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to count recent challenges: %w", err)
	}
	if recent >= int64(s.resendLimit) {
		return nil, ErrTooManyRequests
	}

	if err := s.otps.ExpireOpen(lead.ID); err != nil {
		return nil, fmt.Errorf("failed to supersede open challenges: %w", err)
	}

	code, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash OTP: %w", err)
	}

	challenge := &model.OTPChallenge{
		LeadID:      lead.ID,
		Code:        code,
		CodeHash:    string(hash),
		MaxAttempts: s.maxAttempts,
		Status:      model.OTPStatusPending,
		ExpiresAt:   now.Add(s.expiry),
	}
	if err := s.otps.Create(challenge); err != nil {
		return nil, fmt.Errorf("failed to store challenge: %w", err)
	}

	expiryMinutes := int(s.expiry.Minutes())
	if err := s.mail.SendOTP(lead.Email, lead.CompanyName, code, expiryMinutes, s.maxAttempts, s.videoPassword); err != nil {
		log.Printf("❌ OTP delivery failed for lead %d: %v", lead.ID, err)
		return nil, ErrDelivery
	}

	log.Printf("🔐 OTP sent to lead %d (%s)", lead.ID, lead.Email)
	return challenge, nil
}

// Verify checks a submitted code against the lead's latest challenge.
// Checks run in a fixed order: no challenge, already verified, blocked,
// expired, then the code comparison. A wrong code consumes an attempt and
// blocks the challenge when the budget runs out.
func (s *OTPService) Verify(email, code string) (*model.Lead, error) {
	lead, err := s.leads.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up lead: %w", err)
	}

	challenge, err := s.otps.FindLatest(lead.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoChallenge
		}
		return nil, fmt.Errorf("failed to look up challenge: %w", err)
	}

	if lead.IsVerified() || challenge.Status == model.OTPStatusVerified {
		return nil, ErrAlreadyVerified
	}
	if challenge.Status == model.OTPStatusBlocked {
		return nil, ErrBlocked
	}
	if challenge.Status == model.OTPStatusExpired {
		return nil, ErrExpired
	}

	now := s.now()
	if challenge.ExpiredBy(now, s.expiry) {
		if err := s.otps.MarkExpired(challenge.ID); err != nil {
			log.Printf("⚠️  Failed to mark challenge %d expired: %v", challenge.ID, err)
		}
		return nil, ErrExpired
	}

	if bcrypt.CompareHashAndPassword([]byte(challenge.CodeHash), []byte(code)) != nil {
		attempts := challenge.Attempts + 1
		if attempts >= challenge.MaxAttempts {
			if err := s.otps.RecordFailure(challenge.ID, model.OTPStatusBlocked); err != nil {
				return nil, fmt.Errorf("failed to record attempt: %w", err)
			}
			log.Printf("🚫 Lead %d blocked after %d failed attempts", lead.ID, attempts)
			return nil, ErrBlocked
		}
		if err := s.otps.RecordFailure(challenge.ID, model.OTPStatusFailed); err != nil {
			return nil, fmt.Errorf("failed to record attempt: %w", err)
		}
		challenge.Attempts = attempts
		return nil, &ErrInvalidCode{Remaining: challenge.RemainingAttempts()}
	}

	if err := s.otps.MarkVerified(challenge.ID, now); err != nil {
		return nil, fmt.Errorf("failed to close challenge: %w", err)
	}
	if err := s.leads.UpdateStatus(lead.ID, model.LeadStatusVerified); err != nil {
		return nil, fmt.Errorf("failed to update lead status: %w", err)
	}

	lead.Status = model.LeadStatusVerified
	log.Printf("✅ Lead %d (%s) verified", lead.ID, lead.Email)
	return lead, nil
}

// generateCode returns a 6-digit numeric code from crypto/rand
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
