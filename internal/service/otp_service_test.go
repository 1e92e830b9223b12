package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/themestore/demoaccess/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ==================== fakes ====================

type fakeOTPStore struct {
	challenges []*model.OTPChallenge
	nextID     uint
	clock      func() time.Time
}

func newFakeOTPStore(clock func() time.Time) *fakeOTPStore {
	return &fakeOTPStore{clock: clock}
}

func (f *fakeOTPStore) Create(otp *model.OTPChallenge) error {
	f.nextID++
	otp.ID = f.nextID
	otp.CreatedAt = f.clock()
	f.challenges = append(f.challenges, otp)
	return nil
}

func (f *fakeOTPStore) FindLatest(leadID uint) (*model.OTPChallenge, error) {
	for i := len(f.challenges) - 1; i >= 0; i-- {
		if f.challenges[i].LeadID == leadID {
			return f.challenges[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOTPStore) ExpireOpen(leadID uint) error {
	for _, c := range f.challenges {
		if c.LeadID == leadID && (c.Status == model.OTPStatusPending || c.Status == model.OTPStatusFailed) {
			c.Status = model.OTPStatusExpired
		}
	}
	return nil
}

func (f *fakeOTPStore) RecordFailure(id uint, status model.OTPStatus) error {
	for _, c := range f.challenges {
		if c.ID == id {
			c.Attempts++
			c.Status = status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeOTPStore) MarkVerified(id uint, at time.Time) error {
	for _, c := range f.challenges {
		if c.ID == id {
			c.Status = model.OTPStatusVerified
			c.VerifiedAt = &at
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeOTPStore) MarkExpired(id uint) error {
	for _, c := range f.challenges {
		if c.ID == id {
			c.Status = model.OTPStatusExpired
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeOTPStore) CountRecent(leadID uint, since time.Time) (int64, error) {
	var n int64
	for _, c := range f.challenges {
		if c.LeadID == leadID && c.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

type fakeOTPLeadStore struct {
	leads map[string]*model.Lead
}

func (f *fakeOTPLeadStore) FindByEmail(email string) (*model.Lead, error) {
	if lead, ok := f.leads[email]; ok {
		return lead, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOTPLeadStore) UpdateStatus(id uint, status model.LeadStatus) error {
	for _, lead := range f.leads {
		if lead.ID == id {
			lead.Status = status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeOTPMailer struct {
	sent []string // codes, in send order
	fail bool
}

func (f *fakeOTPMailer) SendOTP(toEmail, name, code string, expiryMinutes, maxAttempts int, videoPassword string) error {
	if f.fail {
		return errors.New("smtp down")
	}
	f.sent = append(f.sent, code)
	return nil
}

// ==================== harness ====================

type otpFixture struct {
	svc   *OTPService
	store *fakeOTPStore
	leads *fakeOTPLeadStore
	mail  *fakeOTPMailer
	clock *time.Time
}

func newOTPFixture(t *testing.T) *otpFixture {
	t.Helper()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := &now
	tick := func() time.Time { return *clock }

	store := newFakeOTPStore(tick)
	leads := &fakeOTPLeadStore{leads: map[string]*model.Lead{
		"lead@example.com": {ID: 1, Email: "lead@example.com", CompanyName: "Acme", Status: model.LeadStatusPending},
	}}
	mail := &fakeOTPMailer{}

	svc := NewOTPService(store, leads, mail, 10*time.Minute, 3, 3, "")
	svc.now = tick

	return &otpFixture{svc: svc, store: store, leads: leads, mail: mail, clock: clock}
}

func (fx *otpFixture) advance(d time.Duration) {
	*fx.clock = fx.clock.Add(d)
}

// ==================== tests ====================

func TestSendChallenge(t *testing.T) {
	fx := newOTPFixture(t)

	challenge, err := fx.svc.SendChallenge("lead@example.com")
	require.NoError(t, err)

	assert.Len(t, challenge.Code, 6)
	assert.Equal(t, model.OTPStatusPending, challenge.Status)
	assert.Equal(t, 3, challenge.MaxAttempts)
	require.Len(t, fx.mail.sent, 1)
	assert.Equal(t, challenge.Code, fx.mail.sent[0])

	// hash actually matches the raw code
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(challenge.CodeHash), []byte(challenge.Code)))
}

func TestSendChallengeUnknownEmail(t *testing.T) {
	fx := newOTPFixture(t)

	_, err := fx.svc.SendChallenge("nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSendChallengeSupersedesOpenOnes(t *testing.T) {
	fx := newOTPFixture(t)

	first, err := fx.svc.SendChallenge("lead@example.com")
	require.NoError(t, err)

	fx.advance(time.Minute)
	second, err := fx.svc.SendChallenge("lead@example.com")
	require.NoError(t, err)

	assert.Equal(t, model.OTPStatusExpired, first.Status)
	assert.Equal(t, model.OTPStatusPending, second.Status)

	// the superseded code no longer verifies
	_, err = fx.svc.Verify("lead@example.com", first.Code)
	if first.Code != second.Code {
		assert.Error(t, err)
	}
}

func TestSendChallengeRateLimit(t *testing.T) {
	fx := newOTPFixture(t)

	for i := 0; i < 3; i++ {
		_, err := fx.svc.SendChallenge("lead@example.com")
		require.NoError(t, err)
		fx.advance(time.Minute)
	}

	_, err := fx.svc.SendChallenge("lead@example.com")
	assert.ErrorIs(t, err, ErrTooManyRequests)

	// the window slides: an hour later sends work again
	fx.advance(time.Hour)
	_, err = fx.svc.SendChallenge("lead@example.com")
	assert.NoError(t, err)
}

func TestSendChallengeDeliveryFailure(t *testing.T) {
	fx := newOTPFixture(t)
	fx.mail.fail = true

	_, err := fx.svc.SendChallenge("lead@example.com")
	assert.ErrorIs(t, err, ErrDelivery)
}

func TestVerifySuccess(t *testing.T) {
	fx := newOTPFixture(t)

	challenge, err := fx.svc.SendChallenge("lead@example.com")
	require.NoError(t, err)

	lead, err := fx.svc.Verify("lead@example.com", challenge.Code)
	require.NoError(t, err)

	assert.Equal(t, model.LeadStatusVerified, lead.Status)
	assert.Equal(t, model.OTPStatusVerified, challenge.Status)
	require.NotNil(t, challenge.VerifiedAt)
}

func TestVerifyNoChallenge(t *testing.T) {
	fx := newOTPFixture(t)

	_, err := fx.svc.Verify("lead@example.com", "123456")
	assert.ErrorIs(t, err, ErrNoChallenge)
}

func TestVerifyAlreadyVerified(t *testing.T) {
	fx := newOTPFixture(t)

	challenge, err := fx.svc.SendChallenge("lead@example.com")
	require.NoError(t, err)

	_, err = fx.svc.Verify("lead@example.com", challenge.Code)
	require.NoError(t, err)

	_, err = fx.svc.Verify("lead@example.com", challenge.Code)
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestVerifyWrongCodeCountsDown(t *testing.T) {
	fx := newOTPFixture(t)

	challenge, err := fx.svc.SendChallenge("lead@example.com")
	require.NoError(t, err)
	wrong := "000000"
	if challenge.Code == wrong {
		wrong = "000001"
	}

	var invalid *ErrInvalidCode

	_, err = fx.svc.Verify("lead@example.com", wrong)
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 2, invalid.Remaining)

	_, err = fx.svc.Verify("lead@example.com", wrong)
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 1, invalid.Remaining)

	// third strike blocks
	_, err = fx.svc.Verify("lead@example.com", wrong)
	assert.ErrorIs(t, err, ErrBlocked)

	// even the right code is refused once blocked
	_, err = fx.svc.Verify("lead@example.com", challenge.Code)
	assert.ErrorIs(t, err, ErrBlocked)
}

func TestVerifyBlockedThenResendResetsBudget(t *testing.T) {
	fx := newOTPFixture(t)

	challenge, err := fx.svc.SendChallenge("lead@example.com")
	require.NoError(t, err)
	wrong := "000000"
	if challenge.Code == wrong {
		wrong = "000001"
	}
	for i := 0; i < 3; i++ {
		fx.svc.Verify("lead@example.com", wrong)
	}

	fresh, err := fx.svc.SendChallenge("lead@example.com")
	require.NoError(t, err)

	lead, err := fx.svc.Verify("lead@example.com", fresh.Code)
	require.NoError(t, err)
	assert.Equal(t, model.LeadStatusVerified, lead.Status)
}

func TestVerifyExpiredByClock(t *testing.T) {
	fx := newOTPFixture(t)

	challenge, err := fx.svc.SendChallenge("lead@example.com")
	require.NoError(t, err)

	fx.advance(10*time.Minute + time.Second)

	_, err = fx.svc.Verify("lead@example.com", challenge.Code)
	assert.ErrorIs(t, err, ErrExpired)
	assert.Equal(t, model.OTPStatusExpired, challenge.Status)
}

func TestVerifyJustInsideWindow(t *testing.T) {
	fx := newOTPFixture(t)

	challenge, err := fx.svc.SendChallenge("lead@example.com")
	require.NoError(t, err)

	fx.advance(10 * time.Minute) // boundary is inclusive

	_, err = fx.svc.Verify("lead@example.com", challenge.Code)
	assert.NoError(t, err)
}

func TestGenerateCodeShape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9')
		}
		seen[code] = true
	}
	// 50 draws from a million values should not all collide
	assert.Greater(t, len(seen), 1)
}
