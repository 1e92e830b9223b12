package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/themestore/demoaccess/internal/model"
	"gorm.io/gorm"
)

type fakeLeadStore struct {
	leads     []*model.Lead
	enquiries []*model.Enquiry
	nextID    uint
}

func (f *fakeLeadStore) Create(lead *model.Lead) error {
	f.nextID++
	lead.ID = f.nextID
	f.leads = append(f.leads, lead)
	return nil
}

func (f *fakeLeadStore) FindByEmail(email string) (*model.Lead, error) {
	for _, lead := range f.leads {
		if lead.Email == email {
			return lead, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLeadStore) Update(lead *model.Lead) error { return nil }

func (f *fakeLeadStore) FindEnquiryByEmail(email string) (*model.Enquiry, error) {
	for _, e := range f.enquiries {
		if e.Email == email {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func TestCaptureCreatesLead(t *testing.T) {
	store := &fakeLeadStore{}
	svc := NewLeadService(store)

	lead, created, err := svc.Capture(&model.CreateLeadRequest{
		CompanyName:    "Acme",
		Location:       "Pune",
		Email:          "lead@example.com",
		Mobile:         "9876543210",
		CampaignSource: "google-ads",
	})
	require.NoError(t, err)

	assert.True(t, created)
	assert.Equal(t, model.LeadStatusPending, lead.Status)
	assert.Equal(t, model.LeadInterestNone, lead.Interest)
	assert.Equal(t, "google-ads", lead.CampaignSource)
}

func TestCaptureRefreshesExistingLead(t *testing.T) {
	store := &fakeLeadStore{}
	svc := NewLeadService(store)

	first, _, err := svc.Capture(&model.CreateLeadRequest{
		CompanyName: "Acme", Location: "Pune", Email: "lead@example.com", Mobile: "9876543210",
		CampaignSource: "google-ads",
	})
	require.NoError(t, err)
	first.Status = model.LeadStatusVerified

	second, created, err := svc.Capture(&model.CreateLeadRequest{
		CompanyName: "Acme Industries", Location: "Mumbai", Email: "lead@example.com", Mobile: "9123456789",
	})
	require.NoError(t, err)

	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Acme Industries", second.CompanyName)
	assert.Equal(t, "Mumbai", second.Location)
	// verification survives a resubmission
	assert.Equal(t, model.LeadStatusVerified, second.Status)
	// empty campaign source does not erase the original attribution
	assert.Equal(t, "google-ads", second.CampaignSource)
}

func TestEnquiryLookup(t *testing.T) {
	store := &fakeLeadStore{enquiries: []*model.Enquiry{
		{ID: 1, Email: "prospect@example.com", Mobile: "9876543210", CompanyName: "Beta Corp", City: "Delhi"},
	}}
	svc := NewLeadService(store)

	resp, err := svc.EnquiryLookup("prospect@example.com")
	require.NoError(t, err)
	assert.True(t, resp.Found)
	assert.Equal(t, "Beta Corp", resp.CompanyName)
	assert.Equal(t, "Delhi", resp.City)

	resp, err = svc.EnquiryLookup("nobody@example.com")
	require.NoError(t, err)
	assert.False(t, resp.Found)
	assert.Empty(t, resp.CompanyName)
}
