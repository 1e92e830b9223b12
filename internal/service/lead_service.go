package service

import (
	"errors"
	"fmt"
	"log"

	"github.com/themestore/demoaccess/internal/model"
	"gorm.io/gorm"
)

// leadStore is the slice of the lead repository the intake service needs
type leadStore interface {
	Create(lead *model.Lead) error
	FindByEmail(email string) (*model.Lead, error)
	Update(lead *model.Lead) error
	FindEnquiryByEmail(email string) (*model.Enquiry, error)
}

// LeadService handles intake-form capture and enquiry auto-fill
type LeadService struct {
	leads leadStore
}

// NewLeadService creates the intake service
func NewLeadService(leads leadStore) *LeadService {
	return &LeadService{leads: leads}
}

// Capture records an intake submission. Email is the identity key: a repeat
// submission refreshes the contact fields on the existing lead instead of
// creating a duplicate, and keeps its verification status.
func (s *LeadService) Capture(req *model.CreateLeadRequest) (*model.Lead, bool, error) {
	existing, err := s.leads.FindByEmail(req.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("failed to look up lead: %w", err)
	}

	if existing != nil {
		existing.CompanyName = req.CompanyName
		existing.Location = req.Location
		existing.Mobile = req.Mobile
		if req.CampaignSource != "" {
			existing.CampaignSource = req.CampaignSource
		}
		if err := s.leads.Update(existing); err != nil {
			return nil, false, fmt.Errorf("failed to update lead: %w", err)
		}
		log.Printf("📋 Lead %d (%s) resubmitted intake form", existing.ID, existing.Email)
		return existing, false, nil
	}

	lead := &model.Lead{
		CompanyName:    req.CompanyName,
		Location:       req.Location,
		Email:          req.Email,
		Mobile:         req.Mobile,
		CampaignSource: req.CampaignSource,
		Status:         model.LeadStatusPending,
		Interest:       model.LeadInterestNone,
	}
	if err := s.leads.Create(lead); err != nil {
		return nil, false, fmt.Errorf("failed to create lead: %w", err)
	}

	log.Printf("📋 New lead %d (%s) captured", lead.ID, lead.Email)
	return lead, true, nil
}

// EnquiryLookup returns intake-form auto-fill data from a prior sales
// enquiry, if one exists for the email
func (s *LeadService) EnquiryLookup(email string) (*model.EnquiryLookupResponse, error) {
	enquiry, err := s.leads.FindEnquiryByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.EnquiryLookupResponse{Found: false}, nil
		}
		return nil, fmt.Errorf("failed to look up enquiry: %w", err)
	}
	return &model.EnquiryLookupResponse{
		Found:       true,
		Mobile:      enquiry.Mobile,
		CompanyName: enquiry.CompanyName,
		City:        enquiry.City,
	}, nil
}
