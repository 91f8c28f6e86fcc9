package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/raven2t2/importiq-backend/v1/models"
)

var (
	// ErrAffiliateExists is returned when signing up an email twice
	ErrAffiliateExists = errors.New("affiliate already registered")
	// ErrAffiliateNotFound is returned for unknown referral codes
	ErrAffiliateNotFound = errors.New("affiliate not found")
)

const defaultCommissionRate = 0.05

// referral codes use an unambiguous alphabet (no 0/O, 1/I/L)
const referralAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
const referralCodeLen = 8

// AffiliateService handles referral partner signups and lookups
type AffiliateService struct {
	db *gorm.DB
}

// NewAffiliateService creates a new affiliate service
func NewAffiliateService(db *gorm.DB) *AffiliateService {
	return &AffiliateService{db: db}
}

// Signup registers a new affiliate partner with a generated referral code
func (s *AffiliateService) Signup(ctx context.Context, req *models.AffiliateSignupRequest) (*models.AffiliatePartner, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.CompanyName) == "" {
		return nil, fmt.Errorf("companyName is required")
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.AffiliatePartner{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing affiliates: %w", err)
	}
	if existing > 0 {
		return nil, ErrAffiliateExists
	}

	code, err := s.uniqueReferralCode(ctx)
	if err != nil {
		return nil, err
	}

	partner := models.AffiliatePartner{
		AffiliateID:    "aff_" + uuid.New().String(),
		Email:          email,
		CompanyName:    strings.TrimSpace(req.CompanyName),
		ReferralCode:   code,
		CommissionRate: defaultCommissionRate,
		Status:         models.AffiliateStatusActive,
	}

	if err := s.db.WithContext(ctx).Create(&partner).Error; err != nil {
		return nil, fmt.Errorf("failed to create affiliate: %w", err)
	}
	return &partner, nil
}

// GetByReferralCode resolves a referral code to its partner
func (s *AffiliateService) GetByReferralCode(ctx context.Context, code string) (*models.AffiliatePartner, error) {
	var partner models.AffiliatePartner
	if err := s.db.WithContext(ctx).First(&partner, "referral_code = ?", strings.ToUpper(code)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAffiliateNotFound
		}
		return nil, fmt.Errorf("failed to look up affiliate: %w", err)
	}
	return &partner, nil
}

// uniqueReferralCode generates a code and retries on the rare collision
func (s *AffiliateService) uniqueReferralCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code, err := generateReferralCode()
		if err != nil {
			return "", fmt.Errorf("failed to generate referral code: %w", err)
		}

		var count int64
		if err := s.db.WithContext(ctx).Model(&models.AffiliatePartner{}).Where("referral_code = ?", code).Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check referral code: %w", err)
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique referral code")
}

func generateReferralCode() (string, error) {
	buf := make([]byte, referralCodeLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = referralAlphabet[int(buf[i])%len(referralAlphabet)]
	}
	return string(buf), nil
}
