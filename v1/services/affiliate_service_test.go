package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/raven2t2/importiq-backend/v1/models"
)

func TestAffiliateSignup(t *testing.T) {
	db := SetupSQLiteTestDB(t)
	service := NewAffiliateService(db)

	partner, err := service.Signup(context.Background(), &models.AffiliateSignupRequest{
		Email:       "Partner@Example.com",
		CompanyName: "JDM Imports LLC",
	})

	assert.NoError(t, err)
	assert.Contains(t, partner.AffiliateID, "aff_")
	assert.Equal(t, "partner@example.com", partner.Email)
	assert.Equal(t, 0.05, partner.CommissionRate)
	assert.Equal(t, models.AffiliateStatusActive, partner.Status)
	assert.Len(t, partner.ReferralCode, 8)
	// Codes avoid ambiguous characters
	assert.NotContains(t, partner.ReferralCode, "0")
	assert.NotContains(t, partner.ReferralCode, "O")
	assert.Equal(t, strings.ToUpper(partner.ReferralCode), partner.ReferralCode)
}

func TestAffiliateSignupDuplicateEmail(t *testing.T) {
	db := SetupSQLiteTestDB(t)
	service := NewAffiliateService(db)
	ctx := context.Background()

	_, err := service.Signup(ctx, &models.AffiliateSignupRequest{
		Email:       "partner@example.com",
		CompanyName: "JDM Imports LLC",
	})
	assert.NoError(t, err)

	_, err = service.Signup(ctx, &models.AffiliateSignupRequest{
		Email:       "PARTNER@example.com",
		CompanyName: "Duplicate LLC",
	})
	assert.ErrorIs(t, err, ErrAffiliateExists)
}

func TestAffiliateSignupValidation(t *testing.T) {
	db := SetupSQLiteTestDB(t)
	service := NewAffiliateService(db)
	ctx := context.Background()

	_, err := service.Signup(ctx, &models.AffiliateSignupRequest{CompanyName: "No Email LLC"})
	assert.Error(t, err)

	_, err = service.Signup(ctx, &models.AffiliateSignupRequest{Email: "a@b.com"})
	assert.Error(t, err)
}

func TestGetByReferralCode(t *testing.T) {
	db := SetupSQLiteTestDB(t)
	service := NewAffiliateService(db)
	ctx := context.Background()

	partner, err := service.Signup(ctx, &models.AffiliateSignupRequest{
		Email:       "partner@example.com",
		CompanyName: "JDM Imports LLC",
	})
	assert.NoError(t, err)

	found, err := service.GetByReferralCode(ctx, strings.ToLower(partner.ReferralCode))
	assert.NoError(t, err)
	assert.Equal(t, partner.AffiliateID, found.AffiliateID)

	_, err = service.GetByReferralCode(ctx, "NOTACODE")
	assert.ErrorIs(t, err, ErrAffiliateNotFound)
}

func TestReferralCodesAreUniquePerSignup(t *testing.T) {
	db := SetupSQLiteTestDB(t)
	service := NewAffiliateService(db)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		partner, err := service.Signup(ctx, &models.AffiliateSignupRequest{
			Email:       strings.ToLower("partner" + string(rune('a'+i)) + "@example.com"),
			CompanyName: "Shop",
		})
		assert.NoError(t, err)
		assert.False(t, seen[partner.ReferralCode])
		seen[partner.ReferralCode] = true
	}
}
