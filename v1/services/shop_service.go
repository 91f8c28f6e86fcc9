package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/raven2t2/importiq-backend/v1/models"
)

// ErrShopNotFound is returned for unknown shop IDs
var ErrShopNotFound = errors.New("shop not found")

// ShopService serves the mod shop directory, reviews and the modification
// cost estimator.
type ShopService struct {
	db *gorm.DB
}

// NewShopService creates a new shop service
func NewShopService(db *gorm.DB) *ShopService {
	return &ShopService{db: db}
}

// modCostRange is the installed-cost band for one modification
type modCostRange struct {
	Low  float64
	High float64
}

var modCostRanges = map[string]modCostRange{
	"turbo_kit":    {Low: 4500, High: 9000},
	"supercharger": {Low: 5500, High: 11000},
	"engine_swap":  {Low: 8000, High: 20000},
	"exhaust":      {Low: 800, High: 2500},
	"intake":       {Low: 300, High: 900},
	"suspension":   {Low: 1200, High: 4000},
	"coilovers":    {Low: 1500, High: 4500},
	"wheels_tires": {Low: 1500, High: 5000},
	"widebody_kit": {Low: 3500, High: 12000},
	"roll_cage":    {Low: 2000, High: 6000},
	"ecu_tune":     {Low: 600, High: 2000},
	"lighting":     {Low: 200, High: 800},
	"interior":     {Low: 500, High: 3000},
}

var modCostRangeDefault = modCostRange{Low: 500, High: 2000}

// Structural modifications need an engineering certificate in strict states
var modsRequiringEngCert = map[string]bool{
	"engine_swap":  true,
	"roll_cage":    true,
	"widebody_kit": true,
}

// SearchShops returns directory listings filtered by state and specialty.
// Service areas and reviews are preloaded.
func (s *ShopService) SearchShops(ctx context.Context, state, specialty string) ([]models.ModShopPartner, error) {
	query := s.db.WithContext(ctx).
		Model(&models.ModShopPartner{}).
		Preload("ServiceAreas").
		Preload("Reviews").
		Order("rating desc, review_count desc")

	if state != "" {
		query = query.Where(
			"shop_id IN (?)",
			s.db.Model(&models.ServiceArea{}).Select("shop_id").Where("state = ?", strings.ToUpper(state)),
		)
	}
	if specialty != "" {
		// StringList columns store JSON arrays; match on the quoted element
		query = query.Where("specialties LIKE ?", "%\""+strings.ToLower(specialty)+"\"%")
	}

	var shops []models.ModShopPartner
	if err := query.Find(&shops).Error; err != nil {
		return nil, fmt.Errorf("failed to search shops: %w", err)
	}
	return shops, nil
}

// GetShop loads one shop with its service areas and reviews
func (s *ShopService) GetShop(ctx context.Context, shopID string) (*models.ModShopPartner, error) {
	var shop models.ModShopPartner
	err := s.db.WithContext(ctx).
		Preload("ServiceAreas").
		Preload("Reviews").
		First(&shop, "shop_id = ?", shopID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, fmt.Errorf("failed to load shop: %w", err)
	}
	return &shop, nil
}

// AddReview stores a review and recomputes the shop's aggregate rating in
// one transaction.
func (s *ShopService) AddReview(ctx context.Context, shopID string, req *models.CreateReviewRequest) (*models.ShopReview, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5")
	}
	if strings.TrimSpace(req.ReviewerName) == "" {
		return nil, fmt.Errorf("reviewerName is required")
	}
	if len(req.Comment) > models.MaxCommentLength {
		return nil, fmt.Errorf("comment must be at most %d characters", models.MaxCommentLength)
	}

	var shop models.ModShopPartner
	if err := s.db.WithContext(ctx).First(&shop, "shop_id = ?", shopID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, fmt.Errorf("failed to load shop: %w", err)
	}

	review := models.ShopReview{
		ReviewID:     "rev_" + uuid.New().String(),
		ShopID:       shopID,
		ReviewerName: strings.TrimSpace(req.ReviewerName),
		Rating:       req.Rating,
		Comment:      req.Comment,
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := tx.Create(&review).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	// Recompute the aggregate from stored reviews rather than incrementally
	var stats struct {
		Avg   float64
		Count int
	}
	err := tx.Model(&models.ShopReview{}).
		Select("AVG(rating) as avg, COUNT(*) as count").
		Where("shop_id = ?", shopID).
		Scan(&stats).Error
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to aggregate reviews: %w", err)
	}

	err = tx.Model(&models.ModShopPartner{}).
		Where("shop_id = ?", shopID).
		Updates(map[string]interface{}{
			"rating":       round2(stats.Avg),
			"review_count": stats.Count,
		}).Error
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to update shop rating: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &review, nil
}

// EstimateMods prices a modification list. Each line carries a cost band;
// structural modifications flag the engineering-certificate requirement.
func (s *ShopService) EstimateMods(req *models.ModEstimateRequest) (*models.ModEstimateResponse, error) {
	if len(req.Modifications) == 0 {
		return nil, fmt.Errorf("at least one modification is required")
	}

	resp := &models.ModEstimateResponse{}
	for _, mod := range req.Modifications {
		key := strings.ToLower(strings.TrimSpace(mod))
		band, ok := modCostRanges[key]
		if !ok {
			band = modCostRangeDefault
		}
		resp.LineItems = append(resp.LineItems, models.ModEstimateLineItem{
			Modification: key,
			CostLow:      band.Low,
			CostHigh:     band.High,
		})
		resp.TotalLow += band.Low
		resp.TotalHigh += band.High

		if modsRequiringEngCert[key] {
			resp.RequiresEngineeringCert = true
		}
	}

	return resp, nil
}
