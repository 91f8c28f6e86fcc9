package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/raven2t2/importiq-backend/v1/models"
)

// ErrAuctionNotFound is returned for unknown auction IDs
var ErrAuctionNotFound = errors.New("auction listing not found")

// Search pagination bounds
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// AuctionSearchParams filters the auction listing search
type AuctionSearchParams struct {
	Make     string
	Model    string
	YearMin  int
	YearMax  int
	PriceMax float64
	Source   string
	Page     int
	PageSize int
}

// VehicleService serves auction listings ingested from upstream feeds
type VehicleService struct {
	db *gorm.DB
}

// NewVehicleService creates a new vehicle service
func NewVehicleService(db *gorm.DB) *VehicleService {
	return &VehicleService{db: db}
}

// SearchAuctions returns a page of listings matching the filters, plus the
// total match count for pagination.
func (s *VehicleService) SearchAuctions(ctx context.Context, params *AuctionSearchParams) ([]models.VehicleAuction, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.VehicleAuction{})

	if params.Make != "" {
		query = query.Where("LOWER(make) = ?", strings.ToLower(params.Make))
	}
	if params.Model != "" {
		query = query.Where("LOWER(model) LIKE ?", "%"+strings.ToLower(params.Model)+"%")
	}
	if params.YearMin > 0 {
		query = query.Where("year >= ?", params.YearMin)
	}
	if params.YearMax > 0 {
		query = query.Where("year <= ?", params.YearMax)
	}
	if params.YearMin > 0 && params.YearMax > 0 && params.YearMin > params.YearMax {
		return nil, 0, fmt.Errorf("yearMin must not exceed yearMax")
	}
	if params.PriceMax > 0 {
		query = query.Where("price <= ?", params.PriceMax)
	}
	if params.Source != "" {
		query = query.Where("source = ?", params.Source)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count auctions: %w", err)
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	var auctions []models.VehicleAuction
	err := query.
		Order("created_at desc, auction_id").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&auctions).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search auctions: %w", err)
	}

	return auctions, total, nil
}

// GetAuction loads one listing by ID
func (s *VehicleService) GetAuction(ctx context.Context, auctionID string) (*models.VehicleAuction, error) {
	var auction models.VehicleAuction
	if err := s.db.WithContext(ctx).First(&auction, "auction_id = ?", auctionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuctionNotFound
		}
		return nil, fmt.Errorf("failed to load auction: %w", err)
	}
	return &auction, nil
}

// ImportListings bulk-inserts listings, silently skipping rows that collide
// on (source, lot_number). Returns the number of rows actually inserted.
func (s *VehicleService) ImportListings(ctx context.Context, listings []models.VehicleAuction) (int64, error) {
	if len(listings) == 0 {
		return 0, nil
	}

	for i := range listings {
		if listings[i].Source == "" || listings[i].LotNumber == "" {
			return 0, fmt.Errorf("listing %d: source and lotNumber are required", i)
		}
		if listings[i].AuctionID == "" {
			listings[i].AuctionID = "auc_" + uuid.New().String()
		}
	}

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "source"}, {Name: "lot_number"}},
			DoNothing: true,
		}).
		Create(&listings)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to import listings: %w", result.Error)
	}

	return result.RowsAffected, nil
}
