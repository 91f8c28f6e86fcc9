package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/raven2t2/importiq-backend/v1/models"
)

// ErrPortNotFound is returned for unknown port codes or IDs
var ErrPortNotFound = errors.New("port not found")

// PortService serves port reference data, cost calculations and ranked
// recommendations.
type PortService struct {
	db *gorm.DB
}

// NewPortService creates a new port service
func NewPortService(db *gorm.DB) *PortService {
	return &PortService{db: db}
}

// Recommendation ranking weights. Cost dominates; processing time and
// vehicle-handling capability break ties.
const (
	recommendCostWeight       = 0.5
	recommendDaysWeight       = 0.3
	recommendCapabilityWeight = 0.2
	defaultStorageDays        = 7
)

// ListPorts returns ports filtered by country and optional region
func (s *PortService) ListPorts(ctx context.Context, country, region string) ([]models.PortInformation, error) {
	query := s.db.WithContext(ctx).Model(&models.PortInformation{}).Order("country, port_name")
	if country != "" {
		query = query.Where("country = ?", strings.ToUpper(country))
	}
	if region != "" {
		query = query.Where("region = ?", strings.ToUpper(region))
	}

	var ports []models.PortInformation
	if err := query.Find(&ports).Error; err != nil {
		return nil, fmt.Errorf("failed to list ports: %w", err)
	}
	return ports, nil
}

// GetPortByCode loads one port by its code
func (s *PortService) GetPortByCode(ctx context.Context, portCode string) (*models.PortInformation, error) {
	var port models.PortInformation
	if err := s.db.WithContext(ctx).First(&port, "port_code = ?", strings.ToUpper(portCode)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPortNotFound
		}
		return nil, fmt.Errorf("failed to load port: %w", err)
	}
	return &port, nil
}

// CalculateCost produces an itemized handling/storage/clearance cost for one
// port. Storage days default to a week when unset.
func (s *PortService) CalculateCost(ctx context.Context, req *models.PortCostRequest) (*models.PortCostResponse, error) {
	if req.StorageDays < 0 {
		return nil, fmt.Errorf("storageDays must not be negative")
	}

	port, err := s.GetPortByCode(ctx, req.PortCode)
	if err != nil {
		return nil, err
	}

	return portCost(port, req.StorageDays), nil
}

// ComparePorts calculates costs for 2 to 5 ports side by side
func (s *PortService) ComparePorts(ctx context.Context, req *models.PortComparisonRequest) (*models.PortComparisonResponse, error) {
	if len(req.PortCodes) < 2 || len(req.PortCodes) > 5 {
		return nil, fmt.Errorf("comparison requires between 2 and 5 port codes, got %d", len(req.PortCodes))
	}

	resp := &models.PortComparisonResponse{}
	for _, code := range req.PortCodes {
		port, err := s.GetPortByCode(ctx, code)
		if err != nil {
			if errors.Is(err, ErrPortNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrPortNotFound, code)
			}
			return nil, err
		}
		resp.Ports = append(resp.Ports, *portCost(port, req.StorageDays))
	}

	cheapest, priciest := resp.Ports[0], resp.Ports[0]
	for _, p := range resp.Ports[1:] {
		if p.Total < cheapest.Total {
			cheapest = p
		}
		if p.Total > priciest.Total {
			priciest = p
		}
	}
	resp.CheapestPort = cheapest.PortCode
	resp.MaxDifference = round2(priciest.Total - cheapest.Total)

	return resp, nil
}

// Recommend ranks a region's vehicle-capable ports by weighted cost,
// processing time and capability. Lower cost and faster processing score
// higher.
func (s *PortService) Recommend(ctx context.Context, req *models.PortRecommendationRequest) ([]models.PortRecommendation, error) {
	if req.DestinationRegion == "" {
		return nil, fmt.Errorf("destinationRegion is required")
	}

	storageDays := req.StorageDays
	if storageDays <= 0 {
		storageDays = defaultStorageDays
	}

	var ports []models.PortInformation
	err := s.db.WithContext(ctx).
		Where("region = ? OR country = ?", strings.ToUpper(req.DestinationRegion), strings.ToUpper(req.DestinationRegion)).
		Find(&ports).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load ports for region: %w", err)
	}
	if len(ports) == 0 {
		return nil, ErrPortNotFound
	}

	maxCost, maxDays := 0.0, 0
	costs := make([]float64, len(ports))
	for i := range ports {
		costs[i] = portCost(&ports[i], storageDays).Total
		if costs[i] > maxCost {
			maxCost = costs[i]
		}
		if ports[i].ProcessingDaysMax > maxDays {
			maxDays = ports[i].ProcessingDaysMax
		}
	}

	recs := make([]models.PortRecommendation, 0, len(ports))
	for i := range ports {
		costScore, daysScore := 1.0, 1.0
		if maxCost > 0 {
			costScore = 1 - costs[i]/maxCost
		}
		if maxDays > 0 {
			daysScore = 1 - float64(ports[i].ProcessingDaysMax)/float64(maxDays)
		}
		capabilityScore := 0.0
		if ports[i].VehicleProcessingCapable {
			capabilityScore = 1.0
		}

		score := recommendCostWeight*costScore +
			recommendDaysWeight*daysScore +
			recommendCapabilityWeight*capabilityScore

		recs = append(recs, models.PortRecommendation{
			PortID:         ports[i].PortID,
			PortName:       ports[i].PortName,
			PortCode:       ports[i].PortCode,
			Score:          round2(score * 100),
			EstimatedCost:  costs[i],
			ProcessingDays: ports[i].ProcessingDaysMax,
		})
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].EstimatedCost < recs[j].EstimatedCost
	})

	return recs, nil
}

func portCost(port *models.PortInformation, storageDays int) *models.PortCostResponse {
	storage := round2(port.StorageFeePerDay * float64(storageDays))
	return &models.PortCostResponse{
		PortID:       port.PortID,
		PortCode:     port.PortCode,
		PortName:     port.PortName,
		HandlingFee:  port.BaseHandlingFee,
		StorageFee:   storage,
		ClearanceFee: port.CustomsClearanceFee,
		Total:        round2(port.BaseHandlingFee + storage + port.CustomsClearanceFee),
	}
}
