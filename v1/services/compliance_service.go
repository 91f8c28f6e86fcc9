package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/raven2t2/importiq-backend/v1/models"
)

// ErrRuleNotFound is returned when no compliance rules match the query
var ErrRuleNotFound = errors.New("compliance rule not found")

// ComplianceService serves compliance reference data and the BuildReady
// modification risk scorer.
type ComplianceService struct {
	db *gorm.DB
}

// NewComplianceService creates a new compliance service
func NewComplianceService(db *gorm.DB) *ComplianceService {
	return &ComplianceService{db: db}
}

// modificationRiskWeights scores each modification by how likely it is to
// trigger inspection or referee attention.
var modificationRiskWeights = map[string]float64{
	"turbo_kit":        25,
	"supercharger":     25,
	"engine_swap":      35,
	"exhaust":          10,
	"intake":           8,
	"suspension":       12,
	"coilovers":        12,
	"wheels_tires":     5,
	"widebody_kit":     18,
	"roll_cage":        15,
	"ecu_tune":         20,
	"nitrous":          30,
	"catalytic_delete": 40,
	"lighting":         6,
	"interior":         3,
}

// stateRiskMultipliers scales the raw score by enforcement strictness
var stateRiskMultipliers = map[string]float64{
	"CA": 1.4,
	"NY": 1.25,
	"NJ": 1.2,
	"WA": 1.15,
	"CO": 1.1,
	"TX": 0.9,
	"FL": 0.9,
	"MT": 0.8,
}

// Risk bucket thresholds on the multiplied score
const (
	riskYellowThreshold = 30
	riskRedThreshold    = 60
)

// Flat adjustments for constrained builds. A rushed timeline leaves no room
// for referee rework; a tight budget on a multi-mod build usually means
// uncertified parts.
const (
	tightTimelineBand    = "under_1_month"
	tightBudgetBand      = "under_5k"
	tightTimelinePenalty = 10
	tightBudgetPenalty   = 10
	tightBudgetModCount  = 2
)

var nextStepsByLevel = map[models.RiskLevel][]string{
	models.RiskLevelGreen: {
		"Keep receipts and part certifications with the vehicle",
		"No referee inspection expected; register normally",
	},
	models.RiskLevelYellow: {
		"Verify each part carries a state exemption number where required",
		"Budget for a smog/referee inspection before registration",
		"Consider a pre-purchase compliance consultation",
	},
	models.RiskLevelRed: {
		"Book a compliance shop consultation before shipping the vehicle",
		"Expect referee inspection and possible component replacement",
		"Obtain engineering certification for structural modifications",
	},
}

// CheckBuild scores a modification list against a target state and returns
// the BuildReady risk bucket with suggested next steps.
func (s *ComplianceService) CheckBuild(req *models.ComplianceCheckRequest) (*models.ComplianceCheckResponse, error) {
	if len(req.Modifications) == 0 {
		return nil, fmt.Errorf("at least one modification is required")
	}

	var raw float64
	for _, mod := range req.Modifications {
		key := strings.ToLower(strings.TrimSpace(mod))
		if weight, ok := modificationRiskWeights[key]; ok {
			raw += weight
		} else {
			// Unknown modifications carry a conservative default weight
			raw += 10
		}
	}

	multiplier := 1.0
	if m, ok := stateRiskMultipliers[strings.ToUpper(strings.TrimSpace(req.TargetState))]; ok {
		multiplier = m
	}

	adjusted := raw * multiplier
	if strings.EqualFold(strings.TrimSpace(req.Timeline), tightTimelineBand) {
		adjusted += tightTimelinePenalty
	}
	if strings.EqualFold(strings.TrimSpace(req.Budget), tightBudgetBand) && len(req.Modifications) > tightBudgetModCount {
		adjusted += tightBudgetPenalty
	}
	score := round2(adjusted)

	level := models.RiskLevelGreen
	switch {
	case score >= riskRedThreshold:
		level = models.RiskLevelRed
	case score >= riskYellowThreshold:
		level = models.RiskLevelYellow
	}

	steps := make([]string, len(nextStepsByLevel[level]))
	copy(steps, nextStepsByLevel[level])

	return &models.ComplianceCheckResponse{
		RiskScore:       score,
		RiskLevel:       level,
		StateMultiplier: multiplier,
		NextSteps:       steps,
	}, nil
}

// ListRules returns compliance rules filtered by country and optional region
func (s *ComplianceService) ListRules(ctx context.Context, country, region string) ([]models.ComplianceRule, error) {
	query := s.db.WithContext(ctx).Model(&models.ComplianceRule{}).Order("country, rule_type")
	if country != "" {
		query = query.Where("country = ?", strings.ToUpper(country))
	}
	if region != "" {
		query = query.Where("region = ?", strings.ToUpper(region))
	}

	var rules []models.ComplianceRule
	if err := query.Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to list compliance rules: %w", err)
	}
	return rules, nil
}

// GetRule loads one compliance rule by ID
func (s *ComplianceService) GetRule(ctx context.Context, ruleID string) (*models.ComplianceRule, error) {
	var rule models.ComplianceRule
	if err := s.db.WithContext(ctx).First(&rule, "rule_id = ?", ruleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, fmt.Errorf("failed to load compliance rule: %w", err)
	}
	return &rule, nil
}

// ListDutyRates returns tariff lines filtered by country
func (s *ComplianceService) ListDutyRates(ctx context.Context, country string) ([]models.DutyRate, error) {
	query := s.db.WithContext(ctx).Model(&models.DutyRate{}).Order("country, tariff_code")
	if country != "" {
		query = query.Where("country = ?", strings.ToUpper(country))
	}

	var rates []models.DutyRate
	if err := query.Find(&rates).Error; err != nil {
		return nil, fmt.Errorf("failed to list duty rates: %w", err)
	}
	return rates, nil
}
