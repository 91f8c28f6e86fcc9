package models

// ComplianceRule is static reference data describing one import rule for a
// country/region pair (e.g. US 25-year rule, AU SEVS eligibility, VASS
// certification requirements).
type ComplianceRule struct {
	RuleID         string     `gorm:"primarykey;column:rule_id" json:"ruleId"`
	Country        string     `gorm:"column:country;not null;index" json:"country"`
	Region         *string    `gorm:"column:region;index" json:"region,omitempty"`
	RuleType       string     `gorm:"column:rule_type;not null" json:"ruleType"`
	Requirements   StringList `gorm:"column:requirements" json:"requirements"`
	EstimatedCosts FeeTable   `gorm:"column:estimated_costs" json:"estimatedCosts"`
	Timeline       string     `gorm:"column:timeline" json:"timeline,omitempty"`
	Notes          string     `gorm:"column:notes" json:"notes,omitempty"`
	BaseModel
}

// TableName sets the table name for GORM
func (ComplianceRule) TableName() string {
	return "compliance_rules"
}

// DutyRate is static reference data for one tariff line, sourced from
// government tariff schedules (HTS, CBSA, UK Trade Tariff, ABF, TARIC).
type DutyRate struct {
	RateID          string  `gorm:"primarykey;column:rate_id" json:"rateId"`
	Country         string  `gorm:"column:country;not null;uniqueIndex:idx_country_code" json:"country"`
	TariffCode      string  `gorm:"column:tariff_code;not null;uniqueIndex:idx_country_code" json:"tariffCode"`
	Description     string  `gorm:"column:description" json:"description,omitempty"`
	DutyRatePercent float64 `gorm:"column:duty_rate_percent" json:"dutyRatePercent"`
	VehicleCategory string  `gorm:"column:vehicle_category;index" json:"vehicleCategory"`
	AdditionalFees  string  `gorm:"column:additional_fees" json:"additionalFees,omitempty"`
	Source          string  `gorm:"column:source" json:"source,omitempty"`
	BaseModel
}

// TableName sets the table name for GORM
func (DutyRate) TableName() string {
	return "duty_rates"
}
