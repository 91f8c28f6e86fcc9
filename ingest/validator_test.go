package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateVehicle(t *testing.T) {
	validator := NewValidator()

	result := validator.ValidateVehicle(Record{
		"make":  "Nissan",
		"model": "Skyline GT-R",
		"year":  1994,
		"price": 42000.0,
		"vin":   "BNR32305366000000",
	})

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, 1.0, result.QualityScore)
}

func TestValidateVehicleMissingRequiredFields(t *testing.T) {
	validator := NewValidator()

	result := validator.ValidateVehicle(Record{"year": 1994})

	assert.False(t, result.Valid)
	assert.Len(t, result.Errors, 2)
	assert.Equal(t, 0.0, result.QualityScore, "records with errors score zero")
}

func TestValidateVehicleCorrectsKnownMake(t *testing.T) {
	validator := NewValidator()

	result := validator.ValidateVehicle(Record{
		"make":  "chevy",
		"model": "Corvette",
	})

	assert.True(t, result.Valid)
	assert.Equal(t, "Chevrolet", result.Validated["make"])
	assert.Len(t, result.Warnings, 1)
}

func TestValidateVehicleUnknownMakeWarns(t *testing.T) {
	validator := NewValidator()

	result := validator.ValidateVehicle(Record{
		"make":  "Koenigsegg",
		"model": "Agera",
	})

	assert.True(t, result.Valid)
	assert.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "unknown make")
}

func TestValidateVehicleYearBounds(t *testing.T) {
	validator := NewValidator()

	result := validator.ValidateVehicle(Record{"make": "Toyota", "model": "2000GT", "year": 1899})
	assert.False(t, result.Valid)

	result = validator.ValidateVehicle(Record{"make": "Toyota", "model": "2000GT", "year": 1967})
	assert.True(t, result.Valid)
	assert.Contains(t, result.Warnings[0], "very old vehicle year")

	result = validator.ValidateVehicle(Record{"make": "Toyota", "model": "Supra", "year": 3000})
	assert.False(t, result.Valid)
}

func TestValidateVehicleRejectsBadVIN(t *testing.T) {
	validator := NewValidator()

	result := validator.ValidateVehicle(Record{
		"make":  "Honda",
		"model": "NSX",
		"vin":   "SHORT",
	})

	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "invalid VIN format")
}

func TestValidateVehicleNegativePrice(t *testing.T) {
	validator := NewValidator()

	result := validator.ValidateVehicle(Record{
		"make":  "Honda",
		"model": "NSX",
		"price": -100.0,
	})

	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "price cannot be negative")
}

func TestValidateDutyRate(t *testing.T) {
	validator := NewValidator()

	result := validator.ValidateDutyRate(Record{
		"country":           "US",
		"duty_rate_percent": 2.5,
		"vehicle_category":  "passenger_car",
	})

	assert.True(t, result.Valid)
	assert.Empty(t, result.Warnings)
}

func TestValidateDutyRateNormalizesCountry(t *testing.T) {
	validator := NewValidator()

	result := validator.ValidateDutyRate(Record{
		"country":           "United States",
		"duty_rate_percent": 2.5,
	})

	assert.True(t, result.Valid)
	assert.Equal(t, "US", result.Validated["country"])
}

func TestValidateDutyRateBounds(t *testing.T) {
	validator := NewValidator()

	result := validator.ValidateDutyRate(Record{"country": "US", "duty_rate_percent": -1.0})
	assert.False(t, result.Valid)

	result = validator.ValidateDutyRate(Record{"country": "US", "duty_rate_percent": 150.0})
	assert.True(t, result.Valid)
	assert.Contains(t, result.Warnings[0], "unusually high duty rate")
}

func TestValidateEligibility(t *testing.T) {
	validator := NewValidator()

	result := validator.ValidateEligibility(Record{
		"country_destination":  "US",
		"regulatory_authority": "NHTSA",
		"eligibility_status":   "eligible",
	})
	assert.True(t, result.Valid)

	result = validator.ValidateEligibility(Record{})
	assert.False(t, result.Valid)
	assert.Len(t, result.Errors, 2)
}

func TestQualityScoreWarningPenalty(t *testing.T) {
	validator := NewValidator()

	// One warning (unknown make), all fields populated: 1.0 - 0.1 = 0.9
	result := validator.ValidateVehicle(Record{
		"make":  "Koenigsegg",
		"model": "Agera",
	})
	assert.InDelta(t, 0.9, result.QualityScore, 0.0001)
}

func TestQualityScoreCompletenessPenalty(t *testing.T) {
	validator := NewValidator()

	// No warnings but two of four fields empty: 1.0 * 2/4 = 0.5
	result := validator.ValidateVehicle(Record{
		"make":     "Toyota",
		"model":    "Supra",
		"location": "",
		"source":   "",
	})
	assert.True(t, result.Valid)
	assert.InDelta(t, 0.5, result.QualityScore, 0.0001)
}

func TestValidVIN(t *testing.T) {
	assert.True(t, ValidVIN("JT2MA70J8K0123456"))
	assert.False(t, ValidVIN("JT2MA70J8K012345"), "too short")
	assert.False(t, ValidVIN("JT2MA70I8K0123456"), "contains I")
	assert.False(t, ValidVIN("JT2MA70O8K0123456"), "contains O")
	assert.False(t, ValidVIN("JT2MA70Q8K0123456"), "contains Q")
	assert.False(t, ValidVIN("JT2MA70J8K012345!"), "invalid character")
}

func TestQualityGrade(t *testing.T) {
	tests := []struct {
		score float64
		grade string
	}{
		{0.95, "A"},
		{0.9, "A"},
		{0.85, "B"},
		{0.75, "C"},
		{0.65, "D"},
		{0.5, "F"},
		{0.0, "F"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.grade, QualityGrade(tt.score), "score %.2f", tt.score)
	}
}

func TestValidateBatchAndSummarize(t *testing.T) {
	validator := NewValidator()

	records := []Record{
		{"make": "Toyota", "model": "Supra", "year": 1994},
		{"make": "Nissan", "model": "Silvia", "year": 1995},
		{"year": 1990}, // missing make and model
	}

	results, err := validator.ValidateBatch(records, "vehicle")
	assert.NoError(t, err)
	assert.Len(t, results, 3)

	summary := validator.Summarize(results)
	assert.Equal(t, 3, summary.TotalRecords)
	assert.Equal(t, 2, summary.ValidRecords)
	assert.Equal(t, 1, summary.InvalidRecords)
	assert.Equal(t, 2, summary.TotalErrors)

	// Average of 1.0, 1.0, 0.0
	assert.InDelta(t, 2.0/3.0, summary.AverageQualityScore, 0.0001)
	assert.Equal(t, "D", summary.QualityGrade)
}

func TestValidateBatchUnknownType(t *testing.T) {
	validator := NewValidator()

	_, err := validator.ValidateBatch([]Record{{}}, "timeline")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown record type")
}
