package ingest

import (
	"fmt"
	"strings"
	"time"
)

// Record is one raw feed record prior to validation.
type Record map[string]interface{}

// ValidationResult is the outcome of validating a single record.
type ValidationResult struct {
	Valid        bool     `json:"valid"`
	Errors       []string `json:"errors,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
	QualityScore float64  `json:"qualityScore"`
	Validated    Record   `json:"-"`
}

// ValidationSummary aggregates results for a batch of records.
type ValidationSummary struct {
	TotalRecords        int     `json:"totalRecords"`
	ValidRecords        int     `json:"validRecords"`
	InvalidRecords      int     `json:"invalidRecords"`
	TotalErrors         int     `json:"totalErrors"`
	TotalWarnings       int     `json:"totalWarnings"`
	AverageQualityScore float64 `json:"averageQualityScore"`
	QualityGrade        string  `json:"qualityGrade"`
}

var knownMakes = map[string]string{
	"toyota":     "Toyota",
	"honda":      "Honda",
	"nissan":     "Nissan",
	"subaru":     "Subaru",
	"mitsubishi": "Mitsubishi",
	"mazda":      "Mazda",
	"lexus":      "Lexus",
	"acura":      "Acura",
	"infiniti":   "Infiniti",
	"bmw":        "BMW",
	"mercedes":   "Mercedes-Benz",
	"audi":       "Audi",
	"volkswagen": "Volkswagen",
	"vw":         "Volkswagen",
	"porsche":    "Porsche",
	"ford":       "Ford",
	"chevrolet":  "Chevrolet",
	"chevy":      "Chevrolet",
	"dodge":      "Dodge",
	"suzuki":     "Suzuki",
	"daihatsu":   "Daihatsu",
	"isuzu":      "Isuzu",
}

var knownCountries = map[string]string{
	"us":             "US",
	"usa":            "US",
	"united states":  "US",
	"ca":             "CA",
	"canada":         "CA",
	"uk":             "UK",
	"united kingdom": "UK",
	"au":             "AU",
	"australia":      "AU",
	"eu":             "EU",
	"european union": "EU",
	"jp":             "JP",
	"japan":          "JP",
}

// Validator checks raw feed records before they are loaded into the database.
// Every record gets a 0..1 quality score; only records without errors are
// considered valid.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateVehicle validates one auction listing record.
func (v *Validator) ValidateVehicle(record Record) ValidationResult {
	var errors, warnings []string
	validated := cloneRecord(record)

	for _, field := range []string{"make", "model"} {
		if stringField(record, field) == "" {
			errors = append(errors, fmt.Sprintf("missing required field: %s", field))
		}
	}

	if make := stringField(record, "make"); make != "" {
		if corrected, ok := knownMakes[strings.ToLower(make)]; ok {
			if corrected != make {
				warnings = append(warnings, fmt.Sprintf("make %q corrected to %q", make, corrected))
				validated["make"] = corrected
			}
		} else {
			warnings = append(warnings, fmt.Sprintf("unknown make: %s", make))
		}
	}

	if model := stringField(record, "model"); strings.EqualFold(model, "unknown") {
		warnings = append(warnings, "model information is missing or unknown")
	}

	if raw, ok := record["year"]; ok && raw != nil {
		year, ok := intField(record, "year")
		currentYear := time.Now().Year()
		switch {
		case !ok:
			errors = append(errors, fmt.Sprintf("invalid year format: %v", raw))
		case year < 1900 || year > currentYear+2:
			errors = append(errors, fmt.Sprintf("invalid year: %d", year))
		case year < 1980:
			warnings = append(warnings, fmt.Sprintf("very old vehicle year: %d", year))
		}
	}

	if vin := stringField(record, "vin"); vin != "" {
		normalized := strings.ToUpper(strings.TrimSpace(vin))
		if !ValidVIN(normalized) {
			errors = append(errors, fmt.Sprintf("invalid VIN format: %s", normalized))
		} else {
			validated["vin"] = normalized
		}
	}

	if raw, ok := record["price"]; ok && raw != nil {
		price, ok := floatField(record, "price")
		switch {
		case !ok:
			errors = append(errors, fmt.Sprintf("invalid price format: %v", raw))
		case price < 0:
			errors = append(errors, "price cannot be negative")
		case price > 10000000:
			warnings = append(warnings, fmt.Sprintf("unusually high price: %.2f", price))
		}
	}

	return buildResult(record, validated, errors, warnings)
}

// ValidateDutyRate validates one tariff reference record.
func (v *Validator) ValidateDutyRate(record Record) ValidationResult {
	var errors, warnings []string
	validated := cloneRecord(record)

	if stringField(record, "country") == "" {
		errors = append(errors, "missing required field: country")
	}
	if _, ok := record["duty_rate_percent"]; !ok {
		errors = append(errors, "missing required field: duty_rate_percent")
	}

	if country := stringField(record, "country"); country != "" {
		if corrected, ok := knownCountries[strings.ToLower(country)]; ok {
			if corrected != country {
				warnings = append(warnings, fmt.Sprintf("country %q corrected to %q", country, corrected))
				validated["country"] = corrected
			}
		} else {
			warnings = append(warnings, fmt.Sprintf("unknown country: %s", country))
		}
	}

	if raw, ok := record["duty_rate_percent"]; ok && raw != nil {
		pct, ok := floatField(record, "duty_rate_percent")
		switch {
		case !ok:
			errors = append(errors, fmt.Sprintf("invalid duty rate format: %v", raw))
		case pct < 0:
			errors = append(errors, "duty rate cannot be negative")
		case pct > 100:
			warnings = append(warnings, fmt.Sprintf("unusually high duty rate: %.1f%%", pct))
		}
	}

	if category := stringField(record, "vehicle_category"); category != "" {
		switch category {
		case "passenger_car", "truck", "motorcycle", "special_vehicle", "unknown":
		default:
			warnings = append(warnings, fmt.Sprintf("unknown vehicle category: %s", category))
		}
	}

	return buildResult(record, validated, errors, warnings)
}

// ValidateEligibility validates one import-eligibility record.
func (v *Validator) ValidateEligibility(record Record) ValidationResult {
	var errors, warnings []string
	validated := cloneRecord(record)

	for _, field := range []string{"country_destination", "regulatory_authority"} {
		if stringField(record, field) == "" {
			errors = append(errors, fmt.Sprintf("missing required field: %s", field))
		}
	}

	if country := stringField(record, "country_destination"); country != "" {
		if corrected, ok := knownCountries[strings.ToLower(country)]; ok {
			if corrected != country {
				warnings = append(warnings, fmt.Sprintf("country %q corrected to %q", country, corrected))
				validated["country_destination"] = corrected
			}
		} else {
			warnings = append(warnings, fmt.Sprintf("unknown destination country: %s", country))
		}
	}

	if status := stringField(record, "eligibility_status"); status != "" {
		switch status {
		case "eligible", "not_eligible", "conditional", "requires_assessment", "unknown":
		default:
			warnings = append(warnings, fmt.Sprintf("unknown eligibility status: %s", status))
		}
	}

	return buildResult(record, validated, errors, warnings)
}

// ValidateBatch validates a slice of records of the given type
// ("vehicle", "duty_rate", or "eligibility").
func (v *Validator) ValidateBatch(records []Record, recordType string) ([]ValidationResult, error) {
	var validate func(Record) ValidationResult
	switch recordType {
	case "vehicle":
		validate = v.ValidateVehicle
	case "duty_rate":
		validate = v.ValidateDutyRate
	case "eligibility":
		validate = v.ValidateEligibility
	default:
		return nil, fmt.Errorf("unknown record type: %s", recordType)
	}

	results := make([]ValidationResult, 0, len(records))
	for _, record := range records {
		results = append(results, validate(record))
	}
	return results, nil
}

// Summarize aggregates a batch of results into a validation summary with a
// letter grade for the average quality score.
func (v *Validator) Summarize(results []ValidationResult) ValidationSummary {
	summary := ValidationSummary{TotalRecords: len(results)}
	var totalScore float64
	for _, r := range results {
		if r.Valid {
			summary.ValidRecords++
		}
		summary.TotalErrors += len(r.Errors)
		summary.TotalWarnings += len(r.Warnings)
		totalScore += r.QualityScore
	}
	summary.InvalidRecords = summary.TotalRecords - summary.ValidRecords
	if summary.TotalRecords > 0 {
		summary.AverageQualityScore = totalScore / float64(summary.TotalRecords)
	}
	summary.QualityGrade = QualityGrade(summary.AverageQualityScore)
	return summary
}

// ValidVIN reports whether vin is a plausible 17-character VIN.
// VINs never contain I, O, or Q.
func ValidVIN(vin string) bool {
	if len(vin) != 17 {
		return false
	}
	for _, r := range vin {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'A' && r <= 'Z':
			if r == 'I' || r == 'O' || r == 'Q' {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// QualityGrade converts a 0..1 quality score to a letter grade.
func QualityGrade(score float64) string {
	switch {
	case score >= 0.9:
		return "A"
	case score >= 0.8:
		return "B"
	case score >= 0.7:
		return "C"
	case score >= 0.6:
		return "D"
	default:
		return "F"
	}
}

// qualityScore starts at 1.0, subtracts 0.1 per warning, and scales the
// remainder by field completeness. Records with errors score 0.
func qualityScore(record Record, errors, warnings []string) float64 {
	if len(errors) > 0 {
		return 0
	}

	score := 1.0 - float64(len(warnings))*0.1

	total := len(record)
	if total > 0 {
		empty := 0
		for _, v := range record {
			if isEmptyValue(v) {
				empty++
			}
		}
		score *= float64(total-empty) / float64(total)
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func buildResult(record, validated Record, errors, warnings []string) ValidationResult {
	return ValidationResult{
		Valid:        len(errors) == 0,
		Errors:       errors,
		Warnings:     warnings,
		QualityScore: qualityScore(record, errors, warnings),
		Validated:    validated,
	}
}

func cloneRecord(record Record) Record {
	out := make(Record, len(record))
	for k, v := range record {
		out[k] = v
	}
	return out
}

func isEmptyValue(v interface{}) bool {
	switch value := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(value) == ""
	case float64:
		return value == 0
	case int:
		return value == 0
	case bool:
		return false
	default:
		return false
	}
}

func stringField(record Record, field string) string {
	if v, ok := record[field].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func intField(record Record, field string) (int, bool) {
	switch v := record[field].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func floatField(record Record, field string) (float64, bool) {
	switch v := record[field].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
