package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/raven2t2/importiq-backend/v1/models"
)

// CostService implements the landed-cost calculator. All rates are static
// reference constants taken from published tariff schedules; the calculator
// is a pure function over them.
type CostService struct{}

// NewCostService creates a new cost service
func NewCostService() *CostService {
	return &CostService{}
}

// Duty rates per destination, keyed by vehicle category. Sources: US HTS
// chapter 87, CBSA tariff, UK Trade Tariff, ABF working tariff, EU TARIC.
var dutyRatePercent = map[string]map[models.VehicleCategory]float64{
	"US": {
		models.VehicleCategoryPassengerCar:   2.5,
		models.VehicleCategoryTruck:          25.0, // chicken tax
		models.VehicleCategoryMotorcycle:     2.4,
		models.VehicleCategorySpecialVehicle: 2.5,
	},
	"CA": {
		models.VehicleCategoryPassengerCar:   6.1,
		models.VehicleCategoryTruck:          6.1,
		models.VehicleCategoryMotorcycle:     6.1,
		models.VehicleCategorySpecialVehicle: 6.1,
	},
	"UK": {
		models.VehicleCategoryPassengerCar:   10.0,
		models.VehicleCategoryTruck:          10.0,
		models.VehicleCategoryMotorcycle:     6.0,
		models.VehicleCategorySpecialVehicle: 10.0,
	},
	"AU": {
		models.VehicleCategoryPassengerCar:   5.0,
		models.VehicleCategoryTruck:          5.0,
		models.VehicleCategoryMotorcycle:     5.0,
		models.VehicleCategorySpecialVehicle: 5.0,
	},
	"EU": {
		models.VehicleCategoryPassengerCar:   10.0,
		models.VehicleCategoryTruck:          10.0,
		models.VehicleCategoryMotorcycle:     6.0,
		models.VehicleCategorySpecialVehicle: 10.0,
	},
}

var destinationCurrency = map[string]string{
	"US": "USD",
	"CA": "CAD",
	"UK": "GBP",
	"AU": "AUD",
	"EU": "EUR",
}

// Age-exemption thresholds in years: vehicles older than the threshold skip
// federal compliance fees (US 25-year rule, Canada 15-year rule).
var ageExemptionYears = map[string]int{
	"US": 25,
	"CA": 15,
}

// US fixed fees
const (
	usEPAProcessingFee   = 485.0
	usDOTBondRate        = 0.015
	usDOTBondMinimum     = 100.0
	usHarborMaintPct     = 0.125  // percent of entered value
	usMerchProcessingPct = 0.3464 // percent of entered value
	usMerchProcessingMin = 31.67
	usMerchProcessingMax = 614.35
)

// Canada fixed fees
const (
	caGSTPercent       = 5.0
	caRIVFee           = 325.0
	caACExciseFee      = 100.0
	caUSMCADutyPercent = 0.0 // US-origin vehicles enter duty free
)

// UK / AU / EU fees
const (
	ukVATPercent      = 20.0
	ukIVATestFee      = 199.0
	auGSTPercent      = 10.0
	auLCTThreshold    = 89332.0
	auLCTRatePercent  = 33.0
	euVATPercent      = 20.0
	euTypeApprovalFee = 450.0
)

// usStateFees carries per-state registration/title add-ons and use-tax rates
type stateFeeRow struct {
	Registration float64
	TitleFee     float64
	UseTaxRate   float64 // percent
}

var usStateFees = map[string]stateFeeRow{
	"CA": {Registration: 585, TitleFee: 23, UseTaxRate: 7.25},
	"NY": {Registration: 320, TitleFee: 50, UseTaxRate: 4.0},
	"TX": {Registration: 232, TitleFee: 33, UseTaxRate: 6.25},
	"FL": {Registration: 400, TitleFee: 78, UseTaxRate: 6.0},
	"WA": {Registration: 275, TitleFee: 26, UseTaxRate: 6.5},
	"OR": {Registration: 268, TitleFee: 98, UseTaxRate: 0},
	"MT": {Registration: 217, TitleFee: 10, UseTaxRate: 0},
}

var usStateFeeDefault = stateFeeRow{Registration: 300, TitleFee: 40, UseTaxRate: 5.0}

// caProvincialTax is the provincial sales tax rate applied on import
var caProvincialTax = map[string]float64{
	"BC": 7.0,
	"ON": 8.0,
	"QC": 9.975,
	"AB": 0,
	"MB": 7.0,
	"SK": 6.0,
}

const caProvincialTaxDefault = 7.0

// shippingRoute estimates ocean freight by origin and destination
type shippingRoute struct {
	RoRo      float64
	Container float64
}

var shippingRates = map[string]shippingRoute{
	"JP-US": {RoRo: 1200, Container: 1900},
	"JP-CA": {RoRo: 1350, Container: 2000},
	"JP-AU": {RoRo: 1100, Container: 1700},
	"JP-UK": {RoRo: 1600, Container: 2400},
	"JP-EU": {RoRo: 1650, Container: 2450},
	"DE-US": {RoRo: 1100, Container: 1750},
	"DE-CA": {RoRo: 1200, Container: 1850},
	"UK-US": {RoRo: 1050, Container: 1700},
	"US-CA": {RoRo: 450, Container: 800},
	"US-AU": {RoRo: 1900, Container: 2700},
}

var shippingRateDefault = shippingRoute{RoRo: 1500, Container: 2200}

// Calculate produces an itemized landed-cost breakdown
func (s *CostService) Calculate(req *models.CalculateRequest) (*models.CostBreakdownResponse, error) {
	if req.VehiclePrice <= 0 {
		return nil, fmt.Errorf("vehiclePrice must be positive")
	}

	dest := normalizeCountry(req.DestinationCountry)
	rates, ok := dutyRatePercent[dest]
	if !ok {
		return nil, fmt.Errorf("unsupported destination country: %s", req.DestinationCountry)
	}

	category := req.VehicleCategory
	if category == "" {
		category = models.VehicleCategoryPassengerCar
	}
	dutyPct, ok := rates[category]
	if !ok {
		return nil, fmt.Errorf("unsupported vehicle category: %s", category)
	}

	resp := &models.CostBreakdownResponse{
		Currency:     destinationCurrency[dest],
		VehiclePrice: req.VehiclePrice,
	}

	// Age-exemption check (25-year rule in the US, 15-year in Canada)
	vehicleAge := time.Now().Year() - req.VehicleYear
	if threshold, has := ageExemptionYears[dest]; has && req.VehicleYear > 0 && vehicleAge >= threshold {
		resp.ExemptUnderAge = true
		resp.Notes = append(resp.Notes,
			fmt.Sprintf("Vehicle is %d years old and exempt from federal compliance under the %d-year rule", vehicleAge, threshold))
	}

	shipping := shippingEstimate(req.OriginCountry, dest, req.ShippingMethod)
	resp.LineItems = append(resp.LineItems, models.CostLineItem{Label: "Ocean shipping", Amount: shipping})

	// US motorcycles under 700cc enter duty free
	if dest == "US" && category == models.VehicleCategoryMotorcycle && req.EngineCC > 0 && req.EngineCC <= 700 {
		dutyPct = 0
		resp.Notes = append(resp.Notes, "Motorcycles up to 700cc enter duty free")
	}
	// Canada waives duty on US-origin vehicles under USMCA
	if dest == "CA" && normalizeCountry(req.OriginCountry) == "US" {
		dutyPct = caUSMCADutyPercent
		resp.Notes = append(resp.Notes, "US-origin vehicle enters duty free under USMCA")
	}

	duty := round2(req.VehiclePrice * dutyPct / 100)
	resp.LineItems = append(resp.LineItems, models.CostLineItem{
		Label:  fmt.Sprintf("Customs duty (%.2f%%)", dutyPct),
		Amount: duty,
	})

	switch dest {
	case "US":
		s.applyUSFees(req, resp, duty)
	case "CA":
		s.applyCanadaFees(req, resp, duty, shipping)
	case "UK":
		s.applyUKFees(req, resp, duty, shipping)
	case "AU":
		s.applyAustraliaFees(req, resp, duty, shipping)
	case "EU":
		s.applyEUFees(req, resp, duty, shipping)
	}

	var total float64
	for _, item := range resp.LineItems {
		total += item.Amount
	}
	resp.TotalLandedCost = round2(total + req.VehiclePrice)

	return resp, nil
}

func (s *CostService) applyUSFees(req *models.CalculateRequest, resp *models.CostBreakdownResponse, duty float64) {
	if !resp.ExemptUnderAge {
		resp.LineItems = append(resp.LineItems, models.CostLineItem{Label: "EPA processing fee", Amount: usEPAProcessingFee})

		bond := round2(req.VehiclePrice * usDOTBondRate)
		if bond < usDOTBondMinimum {
			bond = usDOTBondMinimum
		}
		resp.LineItems = append(resp.LineItems, models.CostLineItem{Label: "DOT conformance bond", Amount: bond})
	}

	harbor := round2(req.VehiclePrice * usHarborMaintPct / 100)
	resp.LineItems = append(resp.LineItems, models.CostLineItem{Label: "Harbor maintenance fee", Amount: harbor})

	mpf := round2(req.VehiclePrice * usMerchProcessingPct / 100)
	if mpf < usMerchProcessingMin {
		mpf = usMerchProcessingMin
	}
	if mpf > usMerchProcessingMax {
		mpf = usMerchProcessingMax
	}
	resp.LineItems = append(resp.LineItems, models.CostLineItem{Label: "Merchandise processing fee", Amount: mpf})

	fees, ok := usStateFees[strings.ToUpper(req.Region)]
	if !ok {
		fees = usStateFeeDefault
	}
	resp.LineItems = append(resp.LineItems,
		models.CostLineItem{Label: "State registration", Amount: fees.Registration},
		models.CostLineItem{Label: "Title fee", Amount: fees.TitleFee},
	)
	if fees.UseTaxRate > 0 {
		resp.LineItems = append(resp.LineItems, models.CostLineItem{
			Label:  fmt.Sprintf("State use tax (%.2f%%)", fees.UseTaxRate),
			Amount: round2(req.VehiclePrice * fees.UseTaxRate / 100),
		})
	}

	if req.EngineCC > 3000 {
		resp.Notes = append(resp.Notes, "Gas guzzler tax may apply to engines over 3000cc")
	}
}

func (s *CostService) applyCanadaFees(req *models.CalculateRequest, resp *models.CostBreakdownResponse, duty, shipping float64) {
	dutyPaidValue := req.VehiclePrice + duty + shipping

	gst := round2(dutyPaidValue * caGSTPercent / 100)
	resp.LineItems = append(resp.LineItems, models.CostLineItem{Label: fmt.Sprintf("GST (%.1f%%)", caGSTPercent), Amount: gst})

	pst, ok := caProvincialTax[strings.ToUpper(req.Region)]
	if !ok {
		pst = caProvincialTaxDefault
	}
	if pst > 0 {
		resp.LineItems = append(resp.LineItems, models.CostLineItem{
			Label:  fmt.Sprintf("Provincial sales tax (%.3g%%)", pst),
			Amount: round2(dutyPaidValue * pst / 100),
		})
	}

	if !resp.ExemptUnderAge {
		resp.LineItems = append(resp.LineItems, models.CostLineItem{Label: "RIV program fee", Amount: caRIVFee})
	}
	resp.LineItems = append(resp.LineItems, models.CostLineItem{Label: "Air conditioning excise", Amount: caACExciseFee})
}

func (s *CostService) applyUKFees(req *models.CalculateRequest, resp *models.CostBreakdownResponse, duty, shipping float64) {
	vat := round2((req.VehiclePrice + duty + shipping) * ukVATPercent / 100)
	resp.LineItems = append(resp.LineItems,
		models.CostLineItem{Label: fmt.Sprintf("VAT (%.0f%%)", ukVATPercent), Amount: vat},
		models.CostLineItem{Label: "IVA test fee", Amount: ukIVATestFee},
	)
}

func (s *CostService) applyAustraliaFees(req *models.CalculateRequest, resp *models.CostBreakdownResponse, duty, shipping float64) {
	taxableValue := req.VehiclePrice + duty + shipping

	gst := round2(taxableValue * auGSTPercent / 100)
	resp.LineItems = append(resp.LineItems, models.CostLineItem{Label: fmt.Sprintf("GST (%.0f%%)", auGSTPercent), Amount: gst})

	lctValue := taxableValue + gst
	if lctValue > auLCTThreshold {
		lct := round2((lctValue - auLCTThreshold) * auLCTRatePercent / 100)
		resp.LineItems = append(resp.LineItems, models.CostLineItem{Label: "Luxury car tax", Amount: lct})
		resp.Notes = append(resp.Notes, fmt.Sprintf("Luxury car tax applies above AUD %.0f", auLCTThreshold))
	}

	resp.Notes = append(resp.Notes, "SEVS/RAWS approval may be required for this model")
}

func (s *CostService) applyEUFees(req *models.CalculateRequest, resp *models.CostBreakdownResponse, duty, shipping float64) {
	vat := round2((req.VehiclePrice + duty + shipping) * euVATPercent / 100)
	resp.LineItems = append(resp.LineItems,
		models.CostLineItem{Label: fmt.Sprintf("VAT (%.0f%%)", euVATPercent), Amount: vat},
		models.CostLineItem{Label: "Type approval / CE inspection", Amount: euTypeApprovalFee},
	)
	resp.Notes = append(resp.Notes, "VAT rates vary by member state; 20% average applied")
}

func shippingEstimate(origin, dest, method string) float64 {
	key := normalizeCountry(origin) + "-" + dest
	route, ok := shippingRates[key]
	if !ok {
		route = shippingRateDefault
	}
	if strings.EqualFold(method, "container") {
		return route.Container
	}
	return route.RoRo
}

func normalizeCountry(country string) string {
	switch strings.ToUpper(strings.TrimSpace(country)) {
	case "US", "USA", "UNITED STATES":
		return "US"
	case "CA", "CANADA":
		return "CA"
	case "UK", "GB", "UNITED KINGDOM":
		return "UK"
	case "AU", "AUSTRALIA":
		return "AU"
	case "EU", "EUROPEAN UNION":
		return "EU"
	case "JP", "JAPAN":
		return "JP"
	case "DE", "GERMANY":
		return "DE"
	default:
		return strings.ToUpper(strings.TrimSpace(country))
	}
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
