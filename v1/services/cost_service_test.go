package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/raven2t2/importiq-backend/v1/models"
)

func findLineItem(t *testing.T, items []models.CostLineItem, label string) *models.CostLineItem {
	t.Helper()
	for i := range items {
		if items[i].Label == label {
			return &items[i]
		}
	}
	return nil
}

func TestCalculateUSPassengerCar(t *testing.T) {
	service := NewCostService()

	resp, err := service.Calculate(&models.CalculateRequest{
		VehiclePrice:       20000,
		VehicleYear:        2020,
		OriginCountry:      "JP",
		DestinationCountry: "US",
		Region:             "TX",
		VehicleCategory:    models.VehicleCategoryPassengerCar,
	})

	assert.NoError(t, err)
	assert.Equal(t, "USD", resp.Currency)
	assert.False(t, resp.ExemptUnderAge)

	duty := findLineItem(t, resp.LineItems, "Customs duty (2.50%)")
	assert.NotNil(t, duty)
	assert.Equal(t, 500.0, duty.Amount)

	epa := findLineItem(t, resp.LineItems, "EPA processing fee")
	assert.NotNil(t, epa)
	assert.Equal(t, 485.0, epa.Amount)

	bond := findLineItem(t, resp.LineItems, "DOT conformance bond")
	assert.NotNil(t, bond)
	assert.Equal(t, 300.0, bond.Amount)

	mpf := findLineItem(t, resp.LineItems, "Merchandise processing fee")
	assert.NotNil(t, mpf)
	assert.Equal(t, 69.28, mpf.Amount)
}

func TestCalculateUSTruckChickenTax(t *testing.T) {
	service := NewCostService()

	resp, err := service.Calculate(&models.CalculateRequest{
		VehiclePrice:       10000,
		VehicleYear:        2018,
		OriginCountry:      "JP",
		DestinationCountry: "US",
		VehicleCategory:    models.VehicleCategoryTruck,
	})

	assert.NoError(t, err)
	duty := findLineItem(t, resp.LineItems, "Customs duty (25.00%)")
	assert.NotNil(t, duty)
	assert.Equal(t, 2500.0, duty.Amount)
}

func TestCalculateUSMotorcycleSmallEngineDutyFree(t *testing.T) {
	service := NewCostService()

	resp, err := service.Calculate(&models.CalculateRequest{
		VehiclePrice:       6000,
		VehicleYear:        2019,
		OriginCountry:      "JP",
		DestinationCountry: "US",
		VehicleCategory:    models.VehicleCategoryMotorcycle,
		EngineCC:           400,
	})

	assert.NoError(t, err)
	duty := findLineItem(t, resp.LineItems, "Customs duty (0.00%)")
	assert.NotNil(t, duty)
	assert.Equal(t, 0.0, duty.Amount)
}

func TestCalculateUSTwentyFiveYearRule(t *testing.T) {
	service := NewCostService()
	oldYear := time.Now().Year() - 30

	resp, err := service.Calculate(&models.CalculateRequest{
		VehiclePrice:       15000,
		VehicleYear:        oldYear,
		OriginCountry:      "JP",
		DestinationCountry: "US",
		VehicleCategory:    models.VehicleCategoryPassengerCar,
	})

	assert.NoError(t, err)
	assert.True(t, resp.ExemptUnderAge)
	assert.Nil(t, findLineItem(t, resp.LineItems, "EPA processing fee"))
	assert.Nil(t, findLineItem(t, resp.LineItems, "DOT conformance bond"))
}

func TestCalculateCanadaFifteenYearRule(t *testing.T) {
	service := NewCostService()
	oldYear := time.Now().Year() - 16

	resp, err := service.Calculate(&models.CalculateRequest{
		VehiclePrice:       12000,
		VehicleYear:        oldYear,
		OriginCountry:      "JP",
		DestinationCountry: "CA",
		Region:             "BC",
	})

	assert.NoError(t, err)
	assert.Equal(t, "CAD", resp.Currency)
	assert.True(t, resp.ExemptUnderAge)
	assert.Nil(t, findLineItem(t, resp.LineItems, "RIV program fee"))
	assert.NotNil(t, findLineItem(t, resp.LineItems, "GST (5.0%)"))
}

func TestCalculateCanadaUSOriginDutyFree(t *testing.T) {
	service := NewCostService()

	resp, err := service.Calculate(&models.CalculateRequest{
		VehiclePrice:       20000,
		VehicleYear:        2022,
		OriginCountry:      "US",
		DestinationCountry: "CA",
		Region:             "ON",
	})

	assert.NoError(t, err)
	duty := findLineItem(t, resp.LineItems, "Customs duty (0.00%)")
	assert.NotNil(t, duty)
	assert.Equal(t, 0.0, duty.Amount)
	assert.NotNil(t, findLineItem(t, resp.LineItems, "RIV program fee"))
}

func TestCalculateAustraliaLuxuryCarTax(t *testing.T) {
	service := NewCostService()

	resp, err := service.Calculate(&models.CalculateRequest{
		VehiclePrice:       120000,
		VehicleYear:        2021,
		OriginCountry:      "JP",
		DestinationCountry: "AU",
	})

	assert.NoError(t, err)
	assert.Equal(t, "AUD", resp.Currency)
	assert.NotNil(t, findLineItem(t, resp.LineItems, "Luxury car tax"))
	assert.NotNil(t, findLineItem(t, resp.LineItems, "GST (10%)"))
}

func TestCalculateAustraliaBelowLCTThreshold(t *testing.T) {
	service := NewCostService()

	resp, err := service.Calculate(&models.CalculateRequest{
		VehiclePrice:       30000,
		VehicleYear:        2021,
		OriginCountry:      "JP",
		DestinationCountry: "AU",
	})

	assert.NoError(t, err)
	assert.Nil(t, findLineItem(t, resp.LineItems, "Luxury car tax"))
}

func TestCalculateUKIncludesVATAndIVA(t *testing.T) {
	service := NewCostService()

	resp, err := service.Calculate(&models.CalculateRequest{
		VehiclePrice:       15000,
		VehicleYear:        2020,
		OriginCountry:      "JP",
		DestinationCountry: "UK",
	})

	assert.NoError(t, err)
	assert.Equal(t, "GBP", resp.Currency)

	iva := findLineItem(t, resp.LineItems, "IVA test fee")
	assert.NotNil(t, iva)
	assert.Equal(t, 199.0, iva.Amount)

	// VAT on price + 10% duty + JP-UK roro shipping
	vat := findLineItem(t, resp.LineItems, "VAT (20%)")
	assert.NotNil(t, vat)
	assert.Equal(t, (15000.0+1500.0+1600.0)*0.20, vat.Amount)
}

func TestCalculateTotalSumsLineItemsAndPrice(t *testing.T) {
	service := NewCostService()

	resp, err := service.Calculate(&models.CalculateRequest{
		VehiclePrice:       20000,
		VehicleYear:        2020,
		OriginCountry:      "JP",
		DestinationCountry: "US",
		Region:             "OR",
	})

	assert.NoError(t, err)
	var sum float64
	for _, item := range resp.LineItems {
		sum += item.Amount
	}
	assert.InDelta(t, resp.VehiclePrice+sum, resp.TotalLandedCost, 0.01)
}

func TestCalculateRejectsInvalidInput(t *testing.T) {
	service := NewCostService()

	_, err := service.Calculate(&models.CalculateRequest{
		VehiclePrice:       0,
		DestinationCountry: "US",
	})
	assert.Error(t, err)

	_, err = service.Calculate(&models.CalculateRequest{
		VehiclePrice:       10000,
		DestinationCountry: "XX",
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported destination country")
}
