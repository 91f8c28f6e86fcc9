package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/raven2t2/importiq-backend/v1/middleware"
	"github.com/raven2t2/importiq-backend/v1/models"
)

// newTestServer wires the handler and session middleware exactly as main does
func newTestServer(t *testing.T) (*httptest.Server, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.VehicleAuction{},
		&models.ComplianceRule{},
		&models.DutyRate{},
		&models.PortInformation{},
		&models.ModShopPartner{},
		&models.ServiceArea{},
		&models.ShopReview{},
		&models.SavedReport{},
		&models.Booking{},
		&models.AffiliatePartner{},
	))

	handler := NewV1Handler(db, []byte("test-secret"), time.Hour)

	apiMux := http.NewServeMux()
	handler.SetupV1Routes(apiMux)

	sessionAuth := middleware.NewSessionAuthMiddleware(handler.AuthService())
	server := httptest.NewServer(middleware.NewCORSMiddleware()(sessionAuth.Authenticate(apiMux)))
	t.Cleanup(server.Close)

	return server, db
}

func doJSON(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	assert.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func registerAndLogin(t *testing.T, server *httptest.Server, email string) string {
	t.Helper()

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/users/register", "", models.RegisterRequest{
		Email:    email,
		Password: "correct-horse",
		FullName: "Test User",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, server.URL+"/api/v1/users/login", "", models.LoginRequest{
		Email:    email,
		Password: "correct-horse",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var login models.LoginResponse
	decodeBody(t, resp, &login)
	assert.NotEmpty(t, login.Token)
	return login.Token
}

func TestRegisterLoginAndCurrentUser(t *testing.T) {
	server, _ := newTestServer(t)
	token := registerAndLogin(t, server, "alice@example.com")

	resp := doJSON(t, http.MethodGet, server.URL+"/api/v1/auth/user", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var user models.UserResponse
	decodeBody(t, resp, &user)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestDuplicateRegistrationRejected(t *testing.T) {
	server, _ := newTestServer(t)
	registerAndLogin(t, server, "alice@example.com")

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/users/register", "", models.RegisterRequest{
		Email:    "alice@example.com",
		Password: "another-pass",
		FullName: "Alice Again",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLoginWrongPasswordReturns401(t *testing.T) {
	server, _ := newTestServer(t)
	registerAndLogin(t, server, "alice@example.com")

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/users/login", "", models.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtectedRouteRequiresSession(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, server.URL+"/api/v1/reports", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	server, _ := newTestServer(t)
	token := registerAndLogin(t, server, "alice@example.com")

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/users/logout", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, server.URL+"/api/v1/auth/user", token, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCalculateEndpoint(t *testing.T) {
	server, _ := newTestServer(t)
	token := registerAndLogin(t, server, "alice@example.com")

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/calculate", token, models.CalculateRequest{
		VehiclePrice:       20000,
		VehicleYear:        2020,
		OriginCountry:      "JP",
		DestinationCountry: "US",
		Region:             "TX",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var breakdown models.CostBreakdownResponse
	decodeBody(t, resp, &breakdown)
	assert.Equal(t, "USD", breakdown.Currency)
	assert.Greater(t, breakdown.TotalLandedCost, 20000.0)
}

func TestCalculateUSForcesDestination(t *testing.T) {
	server, _ := newTestServer(t)
	token := registerAndLogin(t, server, "alice@example.com")

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/calculate-us", token, models.CalculateRequest{
		VehiclePrice:       15000,
		VehicleYear:        2019,
		OriginCountry:      "JP",
		DestinationCountry: "AU", // ignored
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var breakdown models.CostBreakdownResponse
	decodeBody(t, resp, &breakdown)
	assert.Equal(t, "USD", breakdown.Currency)
}

func TestCheckComplianceEndpoint(t *testing.T) {
	server, _ := newTestServer(t)
	token := registerAndLogin(t, server, "alice@example.com")

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/check-compliance", token, models.ComplianceCheckRequest{
		Modifications: []string{"engine_swap", "turbo_kit"},
		TargetState:   "CA",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var check models.ComplianceCheckResponse
	decodeBody(t, resp, &check)
	assert.Equal(t, models.RiskLevelRed, check.RiskLevel)
	assert.NotEmpty(t, check.NextSteps)
}

func TestSaveReportAndOwnership(t *testing.T) {
	server, _ := newTestServer(t)
	aliceToken := registerAndLogin(t, server, "alice@example.com")
	bobToken := registerAndLogin(t, server, "bob@example.com")

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/save-report", aliceToken, models.CreateReportRequest{
		ReportType: "cost_breakdown",
		Title:      "R33 to Texas",
		Payload:    models.JSONPayload{"total": 18000.0},
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var report models.SavedReport
	decodeBody(t, resp, &report)

	// Owner can fetch it
	resp = doJSON(t, http.MethodGet, server.URL+"/api/v1/reports/"+report.ReportID, aliceToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Another user gets 403
	resp = doJSON(t, http.MethodGet, server.URL+"/api/v1/reports/"+report.ReportID, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Unknown report is 404
	resp = doJSON(t, http.MethodGet, server.URL+"/api/v1/reports/rpt_missing", aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestBookingLifecycle(t *testing.T) {
	server, _ := newTestServer(t)
	aliceToken := registerAndLogin(t, server, "alice@example.com")
	bobToken := registerAndLogin(t, server, "bob@example.com")

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/bookings", aliceToken, models.CreateBookingRequest{
		ServiceType:  "pre_purchase_inspection",
		ContactEmail: "alice@example.com",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var booking models.Booking
	decodeBody(t, resp, &booking)
	assert.Equal(t, models.BookingStatusPending, booking.Status)

	confirmed := models.BookingStatusConfirmed
	resp = doJSON(t, http.MethodPut, server.URL+"/api/v1/bookings/"+booking.BookingID, aliceToken, models.UpdateBookingRequest{
		Status: &confirmed,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.Booking
	decodeBody(t, resp, &updated)
	assert.Equal(t, models.BookingStatusConfirmed, updated.Status)

	// Other users cannot update
	resp = doJSON(t, http.MethodPut, server.URL+"/api/v1/bookings/"+booking.BookingID, bobToken, models.UpdateBookingRequest{
		Status: &confirmed,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestPortEndpoints(t *testing.T) {
	server, db := newTestServer(t)
	token := registerAndLogin(t, server, "alice@example.com")

	ports := []models.PortInformation{
		{PortID: "prt_" + uuid.New().String(), PortName: "Los Angeles", PortCode: "USLAX", Country: "US", Region: "WEST",
			VehicleProcessingCapable: true, ProcessingDaysMax: 10, BaseHandlingFee: 450, StorageFeePerDay: 35, CustomsClearanceFee: 150},
		{PortID: "prt_" + uuid.New().String(), PortName: "Seattle", PortCode: "USSEA", Country: "US", Region: "WEST",
			VehicleProcessingCapable: true, ProcessingDaysMax: 8, BaseHandlingFee: 380, StorageFeePerDay: 30, CustomsClearanceFee: 140},
	}
	for i := range ports {
		assert.NoError(t, db.Create(&ports[i]).Error)
	}

	resp := doJSON(t, http.MethodGet, server.URL+"/api/v1/port-intelligence?country=US", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var collection models.CollectionResponse
	decodeBody(t, resp, &collection)
	assert.Equal(t, 2, collection.Count)

	resp = doJSON(t, http.MethodPost, server.URL+"/api/v1/port-cost-calculator", token, models.PortCostRequest{
		PortCode:    "USLAX",
		StorageDays: 10,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var cost models.PortCostResponse
	decodeBody(t, resp, &cost)
	assert.Equal(t, 950.0, cost.Total)

	resp = doJSON(t, http.MethodPost, server.URL+"/api/v1/port-comparison", token, models.PortComparisonRequest{
		PortCodes:   []string{"USLAX", "USSEA"},
		StorageDays: 5,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var comparison models.PortComparisonResponse
	decodeBody(t, resp, &comparison)
	assert.Equal(t, "USSEA", comparison.CheapestPort)

	resp = doJSON(t, http.MethodPost, server.URL+"/api/v1/port-recommendations", token, models.PortRecommendationRequest{
		DestinationRegion: "WEST",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestModShopDirectoryAndReviews(t *testing.T) {
	server, db := newTestServer(t)
	token := registerAndLogin(t, server, "alice@example.com")

	shop := models.ModShopPartner{
		ShopID:       "shp_" + uuid.New().String(),
		BusinessName: "JDM Garage",
		Email:        "jdm@example.com",
		Specialties:  models.StringList{"turbo_kit"},
	}
	assert.NoError(t, db.Create(&shop).Error)

	resp := doJSON(t, http.MethodGet, server.URL+"/api/v1/mod-shops", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var collection models.CollectionResponse
	decodeBody(t, resp, &collection)
	assert.Equal(t, 1, collection.Count)

	resp = doJSON(t, http.MethodPost, server.URL+"/api/v1/mod-shops/"+shop.ShopID+"/reviews", token, models.CreateReviewRequest{
		ReviewerName: "Alice",
		Rating:       5,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, server.URL+"/api/v1/mod-shops/"+shop.ShopID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var loaded models.ModShopPartner
	decodeBody(t, resp, &loaded)
	assert.Equal(t, 5.0, loaded.Rating)
	assert.Equal(t, 1, loaded.ReviewCount)
}

func TestVehicleSearchEndpoint(t *testing.T) {
	server, db := newTestServer(t)
	token := registerAndLogin(t, server, "alice@example.com")

	assert.NoError(t, db.Create(&models.VehicleAuction{
		AuctionID: "auc_" + uuid.New().String(),
		Make:      "Nissan", Model: "Skyline GT-R", Year: 1995, Price: 42000,
		Source: "uss_tokyo", LotNumber: "70012",
	}).Error)

	resp := doJSON(t, http.MethodGet, server.URL+"/api/v1/vehicles?make=Nissan", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Items []models.VehicleAuction `json:"items"`
		Total int64                   `json:"total"`
	}
	decodeBody(t, resp, &result)
	assert.Equal(t, int64(1), result.Total)
	assert.Equal(t, "Skyline GT-R", result.Items[0].Model)
}

func TestAffiliateSignupEndpointIsPublic(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/affiliate/signup", "", models.AffiliateSignupRequest{
		Email:       "partner@example.com",
		CompanyName: "JDM Imports LLC",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var partner models.AffiliatePartner
	decodeBody(t, resp, &partner)
	assert.Len(t, partner.ReferralCode, 8)

	// Duplicate is a 400
	resp = doJSON(t, http.MethodPost, server.URL+"/api/v1/affiliate/signup", "", models.AffiliateSignupRequest{
		Email:       "partner@example.com",
		CompanyName: "Again LLC",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestPasswordResetFlowOverHTTP(t *testing.T) {
	server, _ := newTestServer(t)
	registerAndLogin(t, server, "alice@example.com")

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/users/password-reset", "", models.PasswordResetRequest{
		Email: "alice@example.com",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var reset models.PasswordResetResponse
	decodeBody(t, resp, &reset)
	assert.NotEmpty(t, reset.ResetToken)

	resp = doJSON(t, http.MethodPost, server.URL+"/api/v1/users/password-reset/confirm", "", models.PasswordResetConfirmRequest{
		ResetToken:  reset.ResetToken,
		NewPassword: "new-password-1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// New password works
	resp = doJSON(t, http.MethodPost, server.URL+"/api/v1/users/login", "", models.LoginRequest{
		Email:    "alice@example.com",
		Password: "new-password-1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestMethodNotAllowed(t *testing.T) {
	server, _ := newTestServer(t)
	token := registerAndLogin(t, server, "alice@example.com")

	resp := doJSON(t, http.MethodGet, server.URL+"/api/v1/calculate", token, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
