package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/raven2t2/importiq-backend/shared/utils"
	"github.com/raven2t2/importiq-backend/v1/services"
)

// V1Handler handles all V1 API routes
type V1Handler struct {
	authService       *services.AuthService
	vehicleService    *services.VehicleService
	costService       *services.CostService
	complianceService *services.ComplianceService
	portService       *services.PortService
	shopService       *services.ShopService
	reportService     *services.ReportService
	affiliateService  *services.AffiliateService
}

// NewV1Handler creates a new V1 handler
func NewV1Handler(db *gorm.DB, jwtSecret []byte, sessionTTL time.Duration) *V1Handler {
	return &V1Handler{
		authService:       services.NewAuthService(db, jwtSecret, sessionTTL),
		vehicleService:    services.NewVehicleService(db),
		costService:       services.NewCostService(),
		complianceService: services.NewComplianceService(db),
		portService:       services.NewPortService(db),
		shopService:       services.NewShopService(db),
		reportService:     services.NewReportService(db),
		affiliateService:  services.NewAffiliateService(db),
	}
}

// AuthService exposes the auth service for the session middleware
func (h *V1Handler) AuthService() *services.AuthService {
	return h.authService
}

// SetupV1Routes configures all V1 API routes
func (h *V1Handler) SetupV1Routes(mux *http.ServeMux) {
	// Auth routes
	mux.Handle("/api/v1/users/register", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleRegister)))
	mux.Handle("/api/v1/users/login", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleLogin)))
	mux.Handle("/api/v1/users/logout", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleLogout)))
	mux.Handle("/api/v1/users/password-reset", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handlePasswordReset)))
	mux.Handle("/api/v1/users/password-reset/confirm", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handlePasswordResetConfirm)))
	mux.Handle("/api/v1/auth/user", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleCurrentUser)))

	// Calculator routes
	mux.Handle("/api/v1/calculate", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleCalculate)))
	mux.Handle("/api/v1/calculate-us", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleCalculateUS)))
	mux.Handle("/api/v1/check-compliance", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleCheckCompliance)))
	mux.Handle("/api/v1/mod-estimate", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleModEstimate)))

	// Port intelligence routes
	mux.Handle("/api/v1/port-intelligence", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handlePortIntelligence)))
	mux.Handle("/api/v1/port-recommendations", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handlePortRecommendations)))
	mux.Handle("/api/v1/port-cost-calculator", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handlePortCostCalculator)))
	mux.Handle("/api/v1/port-comparison", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handlePortComparison)))

	// Directory routes
	mux.Handle("/api/v1/vehicles", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleVehicles)))
	mux.Handle("/api/v1/vehicles/", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleVehicles)))
	mux.Handle("/api/v1/compliance-rules", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleComplianceRules)))
	mux.Handle("/api/v1/compliance-rules/", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleComplianceRules)))
	mux.Handle("/api/v1/duty-rates", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleDutyRates)))
	mux.Handle("/api/v1/mod-shops", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleModShops)))
	mux.Handle("/api/v1/mod-shops/", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleModShops)))

	// Account routes
	mux.Handle("/api/v1/save-report", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleSaveReport)))
	mux.Handle("/api/v1/reports", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleReports)))
	mux.Handle("/api/v1/reports/", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleReports)))
	mux.Handle("/api/v1/bookings", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleBookings)))
	mux.Handle("/api/v1/bookings/", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleBookings)))
	mux.Handle("/api/v1/affiliate/signup", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleAffiliateSignup)))
	mux.Handle("/api/v1/affiliate/", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleAffiliateLookup)))
}

// decodeJSONBody decodes the request body into dst, responding with 400 on
// malformed input. Returns false when the response was already written.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
