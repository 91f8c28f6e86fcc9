package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/raven2t2/importiq-backend/shared/utils"
	"github.com/raven2t2/importiq-backend/v1/middleware"
	"github.com/raven2t2/importiq-backend/v1/models"
	"github.com/raven2t2/importiq-backend/v1/services"
	v1utils "github.com/raven2t2/importiq-backend/v1/utils"
)

func (h *V1Handler) handleSaveReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	user, err := v1utils.GetAuthenticatedUser(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req models.CreateReportRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	report, err := h.reportService.CreateReport(r.Context(), user.UserID, &req)
	if err != nil {
		middleware.LogAuditEvent(r, models.ResourceTypeReports, nil, models.AuditStatusFailure)
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	middleware.LogAuditEvent(r, models.ResourceTypeReports, &report.ReportID, models.AuditStatusSuccess)
	utils.RespondWithSuccess(w, http.StatusCreated, report)
}

// handleReports handles listing, fetching and deleting saved reports
func (h *V1Handler) handleReports(w http.ResponseWriter, r *http.Request) {
	user, err := v1utils.GetAuthenticatedUser(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1/reports")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	// Collection endpoint: GET /api/v1/reports
	if len(parts) == 1 && parts[0] == "" {
		if r.Method != http.MethodGet {
			utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		reports, err := h.reportService.ListReports(r.Context(), user.UserID)
		if err != nil {
			slog.Error("Failed to list reports", "error", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to list reports")
			return
		}
		utils.RespondWithSuccess(w, http.StatusOK, &models.CollectionResponse{Items: reports, Count: len(reports)})
		return
	}

	if len(parts) != 1 || parts[0] == "" {
		utils.RespondWithError(w, http.StatusNotFound, "Endpoint not found")
		return
	}

	reportID := parts[0]

	switch r.Method {
	case http.MethodGet:
		report, err := h.reportService.GetReport(r.Context(), user.UserID, reportID)
		if err != nil {
			h.respondReportError(w, err)
			return
		}
		utils.RespondWithSuccess(w, http.StatusOK, report)

	case http.MethodDelete:
		if err := h.reportService.DeleteReport(r.Context(), user.UserID, reportID); err != nil {
			middleware.LogAuditEvent(r, models.ResourceTypeReports, &reportID, models.AuditStatusFailure)
			h.respondReportError(w, err)
			return
		}
		middleware.LogAuditEvent(r, models.ResourceTypeReports, &reportID, models.AuditStatusSuccess)
		utils.RespondWithSuccess(w, http.StatusOK, map[string]string{"message": "Report deleted"})

	default:
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *V1Handler) respondReportError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrReportNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Report not found")
	case errors.Is(err, services.ErrNotOwner):
		utils.RespondWithError(w, http.StatusForbidden, "Report belongs to another user")
	default:
		slog.Error("Report operation failed", "error", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Report operation failed")
	}
}

// handleBookings handles booking creation, listing and updates
func (h *V1Handler) handleBookings(w http.ResponseWriter, r *http.Request) {
	user, err := v1utils.GetAuthenticatedUser(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1/bookings")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	// Collection endpoint: GET /api/v1/bookings and POST /api/v1/bookings
	if len(parts) == 1 && parts[0] == "" {
		switch r.Method {
		case http.MethodGet:
			bookings, err := h.reportService.ListBookings(r.Context(), user.UserID)
			if err != nil {
				slog.Error("Failed to list bookings", "error", err)
				utils.RespondWithError(w, http.StatusInternalServerError, "Failed to list bookings")
				return
			}
			utils.RespondWithSuccess(w, http.StatusOK, &models.CollectionResponse{Items: bookings, Count: len(bookings)})

		case http.MethodPost:
			var req models.CreateBookingRequest
			if !decodeJSONBody(w, r, &req) {
				return
			}
			booking, err := h.reportService.CreateBooking(r.Context(), user.UserID, &req)
			if err != nil {
				middleware.LogAuditEvent(r, models.ResourceTypeBookings, nil, models.AuditStatusFailure)
				utils.RespondWithError(w, http.StatusBadRequest, err.Error())
				return
			}
			middleware.LogAuditEvent(r, models.ResourceTypeBookings, &booking.BookingID, models.AuditStatusSuccess)
			utils.RespondWithSuccess(w, http.StatusCreated, booking)

		default:
			utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
		return
	}

	if len(parts) != 1 || parts[0] == "" {
		utils.RespondWithError(w, http.StatusNotFound, "Endpoint not found")
		return
	}

	bookingID := parts[0]

	switch r.Method {
	case http.MethodGet:
		booking, err := h.reportService.GetBooking(r.Context(), user.UserID, bookingID)
		if err != nil {
			h.respondBookingError(w, err)
			return
		}
		utils.RespondWithSuccess(w, http.StatusOK, booking)

	case http.MethodPut:
		var req models.UpdateBookingRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}
		booking, err := h.reportService.UpdateBooking(r.Context(), user.UserID, bookingID, &req)
		if err != nil {
			middleware.LogAuditEvent(r, models.ResourceTypeBookings, &bookingID, models.AuditStatusFailure)
			h.respondBookingError(w, err)
			return
		}
		middleware.LogAuditEvent(r, models.ResourceTypeBookings, &booking.BookingID, models.AuditStatusSuccess)
		utils.RespondWithSuccess(w, http.StatusOK, booking)

	default:
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *V1Handler) respondBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrBookingNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Booking not found")
	case errors.Is(err, services.ErrNotOwner):
		utils.RespondWithError(w, http.StatusForbidden, "Booking belongs to another user")
	default:
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	}
}

func (h *V1Handler) handleAffiliateSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.AffiliateSignupRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	partner, err := h.affiliateService.Signup(r.Context(), &req)
	if err != nil {
		middleware.LogAuditEvent(r, models.ResourceTypeAffiliates, nil, models.AuditStatusFailure)
		if errors.Is(err, services.ErrAffiliateExists) {
			utils.RespondWithError(w, http.StatusBadRequest, "Affiliate is already registered")
			return
		}
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	middleware.LogAuditEvent(r, models.ResourceTypeAffiliates, &partner.AffiliateID, models.AuditStatusSuccess)
	utils.RespondWithSuccess(w, http.StatusCreated, partner)
}

// handleAffiliateLookup resolves a referral code: GET /api/v1/affiliate/:code
func (h *V1Handler) handleAffiliateLookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	code := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/affiliate"), "/")
	if code == "" || strings.Contains(code, "/") {
		utils.RespondWithError(w, http.StatusBadRequest, "Referral code is required")
		return
	}

	partner, err := h.affiliateService.GetByReferralCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, services.ErrAffiliateNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Affiliate not found")
			return
		}
		slog.Error("Failed to look up affiliate", "error", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to look up affiliate")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, partner)
}
