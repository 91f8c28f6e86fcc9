package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/raven2t2/importiq-backend/v1/models"
)

var (
	// ErrReportNotFound is returned for unknown report IDs
	ErrReportNotFound = errors.New("report not found")
	// ErrBookingNotFound is returned for unknown booking IDs
	ErrBookingNotFound = errors.New("booking not found")
	// ErrNotOwner is returned when a user touches another user's resource
	ErrNotOwner = errors.New("resource belongs to another user")
)

// ReportService handles saved calculator reports and service bookings. Every
// read and write is scoped to the owning user.
type ReportService struct {
	db *gorm.DB
}

// NewReportService creates a new report service
func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

// CreateReport persists a calculator result for the given user
func (s *ReportService) CreateReport(ctx context.Context, userID string, req *models.CreateReportRequest) (*models.SavedReport, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("title is required")
	}
	if len(req.Title) > models.MaxTitleLength {
		return nil, fmt.Errorf("title must be at most %d characters", models.MaxTitleLength)
	}
	if strings.TrimSpace(req.ReportType) == "" {
		return nil, fmt.Errorf("reportType is required")
	}

	report := models.SavedReport{
		ReportID:   "rpt_" + uuid.New().String(),
		UserID:     userID,
		ReportType: req.ReportType,
		Title:      strings.TrimSpace(req.Title),
		Payload:    req.Payload,
	}

	if err := s.db.WithContext(ctx).Create(&report).Error; err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	return &report, nil
}

// ListReports returns all of a user's saved reports, newest first
func (s *ReportService) ListReports(ctx context.Context, userID string) ([]models.SavedReport, error) {
	var reports []models.SavedReport
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

// GetReport loads one report, enforcing ownership
func (s *ReportService) GetReport(ctx context.Context, userID, reportID string) (*models.SavedReport, error) {
	var report models.SavedReport
	if err := s.db.WithContext(ctx).First(&report, "report_id = ?", reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	if report.UserID != userID {
		return nil, ErrNotOwner
	}
	return &report, nil
}

// DeleteReport removes one report, enforcing ownership
func (s *ReportService) DeleteReport(ctx context.Context, userID, reportID string) error {
	report, err := s.GetReport(ctx, userID, reportID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(report).Error; err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	return nil
}

// CreateBooking places a service booking for the given user
func (s *ReportService) CreateBooking(ctx context.Context, userID string, req *models.CreateBookingRequest) (*models.Booking, error) {
	if strings.TrimSpace(req.ServiceType) == "" {
		return nil, fmt.Errorf("serviceType is required")
	}
	if err := validateEmail(strings.ToLower(strings.TrimSpace(req.ContactEmail))); err != nil {
		return nil, fmt.Errorf("contactEmail: %w", err)
	}

	booking := models.Booking{
		BookingID:      "bkg_" + uuid.New().String(),
		UserID:         userID,
		ServiceType:    req.ServiceType,
		VehicleDetails: req.VehicleDetails,
		PreferredDate:  req.PreferredDate,
		Status:         models.BookingStatusPending,
		ContactEmail:   strings.ToLower(strings.TrimSpace(req.ContactEmail)),
		Notes:          req.Notes,
	}

	if err := s.db.WithContext(ctx).Create(&booking).Error; err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	return &booking, nil
}

// ListBookings returns all of a user's bookings, newest first
func (s *ReportService) ListBookings(ctx context.Context, userID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// GetBooking loads one booking, enforcing ownership
func (s *ReportService) GetBooking(ctx context.Context, userID, bookingID string) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.WithContext(ctx).First(&booking, "booking_id = ?", bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	if booking.UserID != userID {
		return nil, ErrNotOwner
	}
	return &booking, nil
}

// UpdateBooking applies a partial update to a booking, enforcing ownership.
// Nil fields are left unchanged.
func (s *ReportService) UpdateBooking(ctx context.Context, userID, bookingID string, req *models.UpdateBookingRequest) (*models.Booking, error) {
	booking, err := s.GetBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, fmt.Errorf("invalid booking status: %s", *req.Status)
		}
		updates["status"] = *req.Status
	}
	if req.VehicleDetails != nil {
		updates["vehicle_details"] = *req.VehicleDetails
	}
	if req.PreferredDate != nil {
		updates["preferred_date"] = *req.PreferredDate
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if len(updates) == 0 {
		return booking, nil
	}

	if err := s.db.WithContext(ctx).Model(booking).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}
	return s.GetBooking(ctx, userID, bookingID)
}

// CancelBooking marks a booking cancelled, enforcing ownership
func (s *ReportService) CancelBooking(ctx context.Context, userID, bookingID string) (*models.Booking, error) {
	status := models.BookingStatusCancelled
	return s.UpdateBooking(ctx, userID, bookingID, &models.UpdateBookingRequest{Status: &status})
}
