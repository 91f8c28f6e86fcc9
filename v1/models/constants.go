package models

import "time"

// RiskLevel represents the BuildReady compliance risk bucket
type RiskLevel string

const (
	RiskLevelGreen  RiskLevel = "green"
	RiskLevelYellow RiskLevel = "yellow"
	RiskLevelRed    RiskLevel = "red"
)

// BookingStatus represents the lifecycle of a service booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Valid reports whether the status is one of the known lifecycle states
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled:
		return true
	}
	return false
}

// AffiliateStatus represents the state of an affiliate partner account
type AffiliateStatus string

const (
	AffiliateStatusActive    AffiliateStatus = "active"
	AffiliateStatusSuspended AffiliateStatus = "suspended"
)

// VehicleCategory classifies vehicles for duty purposes
type VehicleCategory string

const (
	VehicleCategoryPassengerCar   VehicleCategory = "passenger_car"
	VehicleCategoryTruck          VehicleCategory = "truck"
	VehicleCategoryMotorcycle     VehicleCategory = "motorcycle"
	VehicleCategorySpecialVehicle VehicleCategory = "special_vehicle"
)

// AuditStatus represents the status of audit events
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
)

// ResourceType represents different resource types for auditing
type ResourceType string

const (
	ResourceTypeUsers      ResourceType = "USERS"
	ResourceTypeSessions   ResourceType = "SESSIONS"
	ResourceTypeVehicles   ResourceType = "VEHICLES"
	ResourceTypeReports    ResourceType = "REPORTS"
	ResourceTypeBookings   ResourceType = "BOOKINGS"
	ResourceTypeReviews    ResourceType = "REVIEWS"
	ResourceTypeAffiliates ResourceType = "AFFILIATES"
)

// Field length constraints
const (
	MaxNameLength    = 255
	MaxEmailLength   = 320 // RFC 3696 specification
	MaxCommentLength = 2000
	MaxTitleLength   = 255
	MinPasswordLen   = 8
)

// Session lifetime defaults
const (
	DefaultSessionTTL = "7d"
	ResetTokenTTL     = 15 * time.Minute
)
