package models

// SavedReport persists a calculator result for a user
type SavedReport struct {
	ReportID   string      `gorm:"primarykey;column:report_id" json:"reportId"`
	UserID     string      `gorm:"column:user_id;not null;index" json:"userId"`
	ReportType string      `gorm:"column:report_type;not null" json:"reportType"`
	Title      string      `gorm:"column:title;not null" json:"title"`
	Payload    JSONPayload `gorm:"column:payload" json:"payload"`
	BaseModel
}

// TableName sets the table name for GORM
func (SavedReport) TableName() string {
	return "saved_reports"
}

// Booking is a service booking placed by a user (inspection, shipping,
// compliance work)
type Booking struct {
	BookingID      string        `gorm:"primarykey;column:booking_id" json:"bookingId"`
	UserID         string        `gorm:"column:user_id;not null;index" json:"userId"`
	ServiceType    string        `gorm:"column:service_type;not null" json:"serviceType"`
	VehicleDetails string        `gorm:"column:vehicle_details" json:"vehicleDetails,omitempty"`
	PreferredDate  *string       `gorm:"column:preferred_date" json:"preferredDate,omitempty"`
	Status         BookingStatus `gorm:"column:status;default:pending" json:"status"`
	ContactEmail   string        `gorm:"column:contact_email;not null" json:"contactEmail"`
	Notes          string        `gorm:"column:notes" json:"notes,omitempty"`
	BaseModel
}

// TableName sets the table name for GORM
func (Booking) TableName() string {
	return "bookings"
}

// AffiliatePartner is a referral partner account
type AffiliatePartner struct {
	AffiliateID    string          `gorm:"primarykey;column:affiliate_id" json:"affiliateId"`
	Email          string          `gorm:"column:email;not null;unique" json:"email"`
	CompanyName    string          `gorm:"column:company_name;not null" json:"companyName"`
	ReferralCode   string          `gorm:"column:referral_code;not null;unique" json:"referralCode"`
	CommissionRate float64         `gorm:"column:commission_rate;default:0.05" json:"commissionRate"`
	Status         AffiliateStatus `gorm:"column:status;default:active" json:"status"`
	BaseModel
}

// TableName sets the table name for GORM
func (AffiliatePartner) TableName() string {
	return "affiliate_partners"
}
