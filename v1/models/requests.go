package models

// CollectionResponse wraps list endpoints with a count
type CollectionResponse struct {
	Items interface{} `json:"items"`
	Count int         `json:"count"`
}

// Auth DTOs

// RegisterRequest is the payload for POST /users/register
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

// LoginRequest is the payload for POST /users/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued session token
type LoginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt string        `json:"expiresAt"`
	User      *UserResponse `json:"user"`
}

// UserResponse is the public view of a user
type UserResponse struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	CreatedAt string `json:"createdAt"`
}

// PasswordResetRequest is the payload for POST /users/password-reset
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetResponse carries the signed reset token. In production the
// token is delivered by email; the API returns it for the mailer service.
type PasswordResetResponse struct {
	ResetToken string `json:"resetToken"`
	ExpiresAt  string `json:"expiresAt"`
}

// PasswordResetConfirmRequest is the payload for POST /users/password-reset/confirm
type PasswordResetConfirmRequest struct {
	ResetToken  string `json:"resetToken"`
	NewPassword string `json:"newPassword"`
}

// Calculator DTOs

// CalculateRequest is the payload for the landed-cost calculator
type CalculateRequest struct {
	VehiclePrice       float64         `json:"vehiclePrice"`
	VehicleYear        int             `json:"vehicleYear"`
	OriginCountry      string          `json:"originCountry"`
	DestinationCountry string          `json:"destinationCountry"`
	Region             string          `json:"region,omitempty"` // US state or CA province code
	VehicleCategory    VehicleCategory `json:"vehicleCategory,omitempty"`
	EngineCC           int             `json:"engineCc,omitempty"`
	ShippingMethod     string          `json:"shippingMethod,omitempty"` // roro or container
}

// CostLineItem is one row of a cost breakdown
type CostLineItem struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// CostBreakdownResponse is the landed-cost calculator result
type CostBreakdownResponse struct {
	Currency        string         `json:"currency"`
	VehiclePrice    float64        `json:"vehiclePrice"`
	LineItems       []CostLineItem `json:"lineItems"`
	TotalLandedCost float64        `json:"totalLandedCost"`
	ExemptUnderAge  bool           `json:"exemptUnderAgeRule"`
	Notes           []string       `json:"notes,omitempty"`
}

// ComplianceCheckRequest is the payload for the BuildReady risk scorer
type ComplianceCheckRequest struct {
	Modifications []string `json:"modifications"`
	TargetState   string   `json:"targetState"`
	Budget        string   `json:"budget,omitempty"`   // e.g. under_5k, 5k_15k, over_15k
	Timeline      string   `json:"timeline,omitempty"` // e.g. under_1_month, 1_3_months, flexible
}

// ComplianceCheckResponse is the BuildReady result
type ComplianceCheckResponse struct {
	RiskScore       float64   `json:"riskScore"`
	RiskLevel       RiskLevel `json:"riskLevel"`
	StateMultiplier float64   `json:"stateMultiplier"`
	NextSteps       []string  `json:"nextSteps"`
}

// PortRecommendationRequest asks for ranked ports in a destination region
type PortRecommendationRequest struct {
	DestinationRegion string          `json:"destinationRegion"`
	VehicleCategory   VehicleCategory `json:"vehicleCategory,omitempty"`
	StorageDays       int             `json:"storageDays,omitempty"`
}

// PortRecommendation is one ranked entry
type PortRecommendation struct {
	PortID         string  `json:"portId"`
	PortName       string  `json:"portName"`
	PortCode       string  `json:"portCode"`
	Score          float64 `json:"score"`
	EstimatedCost  float64 `json:"estimatedCost"`
	ProcessingDays int     `json:"processingDaysMax"`
}

// PortCostRequest is the payload for the port cost calculator
type PortCostRequest struct {
	PortCode    string `json:"portCode"`
	StorageDays int    `json:"storageDays"`
}

// PortCostResponse is one port's itemized cost
type PortCostResponse struct {
	PortID       string  `json:"portId"`
	PortCode     string  `json:"portCode"`
	PortName     string  `json:"portName"`
	HandlingFee  float64 `json:"handlingFee"`
	StorageFee   float64 `json:"storageFee"`
	ClearanceFee float64 `json:"clearanceFee"`
	Total        float64 `json:"total"`
}

// PortComparisonRequest compares 2..5 ports side by side
type PortComparisonRequest struct {
	PortCodes   []string `json:"portCodes"`
	StorageDays int      `json:"storageDays"`
}

// PortComparisonResponse is the side-by-side comparison result
type PortComparisonResponse struct {
	Ports         []PortCostResponse `json:"ports"`
	CheapestPort  string             `json:"cheapestPortCode"`
	MaxDifference float64            `json:"maxDifference"`
}

// ModEstimateRequest is the payload for the mod cost estimator
type ModEstimateRequest struct {
	Modifications []string `json:"modifications"`
	TargetState   string   `json:"targetState,omitempty"`
}

// ModEstimateLineItem is one modification's cost range
type ModEstimateLineItem struct {
	Modification string  `json:"modification"`
	CostLow      float64 `json:"costLow"`
	CostHigh     float64 `json:"costHigh"`
}

// ModEstimateResponse is the mod cost estimator result
type ModEstimateResponse struct {
	LineItems               []ModEstimateLineItem `json:"lineItems"`
	TotalLow                float64               `json:"totalLow"`
	TotalHigh               float64               `json:"totalHigh"`
	RequiresEngineeringCert bool                  `json:"requiresEngineeringCert"`
}

// CRUD DTOs

// CreateReviewRequest adds a review to a shop
type CreateReviewRequest struct {
	ReviewerName string `json:"reviewerName"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment,omitempty"`
}

// CreateBookingRequest creates a service booking
type CreateBookingRequest struct {
	ServiceType    string  `json:"serviceType"`
	VehicleDetails string  `json:"vehicleDetails,omitempty"`
	PreferredDate  *string `json:"preferredDate,omitempty"`
	ContactEmail   string  `json:"contactEmail"`
	Notes          string  `json:"notes,omitempty"`
}

// UpdateBookingRequest updates a booking's status or details
type UpdateBookingRequest struct {
	Status         *BookingStatus `json:"status,omitempty"`
	VehicleDetails *string        `json:"vehicleDetails,omitempty"`
	PreferredDate  *string        `json:"preferredDate,omitempty"`
	Notes          *string        `json:"notes,omitempty"`
}

// CreateReportRequest persists a calculator result
type CreateReportRequest struct {
	ReportType string      `json:"reportType"`
	Title      string      `json:"title"`
	Payload    JSONPayload `json:"payload"`
}

// AffiliateSignupRequest creates an affiliate partner
type AffiliateSignupRequest struct {
	Email       string `json:"email"`
	CompanyName string `json:"companyName"`
}
