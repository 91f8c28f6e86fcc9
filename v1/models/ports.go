package models

// PortInformation is static reference data about an entry port's costs and
// processing capabilities.
type PortInformation struct {
	PortID                   string  `gorm:"primarykey;column:port_id" json:"portId"`
	PortName                 string  `gorm:"column:port_name;not null" json:"portName"`
	PortCode                 string  `gorm:"column:port_code;not null;unique" json:"portCode"`
	Country                  string  `gorm:"column:country;not null;index" json:"country"`
	Region                   string  `gorm:"column:region;index" json:"region"`
	VehicleProcessingCapable bool    `gorm:"column:vehicle_processing_capable;default:true" json:"vehicleProcessingCapable"`
	ProcessingDaysMin        int     `gorm:"column:processing_days_min" json:"processingDaysMin"`
	ProcessingDaysMax        int     `gorm:"column:processing_days_max" json:"processingDaysMax"`
	BaseHandlingFee          float64 `gorm:"column:base_handling_fee" json:"baseHandlingFee"`
	StorageFeePerDay         float64 `gorm:"column:storage_fee_per_day" json:"storageFeePerDay"`
	CustomsClearanceFee      float64 `gorm:"column:customs_clearance_fee" json:"customsClearanceFee"`
	Notes                    string  `gorm:"column:notes" json:"notes,omitempty"`
	BaseModel
}

// TableName sets the table name for GORM
func (PortInformation) TableName() string {
	return "port_information"
}
