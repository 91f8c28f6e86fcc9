package models

// VehicleAuction represents an auction listing imported from an upstream feed
// or fixture. Listings are deduplicated on (source, lot_number).
type VehicleAuction struct {
	AuctionID         string  `gorm:"primarykey;column:auction_id" json:"auctionId"`
	Make              string  `gorm:"column:make;not null;index" json:"make"`
	Model             string  `gorm:"column:model;not null;index" json:"model"`
	Year              int     `gorm:"column:year;index" json:"year"`
	Price             float64 `gorm:"column:price" json:"price"`
	Currency          string  `gorm:"column:currency;default:USD" json:"currency"`
	Source            string  `gorm:"column:source;not null;uniqueIndex:idx_source_lot" json:"source"`
	LotNumber         string  `gorm:"column:lot_number;not null;uniqueIndex:idx_source_lot" json:"lotNumber"`
	SourceURL         string  `gorm:"column:source_url" json:"sourceUrl,omitempty"`
	VIN               *string `gorm:"column:vin" json:"vin,omitempty"`
	DamageDescription string  `gorm:"column:damage_description" json:"damageDescription,omitempty"`
	Location          string  `gorm:"column:location" json:"location,omitempty"`
	SaleDate          *string `gorm:"column:sale_date" json:"saleDate,omitempty"`
	BaseModel
}

// TableName sets the table name for GORM
func (VehicleAuction) TableName() string {
	return "vehicle_auctions"
}
