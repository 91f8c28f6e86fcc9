package models

// ModShopPartner is a directory listing for a modification/compliance shop
type ModShopPartner struct {
	ShopID         string     `gorm:"primarykey;column:shop_id" json:"shopId"`
	BusinessName   string     `gorm:"column:business_name;not null" json:"businessName"`
	Email          string     `gorm:"column:email;not null;unique" json:"email"`
	Phone          string     `gorm:"column:phone" json:"phone,omitempty"`
	Website        string     `gorm:"column:website" json:"website,omitempty"`
	Specialties    StringList `gorm:"column:specialties" json:"specialties"`
	Certifications StringList `gorm:"column:certifications" json:"certifications"`
	Rating         float64    `gorm:"column:rating;default:0" json:"rating"`
	ReviewCount    int        `gorm:"column:review_count;default:0" json:"reviewCount"`

	ServiceAreas []ServiceArea `gorm:"foreignKey:ShopID;references:ShopID" json:"serviceAreas,omitempty"`
	Reviews      []ShopReview  `gorm:"foreignKey:ShopID;references:ShopID" json:"reviews,omitempty"`
	BaseModel
}

// TableName sets the table name for GORM
func (ModShopPartner) TableName() string {
	return "mod_shop_partners"
}

// ServiceArea is one geographic coverage row for a shop
type ServiceArea struct {
	AreaID   string `gorm:"primarykey;column:area_id" json:"areaId"`
	ShopID   string `gorm:"column:shop_id;not null;index" json:"shopId"`
	State    string `gorm:"column:state;not null;index" json:"state"`
	City     string `gorm:"column:city" json:"city,omitempty"`
	RadiusKm int    `gorm:"column:radius_km" json:"radiusKm"`
	BaseModel
}

// TableName sets the table name for GORM
func (ServiceArea) TableName() string {
	return "service_areas"
}

// ShopReview is a customer review of a shop
type ShopReview struct {
	ReviewID     string `gorm:"primarykey;column:review_id" json:"reviewId"`
	ShopID       string `gorm:"column:shop_id;not null;index" json:"shopId"`
	ReviewerName string `gorm:"column:reviewer_name;not null" json:"reviewerName"`
	Rating       int    `gorm:"column:rating;not null" json:"rating"`
	Comment      string `gorm:"column:comment" json:"comment,omitempty"`
	BaseModel
}

// TableName sets the table name for GORM
func (ShopReview) TableName() string {
	return "shop_reviews"
}
