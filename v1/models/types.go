package models

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StringList is a JSONB-backed list of strings (requirements, specialties,
// certifications, modification tags)
type StringList []string

// Scan implements the sql.Scanner interface for StringList
func (sl *StringList) Scan(value interface{}) error {
	if value == nil {
		*sl = StringList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}

	return json.Unmarshal(bytes, sl)
}

// Value implements the driver.Valuer interface for StringList
func (sl *StringList) Value() (driver.Value, error) {
	return json.Marshal(*sl)
}

// GormDataType gorm common data type
func (StringList) GormDataType() string {
	return "jsonb"
}

// GormValue implements the GormValuerInterface
func (sl StringList) GormValue(ctx context.Context, db *gorm.DB) clause.Expr {
	data, err := json.Marshal(sl)
	if err != nil {
		// Marshaling a string slice should never fail; panic rather than
		// silently persisting corrupt data
		panic(fmt.Sprintf("Failed to marshal StringList to JSON: %v", err))
	}

	if db.Dialector.Name() == "sqlite" {
		return clause.Expr{SQL: "?", Vars: []interface{}{string(data)}}
	}

	return clause.Expr{
		SQL:  "?::jsonb",
		Vars: []interface{}{string(data)},
	}
}

// FeeTable is a JSONB-backed map from fee name to amount (compliance rule
// cost tables, saved report payload fee breakdowns)
type FeeTable map[string]float64

// Scan implements the sql.Scanner interface for FeeTable
func (ft *FeeTable) Scan(value interface{}) error {
	if value == nil {
		*ft = make(FeeTable)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into FeeTable", value)
	}

	return json.Unmarshal(bytes, ft)
}

// Value implements the driver.Valuer interface for FeeTable
func (ft *FeeTable) Value() (driver.Value, error) {
	return json.Marshal(*ft)
}

// GormDataType gorm common data type
func (FeeTable) GormDataType() string {
	return "jsonb"
}

// GormValue implements the GormValuerInterface
func (ft FeeTable) GormValue(ctx context.Context, db *gorm.DB) clause.Expr {
	data, err := json.Marshal(ft)
	if err != nil {
		panic(fmt.Sprintf("Failed to marshal FeeTable to JSON: %v", err))
	}

	if db.Dialector.Name() == "sqlite" {
		return clause.Expr{SQL: "?", Vars: []interface{}{string(data)}}
	}

	return clause.Expr{
		SQL:  "?::jsonb",
		Vars: []interface{}{string(data)},
	}
}

// JSONPayload is a JSONB-backed free-form document (saved report payloads)
type JSONPayload map[string]interface{}

// Scan implements the sql.Scanner interface for JSONPayload
func (jp *JSONPayload) Scan(value interface{}) error {
	if value == nil {
		*jp = make(JSONPayload)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONPayload", value)
	}

	return json.Unmarshal(bytes, jp)
}

// Value implements the driver.Valuer interface for JSONPayload
func (jp *JSONPayload) Value() (driver.Value, error) {
	return json.Marshal(*jp)
}

// GormDataType gorm common data type
func (JSONPayload) GormDataType() string {
	return "jsonb"
}

// GormValue implements the GormValuerInterface
func (jp JSONPayload) GormValue(ctx context.Context, db *gorm.DB) clause.Expr {
	data, err := json.Marshal(jp)
	if err != nil {
		panic(fmt.Sprintf("Failed to marshal JSONPayload to JSON: %v", err))
	}

	if db.Dialector.Name() == "sqlite" {
		return clause.Expr{SQL: "?", Vars: []interface{}{string(data)}}
	}

	return clause.Expr{
		SQL:  "?::jsonb",
		Vars: []interface{}{string(data)},
	}
}

// Scan implements the sql.Scanner interface for BookingStatus
func (bs *BookingStatus) Scan(value interface{}) error {
	if value == nil {
		*bs = BookingStatusPending
		return nil
	}
	if str, ok := value.(string); ok {
		*bs = BookingStatus(str)
		return nil
	}
	return fmt.Errorf("cannot scan %T into BookingStatus", value)
}

// Value implements the driver.Valuer interface for BookingStatus
func (bs *BookingStatus) Value() (driver.Value, error) {
	return string(*bs), nil
}

// Scan implements the sql.Scanner interface for AffiliateStatus
func (as *AffiliateStatus) Scan(value interface{}) error {
	if value == nil {
		*as = AffiliateStatusActive
		return nil
	}
	if str, ok := value.(string); ok {
		*as = AffiliateStatus(str)
		return nil
	}
	return fmt.Errorf("cannot scan %T into AffiliateStatus", value)
}

// Value implements the driver.Valuer interface for AffiliateStatus
func (as *AffiliateStatus) Value() (driver.Value, error) {
	return string(*as), nil
}
