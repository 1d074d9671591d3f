package models

import "time"

// Supplier is a vendor of raw materials listed in the catalog.
type Supplier struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name      string    `gorm:"column:name;not null;uniqueIndex:ux_suppliers_name"`
	Verified  bool      `gorm:"column:verified;not null;default:false"`
	Location  string    `gorm:"column:location;not null;default:''"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
