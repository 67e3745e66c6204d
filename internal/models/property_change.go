package models

import "time"

// PropertyChange records a single field change detected while an import
// updated an existing property.
type PropertyChange struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID uint      `gorm:"not null;index" json:"property_id"`
	Field      string    `gorm:"type:varchar(50);not null" json:"field"`
	OldValue   string    `gorm:"type:text" json:"old_value"`
	NewValue   string    `gorm:"type:text" json:"new_value"`
	DetectedAt time.Time `gorm:"not null;autoCreateTime;index" json:"detected_at"`
}

// TableName specifies the table name for PropertyChange
func (PropertyChange) TableName() string {
	return "property_changes"
}
