package models

import "strings"

// Location is a place a property belongs to, identified by its unique name.
type Location struct {
	ID      uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name    string `gorm:"type:varchar(200);not null;uniqueIndex" json:"name"`
	City    string `gorm:"type:varchar(120)" json:"city"`
	State   string `gorm:"type:varchar(120)" json:"state"`
	Country string `gorm:"type:varchar(120)" json:"country"`
}

// TableName はテーブル名を明示的に指定
func (Location) TableName() string {
	return "locations"
}

// Label joins the non-empty parts of name, city and country for display.
func (l *Location) Label() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.Name, l.City, l.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
