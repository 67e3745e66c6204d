package models

import (
	"time"

	"gorm.io/gorm"

	"vacation-rental-portal/internal/slug"
)

type Property struct {
	// 基本情報
	ID         uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	LocationID uint     `gorm:"not null;index" json:"location_id"`
	Location   Location `gorm:"foreignKey:LocationID;constraint:OnDelete:RESTRICT" json:"location"`
	Title      string   `gorm:"type:varchar(255);not null" json:"title"`
	Slug       string   `gorm:"type:varchar(280);not null;uniqueIndex" json:"slug"`

	// 掲載内容
	Description   string `gorm:"type:text" json:"description"`
	// Price stays a pre-formatted 2-decimal string end to end. Stored as text
	// so SQLite does not strip trailing zeros; range filters CAST to numeric.
	PricePerNight string `gorm:"type:varchar(12);not null;default:'0.00'" json:"price_per_night"`
	Bedrooms      int    `gorm:"not null;default:1" json:"bedrooms"`
	Bathrooms     int    `gorm:"not null;default:1" json:"bathrooms"`
	MaxGuests     int    `gorm:"not null;default:1" json:"max_guests"`

	// 公開ステータス
	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	// タイムスタンプ
	CreatedAt time.Time `gorm:"not null;autoCreateTime;index:idx_properties_created_at,sort:desc" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`

	Images []Image `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
}

// TableName はテーブル名を明示的に指定
func (Property) TableName() string {
	return "properties"
}

// BeforeSave assigns a unique slug derived from the title when none was
// supplied. Runs inside the enclosing transaction, so the uniqueness probe
// and the write are not interleaved with other writers.
func (p *Property) BeforeSave(tx *gorm.DB) error {
	if p.Slug != "" {
		return nil
	}

	var probeErr error
	p.Slug = slug.Unique(slug.ForTitle(p.Title), func(candidate string) bool {
		query := tx.Model(&Property{}).Where("slug = ?", candidate)
		if p.ID != 0 {
			query = query.Where("id <> ?", p.ID)
		}
		var count int64
		if err := query.Count(&count).Error; err != nil {
			probeErr = err
			return false
		}
		return count > 0
	})
	return probeErr
}
