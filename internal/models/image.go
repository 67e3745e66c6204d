package models

import (
	"strings"
	"time"
)

// Image is a photo attached to a property. Either FilePath (an uploaded file
// relative to the media root) or ImageURL (an external link) is expected to
// be set; FilePath wins when both are present.
type Image struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID uint      `gorm:"not null;index" json:"property_id"`
	FilePath   string    `gorm:"type:varchar(500)" json:"file_path,omitempty"`
	ImageURL   string    `gorm:"type:varchar(500)" json:"image_url,omitempty"`
	AltText    string    `gorm:"type:varchar(255)" json:"alt_text,omitempty"`
	IsPrimary  bool      `gorm:"not null;default:false;index" json:"is_primary"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for Image
func (Image) TableName() string {
	return "images"
}

// DisplayURL resolves the URL a client should render, preferring the
// uploaded file over the external link. Empty when neither is set.
func (img *Image) DisplayURL(mediaBaseURL string) string {
	if img.FilePath != "" {
		return strings.TrimSuffix(mediaBaseURL, "/") + "/" + strings.TrimPrefix(img.FilePath, "/")
	}
	return img.ImageURL
}

// ImageOrder is the canonical ordering clause for a property's images:
// primary first, then insertion order.
const ImageOrder = "is_primary DESC, id ASC"
