package history

import (
	"strconv"

	"gorm.io/gorm"

	"vacation-rental-portal/internal/models"
)

// Service records and queries field-level property changes detected while
// imports update existing records.
type Service struct {
	db *gorm.DB
}

// NewService creates a new history service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Diff compares the stored property with its incoming replacement and
// returns one change row per differing field. Slug is included so renames
// driven by an id-keyed import stay visible.
func Diff(old, new *models.Property) []models.PropertyChange {
	var changes []models.PropertyChange

	record := func(field, oldValue, newValue string) {
		if oldValue != newValue {
			changes = append(changes, models.PropertyChange{
				PropertyID: old.ID,
				Field:      field,
				OldValue:   oldValue,
				NewValue:   newValue,
			})
		}
	}

	record("title", old.Title, new.Title)
	record("slug", old.Slug, new.Slug)
	record("description", old.Description, new.Description)
	record("price_per_night", old.PricePerNight, new.PricePerNight)
	record("bedrooms", strconv.Itoa(old.Bedrooms), strconv.Itoa(new.Bedrooms))
	record("bathrooms", strconv.Itoa(old.Bathrooms), strconv.Itoa(new.Bathrooms))
	record("max_guests", strconv.Itoa(old.MaxGuests), strconv.Itoa(new.MaxGuests))
	record("is_active", strconv.FormatBool(old.IsActive), strconv.FormatBool(new.IsActive))

	return changes
}

// Record persists change rows inside the caller's transaction.
func Record(tx *gorm.DB, changes []models.PropertyChange) error {
	if len(changes) == 0 {
		return nil
	}
	return tx.Create(&changes).Error
}

// Recent returns the most recent changes, newest first.
func (s *Service) Recent(limit int) ([]models.PropertyChange, error) {
	if limit <= 0 {
		limit = 100
	}
	var changes []models.PropertyChange
	err := s.db.Order("detected_at DESC, id DESC").Limit(limit).Find(&changes).Error
	return changes, err
}
