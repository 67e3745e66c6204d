package database

import (
	"strings"
	"unicode"

	"gorm.io/gorm"

	"vacation-rental-portal/internal/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	maxAutocompleteResults = 10
)

// PropertyFilters describes the listing query. Zero values mean "no filter";
// unparseable client input never reaches this struct (handlers drop it).
type PropertyFilters struct {
	// Location holds raw comma- or whitespace-separated terms. A property
	// matches when any term matches its location name, city or country.
	Location string

	// Query is substring-matched against title, description and the
	// location name/city/country.
	Query string

	MinPrice *float64
	MaxPrice *float64

	Limit  int
	Offset int
}

// PaginatedProperties is one page of listing results plus the total count.
type PaginatedProperties struct {
	Properties []models.Property `json:"properties"`
	Total      int64             `json:"total"`
	Limit      int               `json:"limit"`
	Offset     int               `json:"offset"`
}

// SplitLocationTerms breaks the raw location parameter on commas and
// whitespace, dropping empties.
func SplitLocationTerms(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// ListProperties returns one page of active properties matching the filters,
// newest first, with location and images preloaded for response building.
func (gdb *GormDB) ListProperties(filters PropertyFilters) (*PaginatedProperties, error) {
	query := gdb.db.Model(&models.Property{}).
		Joins("JOIN locations ON locations.id = properties.location_id").
		Where("properties.is_active = ?", true)

	if terms := SplitLocationTerms(filters.Location); len(terms) > 0 {
		var clauses []string
		var args []interface{}
		for _, term := range terms {
			like := "%" + strings.ToLower(term) + "%"
			clauses = append(clauses,
				"(LOWER(locations.name) LIKE ? OR LOWER(locations.city) LIKE ? OR LOWER(locations.country) LIKE ?)")
			args = append(args, like, like, like)
		}
		query = query.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}

	if q := strings.TrimSpace(filters.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where(
			"(LOWER(properties.title) LIKE ? OR LOWER(properties.description) LIKE ? OR LOWER(locations.name) LIKE ? OR LOWER(locations.city) LIKE ? OR LOWER(locations.country) LIKE ?)",
			like, like, like, like, like,
		)
	}

	if filters.MinPrice != nil {
		query = query.Where("CAST(properties.price_per_night AS DECIMAL(10,2)) >= ?", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		query = query.Where("CAST(properties.price_per_night AS DECIMAL(10,2)) <= ?", *filters.MaxPrice)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := filters.Offset
	if offset < 0 {
		offset = 0
	}

	var properties []models.Property
	err := query.
		Preload("Location").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order(models.ImageOrder)
		}).
		Order("properties.created_at DESC, properties.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&properties).Error
	if err != nil {
		return nil, err
	}

	return &PaginatedProperties{
		Properties: properties,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
	}, nil
}
