package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"gorm.io/gorm"

	"vacation-rental-portal/internal/history"
	"vacation-rental-portal/internal/models"
	"vacation-rental-portal/internal/slug"
)

var (
	// ErrFileNotFound is returned when the CSV path does not exist.
	ErrFileNotFound = errors.New("csv file not found")
	// ErrMissingHeader is returned when the CSV has no header row.
	ErrMissingHeader = errors.New("csv is missing a header row")
)

// Alias lists mapping logical fields to the CSV column names accepted for
// them, in lookup order.
var (
	titleAliases       = []string{"title", "property_title", "name"}
	locationAliases    = []string{"location_name", "location", "city"}
	cityAliases        = []string{"city"}
	stateAliases       = []string{"state", "province"}
	countryAliases     = []string{"country"}
	slugSourceAliases  = []string{"slug", "property_slug"}
	descriptionAliases = []string{"description", "details"}
	priceAliases       = []string{"price_per_night", "price"}
	bedroomsAliases    = []string{"bedrooms"}
	bathroomsAliases   = []string{"bathrooms"}
	maxGuestsAliases   = []string{"max_guests", "guests"}
	isActiveAliases    = []string{"is_active"}
	idAliases          = []string{"id"}
)

// Result accumulates what a run created. Updates do not count.
type Result struct {
	LocationsCreated  int `json:"locations_created"`
	PropertiesCreated int `json:"properties_created"`
	ImagesCreated     int `json:"images_created"`
}

// Importer loads property CSV files into the database. A whole run executes
// inside one transaction: any failure rolls everything back.
type Importer struct {
	db *gorm.DB
}

// New creates an importer on top of a GORM database handle.
func New(db *gorm.DB) *Importer {
	return &Importer{db: db}
}

// Run imports the CSV file at csvPath. With clear set, all images and
// properties (but not locations) are deleted before the first row is
// processed, inside the same transaction.
func (im *Importer) Run(csvPath string, clear bool) (Result, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{}, fmt.Errorf("%w: %s", ErrFileNotFound, csvPath)
		}
		return Result{}, err
	}
	defer file.Close()

	return im.RunReader(file, clear)
}

// RunReader imports CSV data from an arbitrary reader (file, HTTP upload).
// A UTF-8 byte-order mark is tolerated.
func (im *Importer) RunReader(r io.Reader, clear bool) (Result, error) {
	buffered := bufio.NewReader(r)
	if lead, err := buffered.Peek(3); err == nil && bytes.Equal(lead, []byte{0xEF, 0xBB, 0xBF}) {
		buffered.Discard(3)
	}

	reader := csv.NewReader(buffered)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF || (err == nil && len(header) == 0) {
		return Result{}, ErrMissingHeader
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to read csv header: %w", err)
	}

	var result Result
	err = im.db.Transaction(func(tx *gorm.DB) error {
		if clear {
			if err := clearListings(tx); err != nil {
				return err
			}
			log.Println("[import] cleared existing properties and images")
		}

		for {
			record, err := reader.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				return fmt.Errorf("failed to read csv record: %w", err)
			}

			row := make(Row, len(header))
			for i, column := range header {
				if i < len(record) {
					row[column] = record[i]
				}
			}

			if err := importRow(tx, row, &result); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return Result{}, err
	}

	log.Printf("[import] completed: locations=%d properties=%d images=%d",
		result.LocationsCreated, result.PropertiesCreated, result.ImagesCreated)
	return result, nil
}

// clearListings wipes images and properties while preserving locations.
// Change history rows would dangle without their properties, so they go too.
func clearListings(tx *gorm.DB) error {
	if err := tx.Where("1 = 1").Delete(&models.Image{}).Error; err != nil {
		return err
	}
	if err := tx.Where("1 = 1").Delete(&models.PropertyChange{}).Error; err != nil {
		return err
	}
	return tx.Where("1 = 1").Delete(&models.Property{}).Error
}

// importRow processes a single CSV row: location upsert, slug assignment,
// property upsert, image replacement. Rows without a resolvable title are
// skipped entirely.
func importRow(tx *gorm.DB, row Row, result *Result) error {
	title := row.Value(titleAliases, "")
	if title == "" {
		return nil
	}

	location, err := upsertLocation(tx, row, result)
	if err != nil {
		return err
	}

	key, assigned, err := resolveUpsertKey(tx, row, title)
	if err != nil {
		return err
	}

	fields := models.Property{
		LocationID:    location.ID,
		Title:         title,
		Description:   row.Value(descriptionAliases, ""),
		PricePerNight: row.DecimalString(priceAliases, "0.00"),
		Bedrooms:      row.Int(bedroomsAliases, 1),
		Bathrooms:     row.Int(bathroomsAliases, 1),
		MaxGuests:     row.Int(maxGuestsAliases, 1),
		IsActive:      row.Bool(isActiveAliases, "true"),
	}

	property, created, err := upsertProperty(tx, key, assigned, fields)
	if err != nil {
		return err
	}
	if created {
		result.PropertiesCreated++
	}

	return replaceImages(tx, property, row, result)
}

// upsertLocation finds or creates the row's location by unique name. On an
// existing location, non-blank resolved values overwrite differing stored
// ones; blanks never erase data.
func upsertLocation(tx *gorm.DB, row Row, result *Result) (*models.Location, error) {
	name := row.Value(locationAliases, "Unknown")
	city := row.Value(cityAliases, "")
	state := row.Value(stateAliases, "")
	country := row.Value(countryAliases, "")

	var location models.Location
	err := tx.Where("name = ?", name).First(&location).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		location = models.Location{Name: name, City: city, State: state, Country: country}
		if err := tx.Create(&location).Error; err != nil {
			return nil, err
		}
		result.LocationsCreated++
		return &location, nil
	}
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if city != "" && location.City != city {
		updates["city"] = city
		location.City = city
	}
	if state != "" && location.State != state {
		updates["state"] = state
		location.State = state
	}
	if country != "" && location.Country != country {
		updates["country"] = country
		location.Country = country
	}
	if len(updates) > 0 {
		if err := tx.Model(&location).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return &location, nil
}

// upsertKey selects the identity a property row is keyed by: an explicit
// numeric id from the CSV, or the computed slug.
type upsertKey struct {
	byID bool
	id   int
	slug string
}

// resolveUpsertKey computes the row's upsert key and its assigned slug.
// When the row carries an id, the slug gets uniqueness suffixes against
// every other property; when keyed by slug, the base slug is the identity
// itself and is used as-is.
func resolveUpsertKey(tx *gorm.DB, row Row, title string) (upsertKey, string, error) {
	base := ""
	if source := row.Value(slugSourceAliases, ""); source != "" {
		base = slug.ForSource(source)
	}
	if base == "" {
		base = slug.ForTitle(title)
	}

	sourceID := row.OptionalInt(idAliases)
	if sourceID == nil {
		return upsertKey{slug: base}, base, nil
	}

	var probeErr error
	assigned := slug.Unique(base, func(candidate string) bool {
		var count int64
		err := tx.Model(&models.Property{}).
			Where("slug = ? AND id <> ?", candidate, *sourceID).
			Count(&count).Error
		if err != nil {
			probeErr = err
			return false
		}
		return count > 0
	})
	if probeErr != nil {
		return upsertKey{}, "", probeErr
	}

	return upsertKey{byID: true, id: *sourceID}, assigned, nil
}

// upsertProperty creates or updates the property identified by key,
// replacing all resolved fields. Field changes on the update path are
// recorded for the admin change feed.
func upsertProperty(tx *gorm.DB, key upsertKey, assigned string, fields models.Property) (*models.Property, bool, error) {
	var existing models.Property
	var err error
	if key.byID {
		err = tx.Where("id = ?", key.id).First(&existing).Error
	} else {
		err = tx.Where("slug = ?", key.slug).First(&existing).Error
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		property := fields
		property.Slug = assigned
		if key.byID {
			property.ID = uint(key.id)
		}
		if err := tx.Create(&property).Error; err != nil {
			return nil, false, err
		}
		return &property, true, nil
	}
	if err != nil {
		return nil, false, err
	}

	updated := existing
	updated.LocationID = fields.LocationID
	updated.Title = fields.Title
	updated.Description = fields.Description
	updated.PricePerNight = fields.PricePerNight
	updated.Bedrooms = fields.Bedrooms
	updated.Bathrooms = fields.Bathrooms
	updated.MaxGuests = fields.MaxGuests
	updated.IsActive = fields.IsActive
	if key.byID {
		// The slug follows an id-keyed row; a slug-keyed row already is its slug.
		updated.Slug = assigned
	}

	if err := history.Record(tx, history.Diff(&existing, &updated)); err != nil {
		return nil, false, err
	}
	if err := tx.Save(&updated).Error; err != nil {
		return nil, false, err
	}

	return &updated, false, nil
}

// replaceImages swaps the property's URL-backed images for the row's
// resolved list. Uploaded-file images are left untouched, and a row with no
// image columns leaves everything as is.
func replaceImages(tx *gorm.DB, property *models.Property, row Row, result *Result) error {
	urls := ExtractImageURLs(row)
	if len(urls) == 0 {
		return nil
	}

	if err := tx.Where("property_id = ? AND image_url <> ''", property.ID).
		Delete(&models.Image{}).Error; err != nil {
		return err
	}

	for i, url := range urls {
		image := models.Image{
			PropertyID: property.ID,
			ImageURL:   url,
			IsPrimary:  i == 0,
			AltText:    fmt.Sprintf("%s image %d", property.Title, i+1),
		}
		if err := tx.Create(&image).Error; err != nil {
			return err
		}
		result.ImagesCreated++
	}

	return nil
}
