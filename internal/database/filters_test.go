package database

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vacation-rental-portal/internal/models"
)

func newTestStore(t *testing.T) *GormDB {
	t.Helper()
	store, err := NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.InitSchema())
	return store
}

func seedListings(t *testing.T, store *GormDB) {
	t.Helper()
	db := store.DB()

	paris := models.Location{Name: "Paris", City: "Paris", Country: "France"}
	london := models.Location{Name: "London", City: "London", Country: "United Kingdom"}
	tokyo := models.Location{Name: "Tokyo", City: "Tokyo", Country: "Japan"}
	require.NoError(t, db.Create(&paris).Error)
	require.NoError(t, db.Create(&london).Error)
	require.NoError(t, db.Create(&tokyo).Error)

	properties := []models.Property{
		{LocationID: paris.ID, Title: "Paris Loft", Slug: "paris-loft", PricePerNight: "200.00", Bedrooms: 1, Bathrooms: 1, MaxGuests: 2, IsActive: true},
		{LocationID: london.ID, Title: "London Flat", Slug: "london-flat", Description: "Near the river", PricePerNight: "150.00", Bedrooms: 2, Bathrooms: 1, MaxGuests: 4, IsActive: true},
		{LocationID: tokyo.ID, Title: "Tokyo Studio", Slug: "tokyo-studio", PricePerNight: "90.00", Bedrooms: 1, Bathrooms: 1, MaxGuests: 2, IsActive: true},
		{LocationID: tokyo.ID, Title: "Hidden Listing", Slug: "hidden-listing", PricePerNight: "50.00", Bedrooms: 1, Bathrooms: 1, MaxGuests: 2, IsActive: false},
	}
	for i := range properties {
		require.NoError(t, db.Create(&properties[i]).Error)
	}
}

func slugsOf(page *PaginatedProperties) []string {
	slugs := make([]string, 0, len(page.Properties))
	for _, p := range page.Properties {
		slugs = append(slugs, p.Slug)
	}
	return slugs
}

func TestListPropertiesExcludesInactive(t *testing.T) {
	store := newTestStore(t)
	seedListings(t, store)

	page, err := store.ListProperties(PropertyFilters{})
	require.NoError(t, err)

	assert.EqualValues(t, 3, page.Total)
	assert.NotContains(t, slugsOf(page), "hidden-listing")
}

func TestListPropertiesLocationTerms(t *testing.T) {
	store := newTestStore(t)
	seedListings(t, store)

	// Comma-separated terms are OR'd.
	page, err := store.ListProperties(PropertyFilters{Location: "Paris,London"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"paris-loft", "london-flat"}, slugsOf(page))

	// Country names match too, case-insensitively.
	page, err = store.ListProperties(PropertyFilters{Location: "japan"})
	require.NoError(t, err)
	assert.Equal(t, []string{"tokyo-studio"}, slugsOf(page))
}

func TestListPropertiesLocationTermsExcludeInactive(t *testing.T) {
	store := newTestStore(t)
	seedListings(t, store)

	// The inactive listing is in Tokyo; OR'd terms must stay inside the
	// active-only scope.
	page, err := store.ListProperties(PropertyFilters{Location: "Paris,Tokyo"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"paris-loft", "tokyo-studio"}, slugsOf(page))
}

func TestListPropertiesQueryExcludesInactive(t *testing.T) {
	store := newTestStore(t)
	seedListings(t, store)

	page, err := store.ListProperties(PropertyFilters{Query: "hidden"})
	require.NoError(t, err)
	assert.Empty(t, page.Properties)
	assert.EqualValues(t, 0, page.Total)
}

func TestListPropertiesLocationTermsHonorPriceBounds(t *testing.T) {
	store := newTestStore(t)
	seedListings(t, store)

	// Both Tokyo listings fall outside the bound: the studio costs more, the
	// cheap one is inactive.
	max := 60.0
	page, err := store.ListProperties(PropertyFilters{Location: "Tokyo", MaxPrice: &max})
	require.NoError(t, err)
	assert.Empty(t, page.Properties)
}

func TestListPropertiesQuery(t *testing.T) {
	store := newTestStore(t)
	seedListings(t, store)

	page, err := store.ListProperties(PropertyFilters{Query: "river"})
	require.NoError(t, err)
	assert.Equal(t, []string{"london-flat"}, slugsOf(page), "description text is searched")

	page, err = store.ListProperties(PropertyFilters{Query: "loft"})
	require.NoError(t, err)
	assert.Equal(t, []string{"paris-loft"}, slugsOf(page))
}

func TestListPropertiesPriceBounds(t *testing.T) {
	store := newTestStore(t)
	seedListings(t, store)

	min := 100.0
	max := 180.0
	page, err := store.ListProperties(PropertyFilters{MinPrice: &min, MaxPrice: &max})
	require.NoError(t, err)
	assert.Equal(t, []string{"london-flat"}, slugsOf(page))
}

func TestListPropertiesPagination(t *testing.T) {
	store := newTestStore(t)
	seedListings(t, store)

	page, err := store.ListProperties(PropertyFilters{Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Len(t, page.Properties, 2)
	assert.Equal(t, 2, page.Limit)

	next, err := store.ListProperties(PropertyFilters{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, next.Properties, 1)
	assert.NotEqual(t, slugsOf(page)[0], slugsOf(next)[0])
}

func TestListPropertiesLimitCap(t *testing.T) {
	store := newTestStore(t)
	seedListings(t, store)

	page, err := store.ListProperties(PropertyFilters{Limit: 5000})
	require.NoError(t, err)
	assert.Equal(t, maxPageSize, page.Limit)
}

func TestGetPropertyBySlug(t *testing.T) {
	store := newTestStore(t)
	seedListings(t, store)

	property, err := store.GetPropertyBySlug("paris-loft")
	require.NoError(t, err)
	assert.Equal(t, "Paris Loft", property.Title)
	assert.Equal(t, "Paris", property.Location.Name)

	_, err = store.GetPropertyBySlug("hidden-listing")
	assert.Error(t, err, "inactive properties are invisible on the detail path")
}

func TestAutocompleteLocations(t *testing.T) {
	store := newTestStore(t)
	seedListings(t, store)

	locations, err := store.AutocompleteLocations("par", 10)
	require.NoError(t, err)
	require.Len(t, locations, 1)
	assert.Equal(t, "Paris", locations[0].Name)

	locations, err = store.AutocompleteLocations("kingdom", 10)
	require.NoError(t, err)
	require.Len(t, locations, 1)
	assert.Equal(t, "London", locations[0].Name)
}

func TestAutocompleteLocationsCapsLimit(t *testing.T) {
	store := newTestStore(t)
	for i := 0; i < 12; i++ {
		require.NoError(t, store.DB().Create(&models.Location{
			Name: fmt.Sprintf("District %02d", i), Country: "Portugal",
		}).Error)
	}

	locations, err := store.AutocompleteLocations("district", 50)
	require.NoError(t, err)
	assert.Len(t, locations, maxAutocompleteResults, "client limits cannot exceed the cap")
}

func TestDeleteLocationInUse(t *testing.T) {
	store := newTestStore(t)
	seedListings(t, store)

	var location models.Location
	require.NoError(t, store.DB().Where("name = ?", "Paris").First(&location).Error)

	err := store.DeleteLocation(location.ID)
	assert.ErrorIs(t, err, ErrLocationInUse)

	require.NoError(t, store.DB().Where("location_id = ?", location.ID).Delete(&models.Property{}).Error)
	assert.NoError(t, store.DeleteLocation(location.ID))
}

func TestDeletePropertyRemovesImages(t *testing.T) {
	store := newTestStore(t)
	seedListings(t, store)

	var property models.Property
	require.NoError(t, store.DB().Where("slug = ?", "paris-loft").First(&property).Error)
	require.NoError(t, store.DB().Create(&models.Image{PropertyID: property.ID, ImageURL: "https://img.example/a.jpg"}).Error)

	require.NoError(t, store.DeleteProperty(property.ID))

	var images int64
	store.DB().Model(&models.Image{}).Where("property_id = ?", property.ID).Count(&images)
	assert.EqualValues(t, 0, images)
}
