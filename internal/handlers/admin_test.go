package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vacation-rental-portal/internal/database"
	"vacation-rental-portal/internal/models"
	"vacation-rental-portal/internal/storage"
)

func newTestServer(t *testing.T) (*gin.Engine, *database.GormDB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.InitSchema())

	handler := NewAdminHandler(store, storage.New(t.TempDir()), nil, nil, "/media")
	r := gin.New()
	handler.RegisterRoutes(r.Group("/api/admin"))
	return r, store
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedLocation(t *testing.T, store *database.GormDB) models.Location {
	t.Helper()
	location := models.Location{Name: "Lisbon", City: "Lisbon", Country: "Portugal"}
	require.NoError(t, store.DB().Create(&location).Error)
	return location
}

func TestGetStats(t *testing.T) {
	r, store := newTestServer(t)
	location := seedLocation(t, store)
	require.NoError(t, store.DB().Create(&models.Property{
		LocationID: location.ID, Title: "Beach House", Slug: "beach-house",
		PricePerNight: "100.00", Bedrooms: 1, Bathrooms: 1, MaxGuests: 2, IsActive: true,
	}).Error)

	w := doJSON(t, r, http.MethodGet, "/api/admin/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 1, body["locations"])

	properties := body["properties"].(map[string]interface{})
	assert.EqualValues(t, 1, properties["active"])
	assert.EqualValues(t, 0, properties["inactive"])
}

func TestCreateLocationValidation(t *testing.T) {
	r, _ := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/api/admin/locations", gin.H{"city": "Lisbon"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "name is required")

	w = doJSON(t, r, http.MethodPost, "/api/admin/locations", gin.H{"name": "Lisbon", "country": "Portugal"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/admin/locations", gin.H{"name": "Lisbon"})
	assert.Equal(t, http.StatusConflict, w.Code, "location names are unique")
}

func TestDeleteLocationInUse(t *testing.T) {
	r, store := newTestServer(t)
	location := seedLocation(t, store)
	property := models.Property{
		LocationID: location.ID, Title: "Beach House", Slug: "beach-house",
		PricePerNight: "100.00", Bedrooms: 1, Bathrooms: 1, MaxGuests: 2, IsActive: true,
	}
	require.NoError(t, store.DB().Create(&property).Error)

	w := doJSON(t, r, http.MethodDelete, "/api/admin/locations/1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	require.NoError(t, store.DeleteProperty(property.ID))
	w = doJSON(t, r, http.MethodDelete, "/api/admin/locations/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListPropertiesCombinedFilters(t *testing.T) {
	r, store := newTestServer(t)
	location := seedLocation(t, store)
	for _, p := range []models.Property{
		{LocationID: location.ID, Title: "Beach House", Slug: "beach-house",
			PricePerNight: "100.00", Bedrooms: 1, Bathrooms: 1, MaxGuests: 2, IsActive: true},
		{LocationID: location.ID, Title: "Beach Shack", Slug: "beach-shack",
			PricePerNight: "40.00", Bedrooms: 1, Bathrooms: 1, MaxGuests: 2, IsActive: false},
	} {
		require.NoError(t, store.DB().Create(&p).Error)
	}

	// The title search must stay inside the is_active filter.
	w := doJSON(t, r, http.MethodGet, "/api/admin/properties?q=beach&is_active=false", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Properties []models.Property `json:"properties"`
		Total      int64             `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Properties, 1)
	assert.Equal(t, "beach-shack", body.Properties[0].Slug)
	assert.EqualValues(t, 1, body.Total)
}

func TestCreatePropertyAssignsSlug(t *testing.T) {
	r, store := newTestServer(t)
	location := seedLocation(t, store)

	w := doJSON(t, r, http.MethodPost, "/api/admin/properties", gin.H{
		"location_id":     location.ID,
		"title":           "Ocean View Apartment",
		"price_per_night": "150.00",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Property
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "ocean-view-apartment", created.Slug)
	assert.Equal(t, 1, created.Bedrooms, "defaults apply when fields are omitted")
	assert.True(t, created.IsActive)
}

func TestCreatePropertyUnknownLocation(t *testing.T) {
	r, _ := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/api/admin/properties", gin.H{
		"location_id": 99,
		"title":       "Orphan",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdatePropertyKeepsSlugWhenOmitted(t *testing.T) {
	r, store := newTestServer(t)
	location := seedLocation(t, store)
	property := models.Property{
		LocationID: location.ID, Title: "Beach House", Slug: "beach-house",
		PricePerNight: "100.00", Bedrooms: 1, Bathrooms: 1, MaxGuests: 2, IsActive: true,
	}
	require.NoError(t, store.DB().Create(&property).Error)

	w := doJSON(t, r, http.MethodPut, "/api/admin/properties/1", gin.H{
		"location_id":     location.ID,
		"title":           "Beach House Deluxe",
		"price_per_night": "120.00",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.Property
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "beach-house", updated.Slug)
	assert.Equal(t, "Beach House Deluxe", updated.Title)
}

func TestUploadImage(t *testing.T) {
	r, store := newTestServer(t)
	location := seedLocation(t, store)
	property := models.Property{
		LocationID: location.ID, Title: "Beach House", Slug: "beach-house",
		PricePerNight: "100.00", Bedrooms: 1, Bathrooms: 1, MaxGuests: 2, IsActive: true,
	}
	require.NoError(t, store.DB().Create(&property).Error)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	require.NoError(t, form.WriteField("property_id", "1"))
	require.NoError(t, form.WriteField("is_primary", "true"))
	part, err := form.CreateFormFile("file", "photo.png")
	require.NoError(t, err)
	part.Write([]byte("not-really-a-png"))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/images/upload", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var image models.Image
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &image))
	assert.EqualValues(t, 1, image.PropertyID)
	assert.True(t, image.IsPrimary)
	assert.True(t, strings.HasPrefix(image.FilePath, "properties/"))
	assert.True(t, strings.HasSuffix(image.FilePath, ".png"))
}

func TestUploadImageRequiresProperty(t *testing.T) {
	r, _ := newTestServer(t)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	require.NoError(t, form.WriteField("property_id", "42"))
	part, err := form.CreateFormFile("file", "photo.jpg")
	require.NoError(t, err)
	part.Write([]byte("data"))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/images/upload", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunImportEndpoint(t *testing.T) {
	r, store := newTestServer(t)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", "listings.csv")
	require.NoError(t, err)
	part.Write([]byte("title,location_name,price_per_night\nBeach House,Lisbon,120\n"))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/import", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.EqualValues(t, 1, result["properties_created"])
	assert.EqualValues(t, 1, result["locations_created"])

	var count int64
	store.DB().Model(&models.Property{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestTriggerReindexWithoutSearch(t *testing.T) {
	r, _ := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/api/admin/search/reindex", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
