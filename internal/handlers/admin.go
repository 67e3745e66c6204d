package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vacation-rental-portal/internal/database"
	"vacation-rental-portal/internal/history"
	"vacation-rental-portal/internal/importer"
	"vacation-rental-portal/internal/models"
	"vacation-rental-portal/internal/scheduler"
	"vacation-rental-portal/internal/search"
	"vacation-rental-portal/internal/storage"
)

// AdminHandler handles admin-related requests
type AdminHandler struct {
	store        *database.GormDB
	media        *storage.Storage
	history      *history.Service
	scheduler    *scheduler.Scheduler
	search       *search.SearchClient
	mediaBaseURL string
}

// NewAdminHandler creates a new admin handler. searchClient may be nil when
// search is disabled; mutations then skip index updates.
func NewAdminHandler(store *database.GormDB, media *storage.Storage, sched *scheduler.Scheduler, searchClient *search.SearchClient, mediaBaseURL string) *AdminHandler {
	return &AdminHandler{
		store:        store,
		media:        media,
		history:      history.NewService(store.DB()),
		scheduler:    sched,
		search:       searchClient,
		mediaBaseURL: mediaBaseURL,
	}
}

// syncSearch pushes one property's current state into the search index,
// removing it when it no longer exists or went inactive. Index failures are
// logged, never surfaced to the admin request.
func (h *AdminHandler) syncSearch(propertyID uint) {
	if h.search == nil {
		return
	}

	var property models.Property
	err := h.store.DB().
		Preload("Location").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order(models.ImageOrder)
		}).
		First(&property, propertyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !property.IsActive) {
		if err := h.search.DeleteProperty(propertyID); err != nil {
			log.Printf("[admin] search delete failed for property %d: %v", propertyID, err)
		}
		return
	}
	if err != nil {
		log.Printf("[admin] search sync load failed for property %d: %v", propertyID, err)
		return
	}

	if err := h.search.IndexProperty(search.DocumentFor(&property, h.mediaBaseURL)); err != nil {
		log.Printf("[admin] search index failed for property %d: %v", propertyID, err)
	}
}

// RegisterRoutes mounts the admin API on a router group.
func (h *AdminHandler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/stats", h.GetStats)

	admin.GET("/locations", h.ListLocations)
	admin.POST("/locations", h.CreateLocation)
	admin.PUT("/locations/:id", h.UpdateLocation)
	admin.DELETE("/locations/:id", h.DeleteLocation)

	admin.GET("/properties", h.ListProperties)
	admin.POST("/properties", h.CreateProperty)
	admin.PUT("/properties/:id", h.UpdateProperty)
	admin.DELETE("/properties/:id", h.DeleteProperty)

	admin.GET("/images", h.ListImages)
	admin.POST("/images", h.CreateImage)
	admin.POST("/images/upload", h.UploadImage)
	admin.PUT("/images/:id", h.UpdateImage)
	admin.DELETE("/images/:id", h.DeleteImage)

	admin.POST("/import", h.RunImport)
	admin.GET("/changes/recent", h.GetRecentChanges)
	admin.POST("/search/reindex", h.TriggerReindex)
}

// GetStats returns entity counts for the dashboard
func (h *AdminHandler) GetStats(c *gin.Context) {
	db := h.store.DB()

	var locationCount, activeCount, inactiveCount, imageCount int64
	db.Model(&models.Location{}).Count(&locationCount)
	db.Model(&models.Property{}).Where("is_active = ?", true).Count(&activeCount)
	db.Model(&models.Property{}).Where("is_active = ?", false).Count(&inactiveCount)
	db.Model(&models.Image{}).Count(&imageCount)

	c.JSON(http.StatusOK, gin.H{
		"locations": locationCount,
		"properties": gin.H{
			"active":   activeCount,
			"inactive": inactiveCount,
			"total":    activeCount + inactiveCount,
		},
		"images": imageCount,
	})
}

// ListLocations returns locations, optionally filtered by a search term
func (h *AdminHandler) ListLocations(c *gin.Context) {
	query := h.store.DB().Model(&models.Location{})
	if term := c.Query("q"); term != "" {
		like := "%" + term + "%"
		query = query.Where(
			"(LOWER(name) LIKE LOWER(?) OR LOWER(city) LIKE LOWER(?) OR LOWER(state) LIKE LOWER(?) OR LOWER(country) LIKE LOWER(?))",
			like, like, like, like,
		)
	}

	var locations []models.Location
	if err := query.Order("name ASC").Find(&locations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"locations": locations,
		"count":     len(locations),
	})
}

type locationRequest struct {
	Name    string `json:"name" binding:"required"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// CreateLocation creates a location
func (h *AdminHandler) CreateLocation(c *gin.Context) {
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	location := models.Location{Name: req.Name, City: req.City, State: req.State, Country: req.Country}
	if err := h.store.DB().Create(&location).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, location)
}

// UpdateLocation updates a location
func (h *AdminHandler) UpdateLocation(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var location models.Location
	if err := h.store.DB().First(&location, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Location not found"})
		return
	}

	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	location.Name = req.Name
	location.City = req.City
	location.State = req.State
	location.Country = req.Country
	if err := h.store.DB().Save(&location).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, location)
}

// DeleteLocation deletes a location unless properties still reference it
func (h *AdminHandler) DeleteLocation(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	err := h.store.DeleteLocation(id)
	if errors.Is(err, database.ErrLocationInUse) {
		c.JSON(http.StatusConflict, gin.H{"error": "Location still has properties attached"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// ListProperties returns properties with admin filters and pagination
func (h *AdminHandler) ListProperties(c *gin.Context) {
	query := h.store.DB().Model(&models.Property{}).Preload("Location")

	if active := c.Query("is_active"); active != "" {
		if parsed, err := strconv.ParseBool(active); err == nil {
			query = query.Where("is_active = ?", parsed)
		}
	}
	if locationID := c.Query("location_id"); locationID != "" {
		if id, err := strconv.Atoi(locationID); err == nil {
			query = query.Where("location_id = ?", id)
		}
	}
	if term := c.Query("q"); term != "" {
		like := "%" + term + "%"
		query = query.Where("(LOWER(title) LIKE LOWER(?) OR LOWER(slug) LIKE LOWER(?))", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	var properties []models.Property
	err := query.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&properties).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"properties": properties,
		"total":      total,
		"limit":      limit,
		"offset":     offset,
	})
}

type propertyRequest struct {
	LocationID    uint   `json:"location_id" binding:"required"`
	Title         string `json:"title" binding:"required"`
	Slug          string `json:"slug"`
	Description   string `json:"description"`
	PricePerNight string `json:"price_per_night"`
	Bedrooms      *int   `json:"bedrooms"`
	Bathrooms     *int   `json:"bathrooms"`
	MaxGuests     *int   `json:"max_guests"`
	IsActive      *bool  `json:"is_active"`
}

func (req *propertyRequest) apply(p *models.Property) {
	p.LocationID = req.LocationID
	p.Title = req.Title
	p.Slug = req.Slug
	p.Description = req.Description
	if req.PricePerNight != "" {
		p.PricePerNight = req.PricePerNight
	} else if p.PricePerNight == "" {
		p.PricePerNight = "0.00"
	}
	if req.Bedrooms != nil {
		p.Bedrooms = *req.Bedrooms
	}
	if req.Bathrooms != nil {
		p.Bathrooms = *req.Bathrooms
	}
	if req.MaxGuests != nil {
		p.MaxGuests = *req.MaxGuests
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
}

// CreateProperty creates a property. A blank slug is auto-assigned from the
// title on save.
func (h *AdminHandler) CreateProperty(c *gin.Context) {
	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.store.GetLocationByID(req.LocationID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown location"})
		return
	}

	property := models.Property{Bedrooms: 1, Bathrooms: 1, MaxGuests: 1, IsActive: true}
	req.apply(&property)

	if err := h.store.DB().Create(&property).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	h.syncSearch(property.ID)
	c.JSON(http.StatusCreated, property)
}

// UpdateProperty updates a property
func (h *AdminHandler) UpdateProperty(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var property models.Property
	if err := h.store.DB().First(&property, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Slug == "" {
		// Keep the existing slug unless the admin explicitly replaces it.
		req.Slug = property.Slug
	}
	req.apply(&property)

	if err := h.store.DB().Save(&property).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	h.syncSearch(property.ID)
	c.JSON(http.StatusOK, property)
}

// DeleteProperty deletes a property and its images
func (h *AdminHandler) DeleteProperty(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.store.DeleteProperty(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.syncSearch(id)
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// ListImages returns a property's images, primary first
func (h *AdminHandler) ListImages(c *gin.Context) {
	propertyID, err := strconv.ParseUint(c.Query("property_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "property_id is required"})
		return
	}

	images, err := h.store.GetPropertyImages(uint(propertyID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"images": images,
		"count":  len(images),
	})
}

type imageRequest struct {
	PropertyID uint   `json:"property_id" binding:"required"`
	ImageURL   string `json:"image_url" binding:"required"`
	AltText    string `json:"alt_text"`
	IsPrimary  bool   `json:"is_primary"`
}

// CreateImage attaches an external-URL image to a property
func (h *AdminHandler) CreateImage(c *gin.Context) {
	var req imageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.DB().First(&models.Property{}, req.PropertyID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown property"})
		return
	}

	image := models.Image{
		PropertyID: req.PropertyID,
		ImageURL:   req.ImageURL,
		AltText:    req.AltText,
		IsPrimary:  req.IsPrimary,
	}
	if err := h.store.DB().Create(&image).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.syncSearch(image.PropertyID)
	c.JSON(http.StatusCreated, image)
}

// UploadImage stores an uploaded file for the property given in the
// property_id form field. The target property is fixed by the form and
// cannot be changed by the filename.
func (h *AdminHandler) UploadImage(c *gin.Context) {
	propertyID, err := strconv.ParseUint(c.PostForm("property_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "property_id is required"})
		return
	}

	var property models.Property
	if err := h.store.DB().First(&property, uint(propertyID)).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown property"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	relPath, err := h.media.SaveImage(file, fileHeader.Filename)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	image := models.Image{
		PropertyID: property.ID,
		FilePath:   relPath,
		AltText:    c.PostForm("alt_text"),
		IsPrimary:  c.PostForm("is_primary") == "true",
	}
	if err := h.store.DB().Create(&image).Error; err != nil {
		h.media.Remove(relPath)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Printf("[admin] uploaded image property_id=%d path=%s", property.ID, relPath)
	h.syncSearch(property.ID)
	c.JSON(http.StatusCreated, image)
}

// UpdateImage updates an image's URL, alt text or primary flag
func (h *AdminHandler) UpdateImage(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var image models.Image
	if err := h.store.DB().First(&image, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return
	}

	var req struct {
		ImageURL  *string `json:"image_url"`
		AltText   *string `json:"alt_text"`
		IsPrimary *bool   `json:"is_primary"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.ImageURL != nil {
		image.ImageURL = *req.ImageURL
	}
	if req.AltText != nil {
		image.AltText = *req.AltText
	}
	if req.IsPrimary != nil {
		image.IsPrimary = *req.IsPrimary
	}

	if err := h.store.DB().Save(&image).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.syncSearch(image.PropertyID)
	c.JSON(http.StatusOK, image)
}

// DeleteImage deletes an image row and its stored file, if any
func (h *AdminHandler) DeleteImage(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var image models.Image
	if err := h.store.DB().First(&image, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return
	}

	if err := h.store.DB().Delete(&image).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.media.Remove(image.FilePath); err != nil {
		log.Printf("[admin] failed to remove media file %s: %v", image.FilePath, err)
	}

	h.syncSearch(image.PropertyID)
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// RunImport runs the CSV importer on an uploaded file
func (h *AdminHandler) RunImport(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	clear := c.PostForm("clear") == "true"

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	result, err := importer.New(h.store.DB()).RunReader(file, clear)
	if errors.Is(err, importer.ErrMissingHeader) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Printf("[admin] import file=%s clear=%v locations=%d properties=%d images=%d",
		fileHeader.Filename, clear,
		result.LocationsCreated, result.PropertiesCreated, result.ImagesCreated)

	if h.search != nil {
		go func() {
			if _, err := search.Reindex(h.store.DB(), h.search, h.mediaBaseURL); err != nil {
				log.Printf("[admin] post-import reindex failed: %v", err)
			}
		}()
	}

	c.JSON(http.StatusOK, result)
}

// GetRecentChanges returns recent import-detected field changes
func (h *AdminHandler) GetRecentChanges(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "100")
	limit, _ := strconv.Atoi(limitStr)

	changes, err := h.history.Recent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"changes": changes,
		"count":   len(changes),
	})
}

// TriggerReindex kicks off a full search reindex
func (h *AdminHandler) TriggerReindex(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Search is not enabled"})
		return
	}

	log.Println("Admin: Manual reindex trigger requested")

	go func() {
		if err := h.scheduler.RunNow(); err != nil {
			log.Printf("Admin: Manual reindex failed: %v", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Reindex job started",
		"status":  "running",
	})
}

// paramID parses the :id path parameter, writing the error response itself.
func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}
