package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"vacation-rental-portal/internal/config"
	"vacation-rental-portal/internal/database"
	"vacation-rental-portal/internal/handlers"
	"vacation-rental-portal/internal/models"
	"vacation-rental-portal/internal/scheduler"
	"vacation-rental-portal/internal/search"
	"vacation-rental-portal/internal/storage"
)

// listingStore is the read side of the public API. Both the GORM store and
// the raw Postgres store satisfy it.
type listingStore interface {
	ListProperties(filters database.PropertyFilters) (*database.PaginatedProperties, error)
	GetPropertyBySlug(slug string) (*models.Property, error)
	AutocompleteLocations(term string, limit int) ([]models.Location, error)
}

var (
	cfg          *config.Config
	store        listingStore
	gormStore    *database.GormDB
	searchClient *search.SearchClient
	jobScheduler *scheduler.Scheduler
)

func main() {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	configPath := getEnv("CONFIG_PATH", "config/config.yaml")
	var err error
	cfg, err = config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := initDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if cfg.Search.Enabled {
		host := getEnv("MEILISEARCH_HOST", cfg.Search.Meilisearch.Host)
		apiKey := getEnv("MEILI_MASTER_KEY", cfg.Search.Meilisearch.APIKey)
		searchClient = search.NewSearchClient(host, apiKey)
		if err := searchClient.InitIndex(); err != nil {
			log.Printf("Warning: Failed to initialize search index: %v", err)
		} else {
			log.Printf("Search: Connected to Meilisearch at %s", host)
		}
	} else {
		log.Println("Search: Disabled in configuration")
	}

	if gormStore != nil {
		jobScheduler = scheduler.NewScheduler(gormStore.DB(), searchClient, cfg)
		if err := jobScheduler.Start(); err != nil {
			log.Printf("Warning: Failed to start scheduler: %v", err)
		}
		defer jobScheduler.Stop()
	}

	r := setupRouter()

	port := getEnv("PORT", strconv.Itoa(cfg.Server.Port))
	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// initDatabase connects the store configured in database.type. The mysql and
// sqlite backends go through GORM and get the full admin API; the postgres
// backend is the raw read-only store, so the server runs without admin routes.
func initDatabase() error {
	switch cfg.Database.Type {
	case "mysql":
		mc := cfg.Database.MySQL
		gdb, err := database.NewGormDB(
			getEnv("DB_HOST", mc.Host),
			getEnv("DB_PORT", strconv.Itoa(mc.Port)),
			getEnv("DB_USER", mc.User),
			getEnv("DB_PASSWORD", mc.Password),
			getEnv("DB_NAME", mc.Database),
		)
		if err != nil {
			return err
		}
		gormStore = gdb
		store = gdb
		log.Printf("Database: Connected to MySQL at %s", mc.Host)

	case "sqlite", "":
		gdb, err := database.NewSQLiteDB(cfg.Database.SQLite.Path)
		if err != nil {
			return err
		}
		gormStore = gdb
		store = gdb
		log.Printf("Database: Using SQLite at %s", cfg.Database.SQLite.Path)

	case "postgres":
		pc := cfg.Database.Postgres
		db, err := database.NewDB(
			getEnv("DB_HOST", pc.Host),
			getEnv("DB_PORT", strconv.Itoa(pc.Port)),
			getEnv("DB_USER", pc.User),
			getEnv("DB_PASSWORD", pc.Password),
			getEnv("DB_NAME", pc.Database),
		)
		if err != nil {
			return err
		}
		if err := db.InitSchema(); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
		store = db
		log.Printf("Database: Connected to PostgreSQL at %s (read-only mode)", pc.Host)

	default:
		return fmt.Errorf("unknown database type: %s", cfg.Database.Type)
	}

	if gormStore != nil {
		if err := gormStore.InitSchema(); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	return nil
}

func setupRouter() *gin.Engine {
	var r *gin.Engine
	if cfg.Logging.LogRequests {
		r = gin.Default()
	} else {
		r = gin.New()
		r.Use(gin.Recovery())
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", healthCheck)

	api := r.Group("/api")
	{
		api.GET("/properties", getProperties)
		api.GET("/properties/:slug", getProperty)
		api.GET("/locations/autocomplete", locationAutocomplete)
		api.GET("/search", searchProperties)
	}

	media := storage.New(cfg.Media.Root)
	r.Static(cfg.Media.BaseURL, media.Root())

	if gormStore != nil {
		admin := handlers.NewAdminHandler(gormStore, media, jobScheduler, searchClient, cfg.Media.BaseURL)
		admin.RegisterRoutes(r.Group("/api/admin"))
	} else {
		log.Println("Admin API: Disabled (read-only database backend)")
	}

	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// getProperties handles GET /api/properties
func getProperties(c *gin.Context) {
	filters := database.PropertyFilters{
		Location: c.Query("location"),
		Query:    c.Query("q"),
		MinPrice: parseFloatParam(c.Query("min_price")),
		MaxPrice: parseFloatParam(c.Query("max_price")),
	}
	filters.Limit, _ = strconv.Atoi(c.Query("limit"))
	filters.Offset, _ = strconv.Atoi(c.Query("offset"))

	page, err := store.ListProperties(filters)
	if err != nil {
		log.Printf("[api] list properties failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch properties"})
		return
	}

	results := make([]gin.H, 0, len(page.Properties))
	for i := range page.Properties {
		results = append(results, propertySummary(&page.Properties[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"properties": results,
		"total":      page.Total,
		"limit":      page.Limit,
		"offset":     page.Offset,
	})
}

// getProperty handles GET /api/properties/:slug
func getProperty(c *gin.Context) {
	property, err := store.GetPropertyBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		log.Printf("[api] get property failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch property"})
		return
	}

	images := make([]gin.H, 0, len(property.Images))
	for _, img := range property.Images {
		images = append(images, gin.H{
			"display_url": img.DisplayURL(cfg.Media.BaseURL),
			"alt_text":    img.AltText,
			"is_primary":  img.IsPrimary,
		})
	}

	detail := propertySummary(property)
	detail["description"] = property.Description
	detail["images"] = images
	detail["created_at"] = property.CreatedAt
	detail["updated_at"] = property.UpdatedAt

	c.JSON(http.StatusOK, detail)
}

// locationAutocomplete handles GET /api/locations/autocomplete
func locationAutocomplete(c *gin.Context) {
	term := c.Query("q")
	if term == "" {
		c.JSON(http.StatusOK, gin.H{"locations": []gin.H{}})
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	locations, err := store.AutocompleteLocations(term, limit)
	if err != nil {
		log.Printf("[api] autocomplete failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch locations"})
		return
	}

	results := make([]gin.H, 0, len(locations))
	for _, loc := range locations {
		results = append(results, gin.H{
			"id":      loc.ID,
			"name":    loc.Name,
			"city":    loc.City,
			"country": loc.Country,
			"label":   loc.Label(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"locations": results})
}

// searchProperties handles GET /api/search via Meilisearch
func searchProperties(c *gin.Context) {
	if searchClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Search is not enabled"})
		return
	}

	params := search.FilterParams{
		Query:    c.Query("q"),
		MinPrice: parseFloatParam(c.Query("min_price")),
		MaxPrice: parseFloatParam(c.Query("max_price")),
		SortBy:   c.Query("sort"),
	}
	if raw := c.Query("min_beds"); raw != "" {
		if beds, err := strconv.Atoi(raw); err == nil {
			params.MinBeds = &beds
		}
	}
	params.Limit, _ = strconv.ParseInt(c.Query("limit"), 10, 64)
	params.Offset, _ = strconv.ParseInt(c.Query("offset"), 10, 64)

	result, err := searchClient.FilterSearch(params)
	if err != nil {
		log.Printf("[api] search failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func propertySummary(p *models.Property) gin.H {
	primary := ""
	if len(p.Images) > 0 {
		primary = p.Images[0].DisplayURL(cfg.Media.BaseURL)
	}

	return gin.H{
		"id":              p.ID,
		"title":           p.Title,
		"slug":            p.Slug,
		"location_name":   p.Location.Name,
		"price_per_night": p.PricePerNight,
		"bedrooms":        p.Bedrooms,
		"bathrooms":       p.Bathrooms,
		"max_guests":      p.MaxGuests,
		"location": gin.H{
			"id":      p.Location.ID,
			"name":    p.Location.Name,
			"city":    p.Location.City,
			"state":   p.Location.State,
			"country": p.Location.Country,
			"label":   p.Location.Label(),
		},
		"primary_image": primary,
	}
}

func parseFloatParam(raw string) *float64 {
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &value
}

// getEnv gets environment variable with fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
