package database

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"vacation-rental-portal/internal/models"
)

// ErrLocationInUse is returned when deleting a location that still has
// properties attached.
var ErrLocationInUse = errors.New("location is referenced by properties")

type GormDB struct {
	db *gorm.DB
}

// NewGormDB connects to MySQL.
func NewGormDB(host, port, user, password, dbname string) (*GormDB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, dbname)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	})
	if err != nil {
		return nil, err
	}

	// Test connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	return &GormDB{db: db}, nil
}

// NewSQLiteDB opens (or creates) a SQLite database file. Used for local
// development and tests.
func NewSQLiteDB(path string) (*GormDB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	return &GormDB{db: db}, nil
}

// DB returns the underlying gorm.DB instance
func (gdb *GormDB) DB() *gorm.DB {
	return gdb.db
}

func (gdb *GormDB) Close() error {
	sqlDB, err := gdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitSchema creates tables using GORM AutoMigrate
func (gdb *GormDB) InitSchema() error {
	return gdb.db.AutoMigrate(
		&models.Location{},
		&models.Property{},
		&models.Image{},
		&models.PropertyChange{},
	)
}

// GetPropertyBySlug retrieves one property with its location and ordered
// images. Only active properties are visible on the public detail path.
func (gdb *GormDB) GetPropertyBySlug(slug string) (*models.Property, error) {
	var property models.Property
	err := gdb.db.
		Preload("Location").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order(models.ImageOrder)
		}).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&property).Error
	if err != nil {
		return nil, err
	}
	return &property, nil
}

// GetPropertyImages returns a property's images, primary first.
func (gdb *GormDB) GetPropertyImages(propertyID uint) ([]models.Image, error) {
	var images []models.Image
	err := gdb.db.Where("property_id = ?", propertyID).Order(models.ImageOrder).Find(&images).Error
	return images, err
}

// AutocompleteLocations returns locations whose name, city or country
// contains the term, ordered by name, at most 10. An empty term lists from
// the top alphabetically.
func (gdb *GormDB) AutocompleteLocations(term string, limit int) ([]models.Location, error) {
	if limit <= 0 || limit > maxAutocompleteResults {
		limit = maxAutocompleteResults
	}

	query := gdb.db.Model(&models.Location{})
	if term != "" {
		like := "%" + term + "%"
		query = query.Where(
			"LOWER(name) LIKE LOWER(?) OR LOWER(city) LIKE LOWER(?) OR LOWER(country) LIKE LOWER(?)",
			like, like, like,
		)
	}

	var locations []models.Location
	err := query.Order("name ASC").Limit(limit).Find(&locations).Error
	return locations, err
}

// GetLocationByID retrieves a location by primary key.
func (gdb *GormDB) GetLocationByID(id uint) (*models.Location, error) {
	var location models.Location
	if err := gdb.db.First(&location, id).Error; err != nil {
		return nil, err
	}
	return &location, nil
}

// DeleteLocation removes a location unless properties still reference it.
func (gdb *GormDB) DeleteLocation(id uint) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Property{}).Where("location_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrLocationInUse
		}
		return tx.Delete(&models.Location{}, id).Error
	})
}

// DeleteProperty removes a property and cascades its images.
func (gdb *GormDB) DeleteProperty(id uint) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", id).Delete(&models.Image{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Property{}, id).Error
	})
}
