package database

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"vacation-rental-portal/internal/models"
)

// DB is the plain database/sql PostgreSQL store. It backs the read-only
// public API; the importer and admin API require the GORM store.
type DB struct {
	conn *sql.DB
}

func NewDB(host, port, user, password, dbname string) (*DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	return &DB{conn: conn}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// InitSchema creates the listing tables if they don't exist
func (db *DB) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS locations (
		id SERIAL PRIMARY KEY,
		name VARCHAR(200) NOT NULL UNIQUE,
		city VARCHAR(120) NOT NULL DEFAULT '',
		state VARCHAR(120) NOT NULL DEFAULT '',
		country VARCHAR(120) NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS properties (
		id SERIAL PRIMARY KEY,
		location_id INTEGER NOT NULL REFERENCES locations(id) ON DELETE RESTRICT,
		title VARCHAR(255) NOT NULL,
		slug VARCHAR(280) NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		price_per_night DECIMAL(10, 2) NOT NULL DEFAULT 0.00,
		bedrooms INTEGER NOT NULL DEFAULT 1,
		bathrooms INTEGER NOT NULL DEFAULT 1,
		max_guests INTEGER NOT NULL DEFAULT 1,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS images (
		id SERIAL PRIMARY KEY,
		property_id INTEGER NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		file_path VARCHAR(500) NOT NULL DEFAULT '',
		image_url VARCHAR(500) NOT NULL DEFAULT '',
		alt_text VARCHAR(255) NOT NULL DEFAULT '',
		is_primary BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_properties_created_at ON properties(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_properties_location_id ON properties(location_id);
	CREATE INDEX IF NOT EXISTS idx_images_property_id ON images(property_id);
	`
	_, err := db.conn.Exec(query)
	return err
}

// ListProperties retrieves one page of active properties with the same
// filter semantics as the GORM store.
func (db *DB) ListProperties(filters PropertyFilters) (*PaginatedProperties, error) {
	where := []string{"p.is_active = TRUE"}
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if terms := SplitLocationTerms(filters.Location); len(terms) > 0 {
		var clauses []string
		for _, term := range terms {
			like := arg("%" + strings.ToLower(term) + "%")
			clauses = append(clauses, fmt.Sprintf(
				"(LOWER(l.name) LIKE %[1]s OR LOWER(l.city) LIKE %[1]s OR LOWER(l.country) LIKE %[1]s)", like))
		}
		where = append(where, "("+strings.Join(clauses, " OR ")+")")
	}

	if q := strings.TrimSpace(filters.Query); q != "" {
		like := arg("%" + strings.ToLower(q) + "%")
		where = append(where, fmt.Sprintf(
			"(LOWER(p.title) LIKE %[1]s OR LOWER(p.description) LIKE %[1]s OR LOWER(l.name) LIKE %[1]s OR LOWER(l.city) LIKE %[1]s OR LOWER(l.country) LIKE %[1]s)", like))
	}

	if filters.MinPrice != nil {
		where = append(where, "p.price_per_night >= "+arg(*filters.MinPrice))
	}
	if filters.MaxPrice != nil {
		where = append(where, "p.price_per_night <= "+arg(*filters.MaxPrice))
	}

	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM properties p JOIN locations l ON l.id = p.location_id WHERE %s",
		whereClause)
	if err := db.conn.QueryRow(countQuery, args...).Scan(&total); err != nil {
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

	query := fmt.Sprintf(`
		SELECT p.id, p.location_id, p.title, p.slug, p.description, p.price_per_night,
			   p.bedrooms, p.bathrooms, p.max_guests, p.is_active, p.created_at, p.updated_at,
			   l.id, l.name, l.city, l.state, l.country
		FROM properties p
		JOIN locations l ON l.id = p.location_id
		WHERE %s
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT %s OFFSET %s`, whereClause, arg(limit), arg(offset))

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []models.Property
	for rows.Next() {
		var p models.Property
		err := rows.Scan(
			&p.ID, &p.LocationID, &p.Title, &p.Slug, &p.Description, &p.PricePerNight,
			&p.Bedrooms, &p.Bathrooms, &p.MaxGuests, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
			&p.Location.ID, &p.Location.Name, &p.Location.City, &p.Location.State, &p.Location.Country,
		)
		if err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &PaginatedProperties{
		Properties: properties,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
	}, nil
}

// GetPropertyBySlug retrieves one active property with location and images.
func (db *DB) GetPropertyBySlug(slug string) (*models.Property, error) {
	query := `
		SELECT p.id, p.location_id, p.title, p.slug, p.description, p.price_per_night,
			   p.bedrooms, p.bathrooms, p.max_guests, p.is_active, p.created_at, p.updated_at,
			   l.id, l.name, l.city, l.state, l.country
		FROM properties p
		JOIN locations l ON l.id = p.location_id
		WHERE p.slug = $1 AND p.is_active = TRUE
	`

	var p models.Property
	err := db.conn.QueryRow(query, slug).Scan(
		&p.ID, &p.LocationID, &p.Title, &p.Slug, &p.Description, &p.PricePerNight,
		&p.Bedrooms, &p.Bathrooms, &p.MaxGuests, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		&p.Location.ID, &p.Location.Name, &p.Location.City, &p.Location.State, &p.Location.Country,
	)
	if err != nil {
		return nil, err
	}

	imageRows, err := db.conn.Query(`
		SELECT id, property_id, file_path, image_url, alt_text, is_primary, created_at, updated_at
		FROM images
		WHERE property_id = $1
		ORDER BY is_primary DESC, id ASC`, p.ID)
	if err != nil {
		return nil, err
	}
	defer imageRows.Close()

	for imageRows.Next() {
		var img models.Image
		err := imageRows.Scan(
			&img.ID, &img.PropertyID, &img.FilePath, &img.ImageURL,
			&img.AltText, &img.IsPrimary, &img.CreatedAt, &img.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		p.Images = append(p.Images, img)
	}
	if err := imageRows.Err(); err != nil {
		return nil, err
	}

	return &p, nil
}

// AutocompleteLocations returns locations matching the term, at most 10.
func (db *DB) AutocompleteLocations(term string, limit int) ([]models.Location, error) {
	if limit <= 0 || limit > maxAutocompleteResults {
		limit = maxAutocompleteResults
	}

	query := `
		SELECT id, name, city, state, country
		FROM locations
		WHERE $1 = '' OR LOWER(name) LIKE $2 OR LOWER(city) LIKE $2 OR LOWER(country) LIKE $2
		ORDER BY name ASC
		LIMIT $3
	`
	like := "%" + strings.ToLower(term) + "%"

	rows, err := db.conn.Query(query, term, like, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []models.Location
	for rows.Next() {
		var l models.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.City, &l.State, &l.Country); err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}
