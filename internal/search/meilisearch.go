package search

import (
	"strconv"

	"github.com/meilisearch/meilisearch-go"

	"vacation-rental-portal/internal/models"
)

type SearchClient struct {
	client *meilisearch.Client
	index  string
}

// PropertyDocument is the search-index projection of a property. Location
// fields and the primary image URL are denormalized so hits render without a
// database round trip.
type PropertyDocument struct {
	ID            uint    `json:"id"`
	Title         string  `json:"title"`
	Slug          string  `json:"slug"`
	Description   string  `json:"description"`
	LocationName  string  `json:"location_name"`
	City          string  `json:"city"`
	Country       string  `json:"country"`
	PricePerNight float64 `json:"price_per_night"`
	Bedrooms      int     `json:"bedrooms"`
	Bathrooms     int     `json:"bathrooms"`
	MaxGuests     int     `json:"max_guests"`
	IsActive      bool    `json:"is_active"`
	PrimaryImage  string  `json:"primary_image"`
}

func NewSearchClient(host, apiKey string) *SearchClient {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   host,
		APIKey: apiKey,
	})

	return &SearchClient{
		client: client,
		index:  "properties",
	}
}

// InitIndex initializes the Meilisearch index
func (s *SearchClient) InitIndex() error {
	_, err := s.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        s.index,
		PrimaryKey: "id",
	})
	// Ignore error if index already exists
	if err != nil && err.Error() != "index already exists" {
		return err
	}

	_, err = s.client.Index(s.index).UpdateSearchableAttributes(&[]string{
		"title",
		"description",
		"location_name",
		"city",
		"country",
	})
	if err != nil {
		return err
	}

	_, err = s.client.Index(s.index).UpdateFilterableAttributes(&[]string{
		"id",
		"price_per_night",
		"bedrooms",
		"bathrooms",
		"max_guests",
		"is_active",
	})
	if err != nil {
		return err
	}

	_, err = s.client.Index(s.index).UpdateSortableAttributes(&[]string{
		"price_per_night",
		"bedrooms",
	})
	return err
}

// IndexProperty indexes a single property
func (s *SearchClient) IndexProperty(doc PropertyDocument) error {
	_, err := s.client.Index(s.index).AddDocuments([]PropertyDocument{doc})
	return err
}

// IndexProperties indexes multiple properties
func (s *SearchClient) IndexProperties(docs []PropertyDocument) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := s.client.Index(s.index).AddDocuments(docs)
	return err
}

// DeleteProperty removes a property from the index
func (s *SearchClient) DeleteProperty(id uint) error {
	_, err := s.client.Index(s.index).DeleteDocument(formatUint(id))
	return err
}

// ClearIndex drops every document, used before a full reindex.
func (s *SearchClient) ClearIndex() error {
	_, err := s.client.Index(s.index).DeleteAllDocuments()
	return err
}

// Document builds the index projection for a property. The images slice must
// already be in display order (primary first).
func Document(p *models.Property, price float64, primaryImage string) PropertyDocument {
	return PropertyDocument{
		ID:            p.ID,
		Title:         p.Title,
		Slug:          p.Slug,
		Description:   p.Description,
		LocationName:  p.Location.Name,
		City:          p.Location.City,
		Country:       p.Location.Country,
		PricePerNight: price,
		Bedrooms:      p.Bedrooms,
		Bathrooms:     p.Bathrooms,
		MaxGuests:     p.MaxGuests,
		IsActive:      p.IsActive,
		PrimaryImage:  primaryImage,
	}
}

func formatUint(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
