package search

import (
	"fmt"
	"strings"

	"github.com/meilisearch/meilisearch-go"
)

type FilterParams struct {
	Query    string
	MinPrice *float64
	MaxPrice *float64
	MinBeds  *int
	SortBy   string
	Limit    int64
	Offset   int64
}

// SearchResult is one page of hits with the engine's total estimate.
type SearchResult struct {
	Hits           []PropertyDocument `json:"hits"`
	TotalHits      int64              `json:"total_hits"`
	ProcessingTime int64              `json:"processing_time_ms"`
}

// FilterSearch performs full-text search with filters. Only active
// properties are returned.
func (s *SearchClient) FilterSearch(params FilterParams) (*SearchResult, error) {
	filters := []string{"is_active = true"}

	if params.MinPrice != nil {
		filters = append(filters, fmt.Sprintf("price_per_night >= %g", *params.MinPrice))
	}
	if params.MaxPrice != nil {
		filters = append(filters, fmt.Sprintf("price_per_night <= %g", *params.MaxPrice))
	}
	if params.MinBeds != nil {
		filters = append(filters, fmt.Sprintf("bedrooms >= %d", *params.MinBeds))
	}

	if params.Limit <= 0 {
		params.Limit = 20
	}

	searchReq := &meilisearch.SearchRequest{
		Limit:  params.Limit,
		Offset: params.Offset,
		Filter: strings.Join(filters, " AND "),
	}

	if params.SortBy != "" {
		searchReq.Sort = []string{params.SortBy}
	}

	searchRes, err := s.client.Index(s.index).Search(params.Query, searchReq)
	if err != nil {
		return nil, err
	}

	hits := make([]PropertyDocument, 0, len(searchRes.Hits))
	for _, hit := range searchRes.Hits {
		hits = append(hits, parseDocumentFromHit(hit))
	}

	return &SearchResult{
		Hits:           hits,
		TotalHits:      searchRes.EstimatedTotalHits,
		ProcessingTime: searchRes.ProcessingTimeMs,
	}, nil
}

// parseDocumentFromHit converts a raw search hit back to a document
func parseDocumentFromHit(hit interface{}) PropertyDocument {
	hitMap, ok := hit.(map[string]interface{})
	if !ok {
		return PropertyDocument{}
	}

	doc := PropertyDocument{
		Title:        getString(hitMap, "title"),
		Slug:         getString(hitMap, "slug"),
		Description:  getString(hitMap, "description"),
		LocationName: getString(hitMap, "location_name"),
		City:         getString(hitMap, "city"),
		Country:      getString(hitMap, "country"),
		PrimaryImage: getString(hitMap, "primary_image"),
	}

	if id, ok := hitMap["id"].(float64); ok {
		doc.ID = uint(id)
	}
	if price, ok := hitMap["price_per_night"].(float64); ok {
		doc.PricePerNight = price
	}
	if beds, ok := hitMap["bedrooms"].(float64); ok {
		doc.Bedrooms = int(beds)
	}
	if baths, ok := hitMap["bathrooms"].(float64); ok {
		doc.Bathrooms = int(baths)
	}
	if guests, ok := hitMap["max_guests"].(float64); ok {
		doc.MaxGuests = int(guests)
	}
	if active, ok := hitMap["is_active"].(bool); ok {
		doc.IsActive = active
	}

	return doc
}

// getString safely extracts a string from map
func getString(m map[string]interface{}, key string) string {
	if val, ok := m[key].(string); ok {
		return val
	}
	return ""
}
