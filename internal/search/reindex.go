package search

import (
	"log"
	"strconv"

	"gorm.io/gorm"

	"vacation-rental-portal/internal/models"
)

const reindexBatchSize = 500

// Reindex rebuilds the search index from every active property in the
// database. Returns the number of documents pushed.
func Reindex(db *gorm.DB, client *SearchClient, mediaBaseURL string) (int, error) {
	if err := client.ClearIndex(); err != nil {
		return 0, err
	}

	indexed := 0
	var batch []models.Property
	err := db.
		Preload("Location").
		Preload("Images", func(tx *gorm.DB) *gorm.DB {
			return tx.Order(models.ImageOrder)
		}).
		Where("is_active = ?", true).
		FindInBatches(&batch, reindexBatchSize, func(tx *gorm.DB, _ int) error {
			docs := make([]PropertyDocument, 0, len(batch))
			for i := range batch {
				docs = append(docs, DocumentFor(&batch[i], mediaBaseURL))
			}
			if err := client.IndexProperties(docs); err != nil {
				return err
			}
			indexed += len(docs)
			return nil
		}).Error
	if err != nil {
		return indexed, err
	}

	log.Printf("[search] reindexed %d properties", indexed)
	return indexed, nil
}

// DocumentFor projects a loaded property (location and ordered images
// preloaded) into its index document.
func DocumentFor(p *models.Property, mediaBaseURL string) PropertyDocument {
	price, err := strconv.ParseFloat(p.PricePerNight, 64)
	if err != nil {
		price = 0
	}

	primary := ""
	if len(p.Images) > 0 {
		primary = p.Images[0].DisplayURL(mediaBaseURL)
	}

	return Document(p, price, primary)
}
