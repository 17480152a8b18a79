package syncer

import (
	"fmt"
	"time"

	"recommender/internal/logbuffer"
	"recommender/internal/logger"
	"recommender/internal/models"
	"recommender/internal/stacc"
)

// PageSize is how many products go into one catalog_sync dispatch.
const PageSize = 50

// ProductSource pages through the published, in-stock catalog.
type ProductSource interface {
	ListProducts(offset, limit int) ([]models.Product, error)
}

// CatalogSyncer pushes the full catalog in bulk batches. Unlike the log
// flusher it keeps paginating past a failed page: the remote side replaces
// by item_id, so a rerun fills any holes.
type CatalogSyncer struct {
	api     Dispatcher
	source  ProductSource
	sink    *logbuffer.Sink
	logger  *logger.Logger
	timeout time.Duration
}

func NewCatalogSyncer(api Dispatcher, source ProductSource, sink *logbuffer.Sink, logger *logger.Logger, timeout time.Duration) *CatalogSyncer {
	return &CatalogSyncer{
		api:     api,
		source:  source,
		sink:    sink,
		logger:  logger,
		timeout: timeout,
	}
}

// Sync walks the catalog from page 0 until an empty page. Only a source
// read failure aborts the run.
func (cs *CatalogSyncer) Sync() error {
	offset := 0
	for {
		products, err := cs.source.ListProducts(offset, PageSize)
		if err != nil {
			cs.logger.Error("Failed to read catalog page at offset %d: %v", offset, err)
			return err
		}
		if len(products) == 0 {
			break
		}
		offset += PageSize

		bulk := make([]map[string]interface{}, 0, len(products))
		for _, product := range products {
			bulk = append(bulk, map[string]interface{}{
				"item_id":  itemID(product),
				"name":     product.Name,
				"price":    product.Price,
				"currency": product.Currency,
			})
		}

		payload := map[string]interface{}{
			"bulk":       bulk,
			"properties": map[string]interface{}{},
		}

		res := cs.api.Send(stacc.OpCatalog, payload, cs.timeout)
		if !res.OK {
			cs.sink.LogError("Catalog page sync failed: "+res.Error(), map[string]interface{}{
				"offset": fmt.Sprintf("%d", offset-PageSize),
				"size":   len(bulk),
			})
		}
	}
	return nil
}

func itemID(product models.Product) string {
	if product.ExternalID != "" {
		return product.ExternalID
	}
	return product.ID
}
