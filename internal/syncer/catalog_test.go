package syncer

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"recommender/internal/logbuffer"
	"recommender/internal/logger"
	"recommender/internal/models"
	"recommender/internal/stacc"
)

type fakeSource struct {
	products []models.Product
	failPage int // 1-based page read to fail, 0 = never
	reads    int
}

func (f *fakeSource) ListProducts(offset, limit int) ([]models.Product, error) {
	f.reads++
	if f.failPage == f.reads {
		return nil, errors.New("injected source failure")
	}
	if offset >= len(f.products) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.products) {
		end = len(f.products)
	}
	return f.products[offset:end], nil
}

func catalogOf(n int) []models.Product {
	products := make([]models.Product, 0, n)
	for i := 0; i < n; i++ {
		products = append(products, models.Product{
			ID:          fmt.Sprintf("p-%03d", i),
			ExternalID:  fmt.Sprintf("%d", i),
			Name:        fmt.Sprintf("Product %d", i),
			Price:       9.99,
			Currency:    "EUR",
			Status:      models.StatusPublish,
			StockStatus: models.StockStatusInStock,
		})
	}
	return products
}

func newCatalogFixture(t *testing.T, source *fakeSource) (*CatalogSyncer, *fakeDispatcher) {
	sink := logbuffer.NewSink(filepath.Join(t.TempDir(), "StaccDefault.log"), "1.0.0", "")
	api := &fakeDispatcher{}
	cs := NewCatalogSyncer(api, source, sink, logger.New("error"), time.Second)
	return cs, api
}

func TestSyncDispatchesCeilPages(t *testing.T) {
	source := &fakeSource{products: catalogOf(120)}
	cs, api := newCatalogFixture(t, source)

	if err := cs.Sync(); err != nil {
		t.Fatalf("Sync error: %v", err)
	}

	// ceil(120/50) = 3 dispatches: 50, 50, 20.
	if len(api.calls) != 3 {
		t.Fatalf("dispatches = %d, want 3", len(api.calls))
	}
	for _, op := range api.ops {
		if op != stacc.OpCatalog {
			t.Fatalf("op = %s, want catalog", op)
		}
	}

	last, ok := api.calls[2]["bulk"].([]map[string]interface{})
	if !ok {
		t.Fatalf("bulk payload has wrong shape: %T", api.calls[2]["bulk"])
	}
	if len(last) != 20 {
		t.Fatalf("last page = %d items, want 20", len(last))
	}
	item := last[0]
	for _, field := range []string{"item_id", "name", "price", "currency"} {
		if _, present := item[field]; !present {
			t.Fatalf("bulk item missing %s: %v", field, item)
		}
	}
	if item["item_id"] != "100" {
		t.Fatalf("item_id = %v, want 100", item["item_id"])
	}
}

func TestSyncExactPageBoundaryTerminates(t *testing.T) {
	source := &fakeSource{products: catalogOf(100)}
	cs, api := newCatalogFixture(t, source)

	if err := cs.Sync(); err != nil {
		t.Fatalf("Sync error: %v", err)
	}
	if len(api.calls) != 2 {
		t.Fatalf("dispatches = %d, want 2", len(api.calls))
	}
}

func TestSyncEmptyCatalog(t *testing.T) {
	source := &fakeSource{}
	cs, api := newCatalogFixture(t, source)

	if err := cs.Sync(); err != nil {
		t.Fatalf("Sync error: %v", err)
	}
	if len(api.calls) != 0 {
		t.Fatalf("dispatches = %d, want 0", len(api.calls))
	}
}

func TestSyncContinuesPastFailedPage(t *testing.T) {
	source := &fakeSource{products: catalogOf(120)}
	cs, api := newCatalogFixture(t, source)
	api.failCall = 1

	if err := cs.Sync(); err != nil {
		t.Fatalf("Sync error: %v", err)
	}
	// A failed page dispatch is logged, not fatal; all 3 pages still go out.
	if len(api.calls) != 3 {
		t.Fatalf("dispatches = %d, want 3", len(api.calls))
	}
}

func TestSyncAbortsOnSourceError(t *testing.T) {
	source := &fakeSource{products: catalogOf(120), failPage: 2}
	cs, _ := newCatalogFixture(t, source)

	if err := cs.Sync(); err == nil {
		t.Fatalf("expected source error to abort the sync")
	}
}
