package events

import (
	"recommender/internal/logbuffer"
	"recommender/internal/queue"
	"recommender/internal/stacc"
)

// OrderLine is one purchased item.
type OrderLine struct {
	ItemID   string  `json:"item_id"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Catcher assembles shopper telemetry payloads and hands them off for
// fire-and-forget delivery. Visitors without a resolvable session id are
// skipped entirely, and hand-off failures are logged but never propagated:
// telemetry is best effort.
type Catcher struct {
	publisher queue.Publisher
	sink      *logbuffer.Sink
	website   string
}

func NewCatcher(publisher queue.Publisher, sink *logbuffer.Sink, website string) *Catcher {
	return &Catcher{
		publisher: publisher,
		sink:      sink,
		website:   website,
	}
}

// AddToCart emits an add-to-cart event.
func (c *Catcher) AddToCart(staccID, itemID string, properties map[string]interface{}) {
	if staccID == "" {
		return
	}
	c.emit(stacc.OpAdd, map[string]interface{}{
		"item_id":    itemID,
		"stacc_id":   staccID,
		"website":    c.website,
		"properties": orEmpty(properties),
	})
}

// View emits a product view event.
func (c *Catcher) View(staccID, itemID string, properties map[string]interface{}) {
	if staccID == "" {
		return
	}
	c.emit(stacc.OpView, map[string]interface{}{
		"item_id":    itemID,
		"stacc_id":   staccID,
		"website":    c.website,
		"properties": orEmpty(properties),
	})
}

// Search emits a search event. filters carries the raw query string of the
// storefront search request.
func (c *Catcher) Search(staccID, query, filters string, properties map[string]interface{}) {
	if staccID == "" {
		return
	}
	c.emit(stacc.OpSearch, map[string]interface{}{
		"stacc_id":   staccID,
		"query":      query,
		"filters":    filters,
		"website":    c.website,
		"properties": orEmpty(properties),
	})
}

// Purchase emits a completed-order event.
func (c *Catcher) Purchase(staccID string, items []OrderLine, currency string, properties map[string]interface{}) {
	if staccID == "" {
		return
	}
	itemList := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		itemList = append(itemList, map[string]interface{}{
			"item_id":  item.ItemID,
			"quantity": item.Quantity,
			"price":    item.Price,
		})
	}
	c.emit(stacc.OpPurchase, map[string]interface{}{
		"stacc_id":   staccID,
		"item_list":  itemList,
		"website":    c.website,
		"currency":   currency,
		"properties": orEmpty(properties),
	})
}

func (c *Catcher) emit(op stacc.Operation, payload map[string]interface{}) {
	if err := c.publisher.Publish(string(op), payload); err != nil {
		c.sink.LogError("Event send failed: "+err.Error(), map[string]interface{}{
			"operation": string(op),
		})
	}
}

func orEmpty(properties map[string]interface{}) map[string]interface{} {
	if properties == nil {
		return map[string]interface{}{}
	}
	return properties
}
