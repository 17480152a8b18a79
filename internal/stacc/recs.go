package stacc

import (
	"time"

	"recommender/internal/logbuffer"
)

// Fetcher requests recommended item lists for a product slot. It sits on
// the page-render path, so it blocks with a bounded timeout and degrades
// to an empty list on every failure.
type Fetcher struct {
	client  *Client
	sink    *logbuffer.Sink
	website string
	timeout time.Duration
}

func NewFetcher(client *Client, sink *logbuffer.Sink, website string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Fetcher{
		client:  client,
		sink:    sink,
		website: website,
		timeout: timeout,
	}
}

// Fetch returns the ordered recommended item ids for itemID in the given
// block, or an empty list if the API fails or answers with something
// unusable. It never propagates an error to the render path.
func (f *Fetcher) Fetch(itemID, staccID, blockID string) []string {
	payload := map[string]interface{}{
		"item_id":    itemID,
		"stacc_id":   staccID,
		"block_id":   blockID,
		"website":    f.website,
		"properties": map[string]interface{}{},
	}

	res := f.client.Send(OpRecs, payload, f.timeout)
	if !res.OK {
		f.sink.LogWarning("Didn't receive products from API: "+res.Error(), map[string]interface{}{
			"item_id":  itemID,
			"block_id": blockID,
		})
		return []string{}
	}

	return extractItems(res.Body)
}

func extractItems(body map[string]interface{}) []string {
	if body == nil {
		return []string{}
	}
	raw, ok := body["items"].([]interface{})
	if !ok {
		return []string{}
	}
	items := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			items = append(items, s)
		}
	}
	return items
}
