package stacc

import "errors"

// Operation names one remote API interaction.
type Operation string

const (
	OpAdd      Operation = "add"
	OpPurchase Operation = "purchase"
	OpView     Operation = "view"
	OpSearch   Operation = "search"
	OpRecs     Operation = "recs"
	OpLogs     Operation = "logs"
	OpCatalog  Operation = "catalog"
	OpCreds    Operation = "creds"
)

// ErrUnknownOperation is returned when an operation is not registered.
var ErrUnknownOperation = errors.New("unknown operation")

// Endpoint describes where an operation is sent and which payload fields
// must be present before anything reaches the wire.
type Endpoint struct {
	Path           string
	RequiredFields []string
	Blocking       bool
}

var endpoints = map[Operation]Endpoint{
	OpAdd: {
		Path:           "/send_add_to_cart",
		RequiredFields: []string{"item_id", "stacc_id", "website", "properties"},
	},
	OpPurchase: {
		Path:           "/send_purchase",
		RequiredFields: []string{"stacc_id", "item_list", "website", "currency", "properties"},
	},
	OpView: {
		Path:           "/send_view",
		RequiredFields: []string{"item_id", "stacc_id", "website", "properties"},
	},
	OpSearch: {
		Path:           "/send_search",
		RequiredFields: []string{"stacc_id", "query", "filters", "website", "properties"},
	},
	OpRecs: {
		Path:           "/get_recs",
		RequiredFields: []string{"item_id", "stacc_id", "block_id", "website", "properties"},
		Blocking:       true,
	},
	OpLogs: {
		Path:           "/send_logs",
		RequiredFields: []string{"logs"},
		Blocking:       true,
	},
	OpCatalog: {
		Path:           "/catalog_sync",
		RequiredFields: []string{"bulk", "properties"},
		Blocking:       true,
	},
	OpCreds: {
		Path:           "/check_credentials",
		RequiredFields: []string{"log_sync_url", "product_sync_url"},
		Blocking:       true,
	},
}

// Resolve looks up the endpoint for an operation.
func Resolve(op Operation) (Endpoint, error) {
	ep, ok := endpoints[op]
	if !ok {
		return Endpoint{}, ErrUnknownOperation
	}
	return ep, nil
}
