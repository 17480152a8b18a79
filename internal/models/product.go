package models

import (
	"time"
)

// Product availability values mirrored from the host storefront.
const (
	StatusPublish      = "publish"
	StockStatusInStock = "instock"
)

type Product struct {
	ID          string    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ExternalID  string    `json:"external_id" gorm:"not null"`
	SKU         string    `json:"sku" gorm:"unique;not null"`
	Name        string    `json:"name" gorm:"not null"`
	Price       float64   `json:"price" gorm:"type:decimal(10,2)"`
	Currency    string    `json:"currency" gorm:"default:EUR"`
	Status      string    `json:"status" gorm:"default:publish"`
	StockStatus string    `json:"stock_status" gorm:"default:instock"`
	Categories  []string  `json:"categories" gorm:"type:jsonb;serializer:json"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Setting is one row of the key/value options table backing credentials
// and persisted flags.
type Setting struct {
	Key   string `json:"key" gorm:"primaryKey"`
	Value string `json:"value"`
}
