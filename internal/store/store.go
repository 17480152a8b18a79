package store

import (
	"errors"
	"fmt"
	"strings"

	"recommender/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Option keys.
const (
	KeyShopID          = "shop_id"
	KeyAPIKey          = "api_key"
	KeyCredCheckFailed = "cred_check_failed"
)

// Store wraps the settings (options) table and the product catalog. It is
// the durable home of the credentials and the auth circuit-breaker flag.
type Store struct {
	DB *gorm.DB
}

func New(databaseURL string) (*Store, error) {
	var db *gorm.DB
	var err error

	if strings.HasPrefix(databaseURL, "sqlite://") {
		// SQLite for development
		dbPath := strings.TrimPrefix(databaseURL, "sqlite://")
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	} else {
		// PostgreSQL for production
		db, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.Setting{}, &models.Product{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}

	return &Store{DB: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Get returns the option value for key, empty string when unset.
func (s *Store) Get(key string) (string, error) {
	var setting models.Setting
	err := s.DB.First(&setting, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read option %s: %w", key, err)
	}
	return setting.Value, nil
}

// Set upserts an option value.
func (s *Store) Set(key, value string) error {
	setting := models.Setting{Key: key, Value: value}
	err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&setting).Error
	if err != nil {
		return fmt.Errorf("failed to write option %s: %w", key, err)
	}
	return nil
}

// Credentials implements stacc.CredentialSource.
func (s *Store) Credentials() (string, string, error) {
	shopID, err := s.Get(KeyShopID)
	if err != nil {
		return "", "", err
	}
	apiKey, err := s.Get(KeyAPIKey)
	if err != nil {
		return "", "", err
	}
	return shopID, apiKey, nil
}

// AuthFailed reports the persisted circuit-breaker flag. A fresh install
// with no stored verdict counts as failed until the first successful
// credential check.
func (s *Store) AuthFailed() bool {
	value, err := s.Get(KeyCredCheckFailed)
	if err != nil || value == "" {
		return true
	}
	return value == "1"
}

func (s *Store) SetAuthFailed(failed bool) error {
	value := "0"
	if failed {
		value = "1"
	}
	return s.Set(KeyCredCheckFailed, value)
}

func (s *Store) ClearCredentials() error {
	if err := s.Set(KeyShopID, ""); err != nil {
		return err
	}
	return s.Set(KeyAPIKey, "")
}

// SaveCredentials stores a new shop id / API key pair.
func (s *Store) SaveCredentials(shopID, apiKey string) error {
	if err := s.Set(KeyShopID, shopID); err != nil {
		return err
	}
	return s.Set(KeyAPIKey, apiKey)
}

// ListProducts returns one page of published, in-stock products ordered
// by id so repeated full syncs walk the catalog the same way.
func (s *Store) ListProducts(offset, limit int) ([]models.Product, error) {
	var products []models.Product
	err := s.DB.
		Where("status = ? AND stock_status = ?", models.StatusPublish, models.StockStatusInStock).
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}
