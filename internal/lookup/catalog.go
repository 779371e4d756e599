package lookup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"card-rectifier/internal/identifier"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogCard is a row of the card catalog table.
type CatalogCard struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Key       string `gorm:"column:card_key;size:64;uniqueIndex;not null"` // number-setsize-language-series
	Name      string `gorm:"size:255;not null"`
	URL       string `gorm:"size:512"`
	Price     string `gorm:"size:32"`
}

func (CatalogCard) TableName() string { return "catalog_cards" }

// Catalog is a Lookup backed by a SQL table.
type Catalog struct {
	db *gorm.DB
}

// OpenCatalog connects to the postgres database at dsn and, when migrate is
// set, creates or updates the catalog table.
func OpenCatalog(dsn string, migrate bool) (*Catalog, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect catalog: %w", err)
	}
	return NewCatalog(db, migrate)
}

// NewCatalog wraps an open database.
func NewCatalog(db *gorm.DB, migrate bool) (*Catalog, error) {
	if migrate {
		if err := db.AutoMigrate(&CatalogCard{}); err != nil {
			return nil, fmt.Errorf("migrate catalog: %w", err)
		}
	}
	return &Catalog{db: db}, nil
}

func (c *Catalog) Lookup(ctx context.Context, id identifier.Identifier) (Card, error) {
	var row CatalogCard
	err := c.db.WithContext(ctx).Where("card_key = ?", id.Key()).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Card{}, fmt.Errorf("%s: %w", id.Key(), ErrNotFound)
	}
	if err != nil {
		return Card{}, fmt.Errorf("query catalog: %w", err)
	}
	url := row.URL
	if url == "" {
		url = MarketURL(row.Name)
	}
	return Card{Name: row.Name, URL: url, Price: row.Price}, nil
}

// Upsert inserts cards keyed by identifier key, replacing name, URL and price
// of existing rows.
func (c *Catalog) Upsert(ctx context.Context, cards map[string]Card) error {
	if len(cards) == 0 {
		return nil
	}
	rows := make([]CatalogCard, 0, len(cards))
	for key, card := range cards {
		rows = append(rows, CatalogCard{Key: key, Name: card.Name, URL: card.URL, Price: card.Price})
	}
	err := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "card_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "url", "price", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("upsert catalog: %w", err)
	}
	return nil
}

// Close releases the database connection.
func (c *Catalog) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
