// Package lookup resolves parsed card identifiers to card names and market
// prices.
package lookup

import (
	"context"
	"errors"
	"strings"

	"card-rectifier/internal/identifier"
)

// ErrNotFound is returned when the catalog has no entry for an identifier.
var ErrNotFound = errors.New("card not found")

// MarketBase prefixes market URLs derived from card names.
const MarketBase = "https://lorcanaplayer.com/card/"

// Card is the catalog entry of a printed card.
type Card struct {
	Name  string `json:"name" yaml:"name"`
	URL   string `json:"url" yaml:"url"`
	Price string `json:"price" yaml:"price"`
}

// Lookup finds the catalog entry of a card.
type Lookup interface {
	Lookup(ctx context.Context, id identifier.Identifier) (Card, error)
}

// MarketURL returns the market page of a card name.
func MarketURL(name string) string {
	return MarketBase + strings.ToLower(identifier.Slug(name)) + "/"
}

// Nop is a Lookup without a catalog.
type Nop struct{}

func (Nop) Lookup(context.Context, identifier.Identifier) (Card, error) {
	return Card{}, ErrNotFound
}
