package lookup

import (
	"context"
	"fmt"
	"os"
	"sync"

	"card-rectifier/internal/identifier"

	"gopkg.in/yaml.v3"
)

// Memory is a map-backed catalog keyed by Identifier.Key.
type Memory struct {
	mu    sync.RWMutex
	cards map[string]Card
}

// NewMemory returns a catalog holding cards.
func NewMemory(cards map[string]Card) *Memory {
	m := &Memory{cards: make(map[string]Card, len(cards))}
	for k, c := range cards {
		m.Put(k, c)
	}
	return m
}

// LoadMemory reads a YAML catalog mapping keys to cards:
//
//	12-204-EN-3:
//	  name: "Mickey Mouse - Brave Little Tailor"
//	  price: "$3.10"
func LoadMemory(path string) (*Memory, error) {
	cards, err := ReadCards(path)
	if err != nil {
		return nil, err
	}
	return NewMemory(cards), nil
}

// ReadCards reads a YAML catalog file in the LoadMemory format.
func ReadCards(path string) (map[string]Card, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var cards map[string]Card
	if err := yaml.Unmarshal(raw, &cards); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return cards, nil
}

// Put stores c under key, filling in its market URL when missing.
func (m *Memory) Put(key string, c Card) {
	if c.URL == "" && c.Name != "" {
		c.URL = MarketURL(c.Name)
	}
	m.mu.Lock()
	m.cards[key] = c
	m.mu.Unlock()
}

// Len is the number of cards held.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cards)
}

func (m *Memory) Lookup(ctx context.Context, id identifier.Identifier) (Card, error) {
	if err := ctx.Err(); err != nil {
		return Card{}, err
	}
	m.mu.RLock()
	c, ok := m.cards[id.Key()]
	m.mu.RUnlock()
	if !ok {
		return Card{}, fmt.Errorf("%s: %w", id.Key(), ErrNotFound)
	}
	return c, nil
}
