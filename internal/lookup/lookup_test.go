package lookup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"card-rectifier/internal/identifier"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tailor = identifier.Identifier{Number: "12", SetSize: "204", Language: "EN", Series: 3, SetName: "Into-the-Inklands"}

func TestMarketURL(t *testing.T) {
	assert.Equal(t,
		"https://lorcanaplayer.com/card/mickey-mouse-brave-little-tailor/",
		MarketURL("Mickey Mouse - Brave Little Tailor"))
	assert.Equal(t, "https://lorcanaplayer.com/card/ursulas-shell/", MarketURL("Ursula's Shell"))
}

func TestMemory(t *testing.T) {
	m := NewMemory(map[string]Card{
		"12-204-EN-3": {Name: "Mickey Mouse - Brave Little Tailor", Price: "$3.10"},
	})

	card, err := m.Lookup(context.Background(), tailor)
	require.NoError(t, err)
	assert.Equal(t, "Mickey Mouse - Brave Little Tailor", card.Name)
	assert.Equal(t, "$3.10", card.Price)
	assert.Equal(t, MarketURL(card.Name), card.URL)

	other := tailor
	other.Language = "DE"
	_, err = m.Lookup(context.Background(), other)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemory(nil).Lookup(ctx, tailor)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadMemory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
12-204-EN-3:
  name: "Mickey Mouse - Brave Little Tailor"
  price: "$3.10"
1-204-EN-1:
  name: "Ariel - On Human Legs"
  url: "https://example.com/ariel"
  price: "$0.25"
`), 0o644))

	m, err := LoadMemory(path)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())

	card, err := m.Lookup(context.Background(), identifier.Identifier{Number: "1", SetSize: "204", Language: "EN", Series: 1})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/ariel", card.URL)
}

func TestLoadMemoryErrors(t *testing.T) {
	_, err := LoadMemory(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("- just\n- a list\n"), 0o644))
	_, err = LoadMemory(bad)
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	_, err := Nop{}.Lookup(context.Background(), tailor)
	assert.ErrorIs(t, err, ErrNotFound)
}

// Catalog tests are opt-in. Set CATALOG_DSN_TEST to a postgres DSN to run them.
func TestCatalog(t *testing.T) {
	dsn := os.Getenv("CATALOG_DSN_TEST")
	if dsn == "" {
		t.Skip("catalog tests are disabled; set CATALOG_DSN_TEST to enable")
	}
	c, err := OpenCatalog(dsn, true)
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Upsert(ctx, map[string]Card{"12-204-EN-3": {Name: "Mickey Mouse - Brave Little Tailor", Price: "$3.10"}}))
	require.NoError(t, c.Upsert(ctx, map[string]Card{"12-204-EN-3": {Name: "Mickey Mouse - Brave Little Tailor", Price: "$2.95"}}))

	card, err := c.Lookup(ctx, tailor)
	require.NoError(t, err)
	assert.Equal(t, "$2.95", card.Price)
	assert.Equal(t, MarketURL(card.Name), card.URL)

	_, err = c.Lookup(ctx, identifier.Identifier{Number: "999", SetSize: "204", Language: "XX", Series: 9})
	assert.ErrorIs(t, err, ErrNotFound)
}
