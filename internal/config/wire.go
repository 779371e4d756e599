package config

import (
	"context"
	"io"
	"time"

	"card-rectifier/internal/lookup"
	"card-rectifier/internal/recognize"

	"github.com/rs/zerolog"
)

// Logger returns a console logger on w at the configured level; verbose
// forces debug output.
func (c *Config) Logger(w io.Writer, verbose bool) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()
}

// OpenRecognizer returns the configured text recognizer.
func (c *Config) OpenRecognizer() recognize.Recognizer {
	if c.Recognizer == BackendAzure {
		return recognize.NewAzure(c.AzureEndpoint, c.AzureKey)
	}
	return recognize.NewTesseract()
}

// OpenLookup returns the configured catalog and a function releasing it.
// With both a DSN and a file, the file seeds the database. Without a
// catalog every lookup misses.
func (c *Config) OpenLookup() (lookup.Lookup, func() error, error) {
	noop := func() error { return nil }
	switch {
	case c.CatalogDSN != "":
		cat, err := lookup.OpenCatalog(c.CatalogDSN, c.CatalogMigrate)
		if err != nil {
			return nil, noop, err
		}
		if c.CatalogFile != "" {
			seed, err := lookup.ReadCards(c.CatalogFile)
			if err != nil {
				cat.Close()
				return nil, noop, err
			}
			if err := cat.Upsert(context.Background(), seed); err != nil {
				cat.Close()
				return nil, noop, err
			}
		}
		return cat, cat.Close, nil
	case c.CatalogFile != "":
		mem, err := lookup.LoadMemory(c.CatalogFile)
		if err != nil {
			return nil, noop, err
		}
		return mem, noop, nil
	default:
		return lookup.Nop{}, noop, nil
	}
}
