// Package config assembles application settings from defaults, an optional
// YAML card template, a .env file and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"card-rectifier/internal/rectify"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Recognizer backends.
const (
	BackendTesseract = "tesseract"
	BackendAzure     = "azure"
)

type Config struct {
	Rectify rectify.Config

	Recognizer    string // tesseract or azure
	AzureEndpoint string
	AzureKey      string

	CatalogDSN     string // postgres catalog; takes precedence over CatalogFile
	CatalogFile    string // YAML catalog
	CatalogMigrate bool

	Addr     string
	LogLevel string
}

// Load reads .env when present, then builds the configuration. template,
// when not empty, overrides CARD_TEMPLATE.
func Load(template string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(template)
}

// FromEnv builds the configuration from the process environment only.
func FromEnv(template string) (*Config, error) {
	cfg := &Config{
		Rectify:        rectify.DefaultConfig(),
		Recognizer:     getEnv("RECOGNIZER", BackendTesseract),
		AzureEndpoint:  os.Getenv("AZURE_VISION_ENDPOINT"),
		AzureKey:       os.Getenv("AZURE_VISION_KEY"),
		CatalogDSN:     os.Getenv("CATALOG_DSN"),
		CatalogFile:    os.Getenv("CATALOG_FILE"),
		CatalogMigrate: getBool("CATALOG_MIGRATE", true),
		Addr:           getEnv("ADDR", ":8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	if template == "" {
		template = os.Getenv("CARD_TEMPLATE")
	}
	if template != "" {
		if err := LoadTemplate(template, &cfg.Rectify); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv("CARD_THRESHOLD"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("CARD_THRESHOLD: %w", err)
		}
		cfg.Rectify.Threshold = t
	}
	if v := os.Getenv("CARD_DEBUG_DIR"); v != "" {
		cfg.Rectify.DebugDir = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadTemplate overrides the fields of cfg present in the YAML file at path.
func LoadTemplate(path string, cfg *rectify.Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read card template: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse card template %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if err := c.Rectify.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("card template: %w", err))
	}
	switch c.Recognizer {
	case BackendTesseract:
	case BackendAzure:
		if c.AzureEndpoint == "" || c.AzureKey == "" {
			errs = append(errs, errors.New("azure recognizer needs AZURE_VISION_ENDPOINT and AZURE_VISION_KEY"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown recognizer %q", c.Recognizer))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "":
		return defaultVal
	case "false", "0", "no":
		return false
	default:
		return true
	}
}
