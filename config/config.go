// Package config loads the settings of the shop.
//
// Settings are read, each layer overriding the previous one, from built-in
// defaults, an optional YAML file, a .env file and the KASIR_* environment
// variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/etnz/kasir"
	"github.com/etnz/kasir/store"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file read when none is given.
const DefaultPath = "kasir.yaml"

// EnvFile is the dotenv file loaded from the working directory, if present.
const EnvFile = ".env"

// EnvPrefix prefixes the environment variables, e.g. KASIR_SHOP_NAME.
const EnvPrefix = "KASIR"

// DefaultTimezone is the zone of the shop day.
const DefaultTimezone = "Asia/Jakarta"

// Config is the shop configuration.
type Config struct {
	ShopName         string `yaml:"shop_name" split_words:"true"`
	Currency         string `yaml:"currency"`
	TaxRate          string `yaml:"tax_rate" split_words:"true"` // "0.11" or "11%"
	RestockThreshold int    `yaml:"restock_threshold" split_words:"true"`
	StrictStock      bool   `yaml:"strict_stock" split_words:"true"`
	Timezone         string `yaml:"timezone"`

	Store   Store   `yaml:"store"`
	Weather Weather `yaml:"weather"`
	Log     Log     `yaml:"log"`
	Advisor Advisor `yaml:"advisor"`
}

// Store selects the storage backend.
type Store struct {
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	Prefix      string `yaml:"prefix"`
	RedisURL    string `yaml:"redis_url" split_words:"true"`
	PostgresDSN string `yaml:"postgres_dsn" split_words:"true"`
}

// Weather configures the dashboard weather lookup.
type Weather struct {
	Enabled   bool          `yaml:"enabled"`
	Latitude  float64       `yaml:"latitude"`
	Longitude float64       `yaml:"longitude"`
	Timeout   time.Duration `yaml:"timeout"`
	CacheTTL  time.Duration `yaml:"cache_ttl" split_words:"true"`
}

// Log configures the logger.
type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Advisor configures the Gemini advisor.
type Advisor struct {
	Model  string `yaml:"model"`
	APIKey string `yaml:"api_key" split_words:"true"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ShopName:         kasir.DefaultShopName,
		Currency:         kasir.DefaultCurrency,
		TaxRate:          kasir.StandardTaxRate.String(),
		RestockThreshold: kasir.DefaultRestockThreshold,
		Timezone:         DefaultTimezone,
		Store: Store{
			Backend: store.BackendFile,
			Path:    ".kasir",
			Prefix:  "kasir_",
		},
		Weather: Weather{
			Enabled:   true,
			Latitude:  -6.2088,
			Longitude: 106.8456,
			Timeout:   2 * time.Second,
			CacheTTL:  15 * time.Minute,
		},
		Log:     Log{Level: "warn"},
		Advisor: Advisor{Model: "gemini-2.5-flash"},
	}
}

// Load reads the configuration. An empty path reads DefaultPath when it
// exists; an explicit path must exist.
func Load(path string) (Config, error) {
	c := Default()

	optional := path == ""
	if optional {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("cannot parse config file %q: %w", path, err)
		}
	case optional && errors.Is(err, fs.ErrNotExist):
	default:
		return c, fmt.Errorf("cannot read config file %q: %w", path, err)
	}

	if _, err := os.Stat(EnvFile); err == nil {
		// variables already set win over the file
		if err := godotenv.Load(EnvFile); err != nil {
			return c, fmt.Errorf("cannot load %q: %w", EnvFile, err)
		}
	}
	if err := envconfig.Process(EnvPrefix, &c); err != nil {
		return c, fmt.Errorf("invalid environment: %w", err)
	}
	return c, c.Validate()
}

// Validate checks the values that Load cannot check by type.
func (c Config) Validate() error {
	if _, err := c.Rate(); err != nil {
		return err
	}
	if c.RestockThreshold < 0 {
		return fmt.Errorf("invalid restock_threshold %d: must not be negative", c.RestockThreshold)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

// Rate returns the default tax rate.
func (c Config) Rate() (kasir.Rate, error) {
	r, err := kasir.ParseRate(c.TaxRate)
	if err != nil {
		return r, fmt.Errorf("invalid tax_rate: %w", err)
	}
	if !r.Valid() {
		return r, fmt.Errorf("invalid tax_rate %s: must be within [0%%, 100%%]", r)
	}
	return r, nil
}

// Location returns the shop time zone. The default zone falls back to a
// fixed UTC+7 when the time zone database is not available.
func (c Config) Location() (*time.Location, error) {
	name := c.Timezone
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		if name == DefaultTimezone {
			return time.FixedZone("WIB", 7*3600), nil
		}
		return nil, fmt.Errorf("invalid timezone: %w", err)
	}
	return loc, nil
}

// Logger builds the console logger writing to stderr.
func (c Config) Logger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

// OpenStore opens the configured storage backend.
func (c Config) OpenStore(ctx context.Context, logger *zap.Logger) (store.Store, error) {
	return store.Open(ctx, store.Options{
		Backend:     c.Store.Backend,
		Path:        c.Store.Path,
		Prefix:      c.Store.Prefix,
		RedisURL:    c.Store.RedisURL,
		PostgresDSN: c.Store.PostgresDSN,
		Logger:      logger,
	})
}

// ShopOptions returns the options of kasir.Open.
func (c Config) ShopOptions(logger *zap.Logger) ([]kasir.Option, error) {
	rate, err := c.Rate()
	if err != nil {
		return nil, err
	}
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}
	policy := kasir.ClampStock
	if c.StrictStock {
		policy = kasir.RejectShortage
	}
	return []kasir.Option{
		kasir.WithName(c.ShopName),
		kasir.WithCurrency(c.Currency),
		kasir.WithLocation(loc),
		kasir.WithTaxRate(rate),
		kasir.WithRestockThreshold(c.RestockThreshold),
		kasir.WithStockPolicy(policy),
		kasir.WithLogger(logger),
	}, nil
}
