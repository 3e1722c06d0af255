// Package config loads astroscope settings from YAML with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ngmaloney/astroscope/internal/catalog"
	"github.com/ngmaloney/astroscope/internal/database"
	"github.com/ngmaloney/astroscope/internal/report"
	"github.com/ngmaloney/astroscope/internal/resolver"
	"github.com/ngmaloney/astroscope/internal/visibility"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "astroscope.yaml"

// Config holds all astroscope configuration.
type Config struct {
	Observer   ObserverConfig   `yaml:"observer"`
	Visibility VisibilityConfig `yaml:"visibility"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Resolver   ResolverConfig   `yaml:"resolver"`
	Report     ReportConfig     `yaml:"report"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ObserverConfig is the default observing location.
type ObserverConfig struct {
	Name      string  `yaml:"name"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	UseIP     bool    `yaml:"use_ip"` // locate by IP address when no site is given
}

// VisibilityConfig holds the "good viewing" thresholds.
type VisibilityConfig struct {
	MinAltitude    float64 `yaml:"min_altitude"`
	MaxAltitude    float64 `yaml:"max_altitude"`
	SunMaxAltitude float64 `yaml:"sun_max_altitude"`
	Policy         string  `yaml:"policy"`       // span, longest
	MinDuration    float64 `yaml:"min_duration"` // hours, report only
}

// CatalogConfig locates the catalog database and its source CSV.
type CatalogConfig struct {
	DatabasePath string `yaml:"database_path"`
	CSVURL       string `yaml:"csv_url"`
}

// ResolverConfig selects the name resolver.
type ResolverConfig struct {
	Kind      string `yaml:"kind"` // catalog, sesame, chain
	SesameURL string `yaml:"sesame_url"`
	Timeout   string `yaml:"timeout"`
}

// ReportConfig locates the suggestions report.
type ReportConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
	File   string `yaml:"file"`   // TUI log file
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	th := visibility.DefaultThresholds()
	return &Config{
		Observer: ObserverConfig{
			Name:      "Ghent",
			Latitude:  51.053822,
			Longitude: 3.722270,
		},
		Visibility: VisibilityConfig{
			MinAltitude:    th.MinAlt,
			MaxAltitude:    th.MaxAlt,
			SunMaxAltitude: th.SunMaxAlt,
			Policy:         visibility.PolicySpan.String(),
			MinDuration:    report.DefaultMinDuration,
		},
		Catalog: CatalogConfig{
			DatabasePath: database.DBPath(),
			CSVURL:       catalog.DefaultCSVURL,
		},
		Resolver: ResolverConfig{
			Kind:      resolver.KindCatalog,
			SesameURL: resolver.DefaultSesameURL,
			Timeout:   "10s",
		},
		Report: ReportConfig{
			Path: report.DefaultPath,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			File:   filepath.Join("data", "astroscope.log"),
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("ASTROSCOPE_LAT"); v != "" {
		lat, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid ASTROSCOPE_LAT %q: %w", v, err)
		}
		c.Observer.Latitude = lat
		c.Observer.Name = ""
	}
	if v := os.Getenv("ASTROSCOPE_LON"); v != "" {
		lon, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid ASTROSCOPE_LON %q: %w", v, err)
		}
		c.Observer.Longitude = lon
		c.Observer.Name = ""
	}
	if path := os.Getenv("ASTROSCOPE_DB"); path != "" {
		c.Catalog.DatabasePath = path
	}
	if path := os.Getenv("ASTROSCOPE_REPORT"); path != "" {
		c.Report.Path = path
	}
	if level := os.Getenv("ASTROSCOPE_LOG_LEVEL"); level != "" {
		c.Logging.Level = strings.ToLower(level)
	}
	return nil
}

var validLevels = []string{"debug", "info", "warn", "error"}

// Validate checks the configuration for values the rest of the program cannot use.
func (c *Config) Validate() error {
	if c.Observer.Latitude < -90 || c.Observer.Latitude > 90 {
		return fmt.Errorf("observer latitude %.4f out of range [-90, 90]", c.Observer.Latitude)
	}
	if c.Observer.Longitude < -180 || c.Observer.Longitude > 180 {
		return fmt.Errorf("observer longitude %.4f out of range [-180, 180]", c.Observer.Longitude)
	}
	if c.Visibility.MinAltitude > c.Visibility.MaxAltitude {
		return fmt.Errorf("min_altitude %.1f is above max_altitude %.1f", c.Visibility.MinAltitude, c.Visibility.MaxAltitude)
	}
	if c.Visibility.MinDuration < 0 {
		return fmt.Errorf("min_duration must be >= 0")
	}
	if _, err := visibility.ParsePolicy(c.Visibility.Policy); err != nil {
		return err
	}
	switch c.Resolver.Kind {
	case resolver.KindCatalog, resolver.KindSesame, resolver.KindChain:
	default:
		return fmt.Errorf("invalid resolver kind: %s (valid: catalog, sesame, chain)", c.Resolver.Kind)
	}
	if _, err := c.ResolverTimeout(); err != nil {
		return err
	}

	validLevel := false
	for _, l := range validLevels {
		if c.Logging.Level == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, validLevels)
	}
	return nil
}

// Thresholds returns the configured visibility thresholds.
func (c *Config) Thresholds() visibility.Thresholds {
	return visibility.Thresholds{
		MinAlt:    c.Visibility.MinAltitude,
		MaxAlt:    c.Visibility.MaxAltitude,
		SunMaxAlt: c.Visibility.SunMaxAltitude,
	}
}

// Policy returns the configured window policy, PolicySpan when invalid.
func (c *Config) Policy() visibility.Policy {
	p, err := visibility.ParsePolicy(c.Visibility.Policy)
	if err != nil {
		return visibility.PolicySpan
	}
	return p
}

// ResolverTimeout parses the resolver timeout.
func (c *Config) ResolverTimeout() (time.Duration, error) {
	if c.Resolver.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Resolver.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid resolver timeout %q: %w", c.Resolver.Timeout, err)
	}
	return d, nil
}
