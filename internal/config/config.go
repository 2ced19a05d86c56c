// Package config handles configuration loading and shared data structures.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/woozymasta/geoanchor/internal/calib"
	"github.com/woozymasta/geoanchor/internal/geo"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the root configuration file structure.
type Config struct {
	// Calibration is applied at startup when present.
	Calibration   *Calibration `yaml:"calibration,omitempty" json:"calibration,omitempty"`
	SessionPolicy string       `yaml:"session_policy,omitempty" json:"session_policy,omitempty"`
	MaxRadius     float64      `yaml:"max_radius,omitempty" json:"max_radius,omitempty"` // meters
}

// Calibration is an observer position and compass heading.
type Calibration struct {
	Latitude  float64 `yaml:"latitude" json:"latitude"`
	Longitude float64 `yaml:"longitude" json:"longitude"`
	Altitude  float64 `yaml:"altitude" json:"altitude"`
	Heading   float64 `yaml:"heading" json:"heading"`
}

// Load reads and parses the YAML configuration file from the specified path.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		return &cfg, nil
	}
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse decodes YAML, fills defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.SessionPolicy == "" {
		cfg.SessionPolicy = string(calib.PolicyRetain)
	}
	if cfg.MaxRadius == 0 {
		cfg.MaxRadius = calib.DefaultMaxRadius
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		SessionPolicy: string(calib.PolicyRetain),
		MaxRadius:     calib.DefaultMaxRadius,
	}
}

// Validate checks field values.
func (c *Config) Validate() error {
	if _, err := calib.ParsePolicy(c.SessionPolicy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.MaxRadius <= 0 || !geo.IsFinite(c.MaxRadius) {
		return fmt.Errorf("%w: max_radius must be a positive number, got %v", ErrInvalidConfig, c.MaxRadius)
	}
	if c.Calibration != nil {
		p := geo.GeodeticPoint{
			Latitude:  c.Calibration.Latitude,
			Longitude: c.Calibration.Longitude,
			Altitude:  c.Calibration.Altitude,
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%w: calibration: %w", ErrInvalidConfig, err)
		}
		if !geo.IsFinite(c.Calibration.Heading) {
			return fmt.Errorf("%w: calibration heading: %w", ErrInvalidConfig, geo.ErrNonFinite)
		}
	}

	return nil
}

// Options builds calib.Options from the configuration.
func (c *Config) Options() calib.Options {
	policy, _ := calib.ParsePolicy(c.SessionPolicy)
	return calib.Options{
		Policy:    policy,
		MaxRadius: c.MaxRadius,
	}
}
