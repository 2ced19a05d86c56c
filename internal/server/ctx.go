package server

import (
	"github.com/woozymasta/geoanchor/internal/calib"
	"github.com/woozymasta/geoanchor/internal/config"

	"github.com/rs/zerolog/log"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config  *config.Config
	Calib   *calib.Context
	Metrics *Metrics
}

// NewServerContext creates the calibration context from the configuration
// and applies the startup calibration if one is configured.
func NewServerContext(cfg *config.Config) (*ServerContext, error) {
	opts := cfg.Options()
	log.Info().
		Str("session_policy", string(opts.Policy)).
		Float64("max_radius_m", opts.MaxRadius).
		Msg("Initializing server context")

	s := &ServerContext{
		Config:  cfg,
		Calib:   calib.New(opts),
		Metrics: NewMetrics(),
	}

	if c := cfg.Calibration; c != nil {
		if err := s.Calib.SetOrigin(c.Latitude, c.Longitude, c.Altitude, c.Heading); err != nil {
			return nil, err
		}
		s.Metrics.Calibrations.Inc()
		s.Metrics.Calibrated.Set(1)
	} else {
		log.Warn().Msg("No startup calibration configured, projections return zero offsets until calibrated")
	}

	return s, nil
}
