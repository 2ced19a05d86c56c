// Package calib binds a real-world position and heading to the local AR
// tracking frame and projects WGS84 points into that frame.
package calib

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/woozymasta/geoanchor/internal/geo"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// ErrInvalidCalibrationInput is returned when a calibration value is NaN or infinite.
	ErrInvalidCalibrationInput = errors.New("invalid calibration input")
	// ErrNotCalibrated marks a projection requested before any calibration.
	ErrNotCalibrated = errors.New("not calibrated")
	// ErrUnknownPolicy is returned by ParsePolicy for unsupported names.
	ErrUnknownPolicy = errors.New("unknown session policy")
)

// DefaultMaxRadius is the horizontal distance in meters up to which the
// flat-Earth projection is trusted.
const DefaultMaxRadius = 5000.0

// Policy decides what happens to the calibration when a session ends.
type Policy string

const (
	// PolicyRetain keeps the calibration across sessions.
	PolicyRetain Policy = "retain"
	// PolicyReset returns the context to the uncalibrated state.
	PolicyReset Policy = "reset"
)

// ParsePolicy maps a config value to a Policy. Empty means PolicyRetain.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyRetain:
		return PolicyRetain, nil
	case PolicyReset:
		return PolicyReset, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// Calibration is an immutable snapshot of the calibration state.
type Calibration struct {
	Origin geo.GeodeticPoint `json:"origin"`
	// HeadingDegrees is clockwise from geographic north, normalized to [0, 360).
	HeadingDegrees float64 `json:"heading"`
	// Yaw is the counter-clockwise rotation of the render frame about its
	// up axis, in radians. See HeadingToYaw.
	Yaw        float64   `json:"yaw"`
	ID         uuid.UUID `json:"id"`
	Calibrated bool      `json:"calibrated"`
}

// Options configures a Context.
type Options struct {
	Logger    *zerolog.Logger
	Policy    Policy
	MaxRadius float64
}

// Context owns one calibration and serializes writers against readers.
// The zero value is not usable; create it with New.
type Context struct {
	logger    zerolog.Logger
	policy    Policy
	maxRadius float64

	mu  sync.RWMutex
	cal Calibration
}

// New returns an uncalibrated context.
func New(opts Options) *Context {
	c := &Context{
		logger:    log.Logger,
		policy:    opts.Policy,
		maxRadius: opts.MaxRadius,
	}

	if opts.Logger != nil {
		c.logger = *opts.Logger
	}
	if c.policy == "" {
		c.policy = PolicyRetain
	}
	if c.maxRadius <= 0 {
		c.maxRadius = DefaultMaxRadius
	}

	return c
}

// HeadingToYaw converts a compass heading (degrees, clockwise from north)
// into the render frame's yaw (radians, counter-clockwise about up).
// A heading of 90 yields -π/2.
func HeadingToYaw(headingDegrees float64) float64 {
	return -geo.Radians(headingDegrees)
}

func normalizeHeading(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// SetOrigin replaces the calibration. Non-finite input is rejected with
// ErrInvalidCalibrationInput and leaves the previous calibration untouched.
func (c *Context) SetOrigin(lat, lon, alt, headingDegrees float64) error {
	if !geo.IsFinite(lat, lon, alt, headingDegrees) {
		return fmt.Errorf("%w: lat=%v lon=%v alt=%v heading=%v",
			ErrInvalidCalibrationInput, lat, lon, alt, headingDegrees)
	}

	heading := normalizeHeading(headingDegrees)
	cal := Calibration{
		Origin:         geo.GeodeticPoint{Latitude: lat, Longitude: lon, Altitude: alt},
		HeadingDegrees: heading,
		Yaw:            HeadingToYaw(heading),
		ID:             uuid.New(),
		Calibrated:     true,
	}

	c.mu.Lock()
	c.cal = cal
	c.mu.Unlock()

	c.logger.Info().
		Str("id", cal.ID.String()).
		Float64("lat", lat).
		Float64("lon", lon).
		Float64("alt", alt).
		Float64("heading", heading).
		Msg("Calibration origin set")

	return nil
}

// IsCalibrated reports whether SetOrigin has succeeded since creation or the
// last reset.
func (c *Context) IsCalibrated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cal.Calibrated
}

// Calibration returns a snapshot and whether it is valid.
func (c *Context) Calibration() (Calibration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cal, c.cal.Calibrated
}

// Policy returns the session-end policy.
func (c *Context) Policy() Policy { return c.policy }

// MaxRadius returns the trusted flat-Earth radius in meters.
func (c *Context) MaxRadius() float64 { return c.maxRadius }

// EndSession applies the session policy and reports whether the calibration
// was cleared.
func (c *Context) EndSession() bool {
	if c.policy != PolicyReset {
		c.logger.Debug().Str("policy", string(c.policy)).Msg("Session ended, calibration retained")
		return false
	}

	c.mu.Lock()
	cleared := c.cal.Calibrated
	c.cal = Calibration{}
	c.mu.Unlock()

	c.logger.Info().Bool("cleared", cleared).Msg("Session ended, calibration reset")
	return cleared
}
