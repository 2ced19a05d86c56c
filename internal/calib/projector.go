package calib

import (
	"errors"
	"fmt"
	"math"

	"github.com/woozymasta/geoanchor/internal/geo"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Flat-Earth scale factors. They are approximations valid within a few
// kilometers of the origin and must not be replaced by ellipsoid math.
const (
	MetersPerDegreeLatitude = 110540.0
	metersPerDegreeEquator  = 111320.0
)

// TransformLen is the number of elements in a column-major 4x4 matrix.
const TransformLen = 16

var (
	// ErrMalformedTransform is returned for a transform shorter than 16
	// elements or with a non-finite translation.
	ErrMalformedTransform = errors.New("malformed transform")
	// ErrInvalidPoint is returned for non-finite projection input.
	ErrInvalidPoint = errors.New("invalid point")
)

// Status classifies a Projection.
type Status int

const (
	// StatusOK is a computed offset within the trusted radius.
	StatusOK Status = iota
	// StatusNotCalibrated is a zero offset returned because no calibration is set.
	StatusNotCalibrated
	// StatusBeyondRadius is a computed offset farther than the trusted radius.
	StatusBeyondRadius
	// StatusInvalidInput is a zero offset returned for non-finite input.
	StatusInvalidInput
)

var statusNames = map[Status]string{
	StatusOK:            "ok",
	StatusNotCalibrated: "not_calibrated",
	StatusBeyondRadius:  "beyond_radius",
	StatusInvalidInput:  "invalid_input",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// LocalOffset is a translation in the render frame, meters.
// X points right, Y up, Z out of the screen (forward is -Z).
type LocalOffset struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// IsZero reports whether all components are zero.
func (o LocalOffset) IsZero() bool {
	return o == LocalOffset{}
}

// Projection is the result of WGS84ToLocal.
type Projection struct {
	Offset LocalOffset `json:"offset"`
	Status Status      `json:"status"`
	// HorizontalMeters is the flat-Earth east/north distance from the origin.
	HorizontalMeters float64   `json:"horizontal_meters"`
	CalibrationID    uuid.UUID `json:"calibration_id"`
}

// Valid reports whether the offset was computed from a calibration.
func (p Projection) Valid() bool {
	return p.Status == StatusOK || p.Status == StatusBeyondRadius
}

// Err maps zero-offset statuses to their sentinel errors.
func (p Projection) Err() error {
	switch p.Status {
	case StatusNotCalibrated:
		return ErrNotCalibrated
	case StatusInvalidInput:
		return ErrInvalidPoint
	default:
		return nil
	}
}

// MetersPerDegreeLongitude returns the east-west scale at the given latitude.
func MetersPerDegreeLongitude(latDegrees float64) float64 {
	return metersPerDegreeEquator * math.Cos(geo.Radians(latDegrees))
}

// WGS84ToLocal projects a WGS84 point into the calibrated render frame.
//
// Before calibration it returns a zero offset with StatusNotCalibrated and
// logs a warning. Offsets farther than the trusted radius are still returned
// but flagged StatusBeyondRadius.
func (c *Context) WGS84ToLocal(lat, lon, alt float64) Projection {
	cal, ok := c.Calibration()
	if !ok {
		c.logger.Warn().
			Float64("lat", lat).
			Float64("lon", lon).
			Float64("alt", alt).
			Msg("Projection requested before calibration, returning zero offset")
		return Projection{Status: StatusNotCalibrated}
	}

	if !geo.IsFinite(lat, lon, alt) {
		c.logger.Warn().
			Str("calibration_id", cal.ID.String()).
			Msg("Projection input is not finite, returning zero offset")
		return Projection{Status: StatusInvalidInput, CalibrationID: cal.ID}
	}

	east := (lon - cal.Origin.Longitude) * MetersPerDegreeLongitude(cal.Origin.Latitude)
	north := (lat - cal.Origin.Latitude) * MetersPerDegreeLatitude
	up := alt - cal.Origin.Altitude

	// Undo the frame yaw to bring east/north into the frame axes.
	sinH, cosH := math.Sincos(-cal.Yaw)

	proj := Projection{
		Offset: LocalOffset{
			X: east*cosH - north*sinH,
			Y: up,
			Z: -(east*sinH + north*cosH),
		},
		Status:           StatusOK,
		HorizontalMeters: math.Hypot(east, north),
		CalibrationID:    cal.ID,
	}

	if proj.HorizontalMeters > c.maxRadius {
		proj.Status = StatusBeyondRadius
		target := geo.GeodeticPoint{Latitude: lat, Longitude: lon, Altitude: cal.Origin.Altitude}
		c.logger.Warn().
			Float64("horizontal_m", proj.HorizontalMeters).
			Float64("chord_m", geo.ChordDistance(cal.Origin, target)).
			Float64("max_radius_m", c.maxRadius).
			Msg("Projection exceeds trusted flat-Earth radius")
	}

	return proj
}

// TilesetOriginFromTransform reads the translation column (elements 12, 13,
// 14) of a column-major 4x4 transform as an ECEF position and converts it to
// WGS84.
func TilesetOriginFromTransform(matrix []float64) (geo.GeodeticPoint, error) {
	if len(matrix) < TransformLen {
		return geo.GeodeticPoint{}, fmt.Errorf("%w: %d elements, need %d",
			ErrMalformedTransform, len(matrix), TransformLen)
	}

	var m mgl64.Mat4
	copy(m[:], matrix[:TransformLen])

	t := m.Col(3)
	ecef := geo.EcefPoint{X: t.X(), Y: t.Y(), Z: t.Z()}
	if err := ecef.Validate(); err != nil {
		return geo.GeodeticPoint{}, fmt.Errorf("%w: translation: %w", ErrMalformedTransform, err)
	}

	return geo.ECEFToWGS84(ecef), nil
}

// AnchorTransform extracts the content origin from a transform and projects
// it into the render frame.
func (c *Context) AnchorTransform(matrix []float64) (geo.GeodeticPoint, Projection, error) {
	origin, err := TilesetOriginFromTransform(matrix)
	if err != nil {
		return geo.GeodeticPoint{}, Projection{}, err
	}

	proj := c.WGS84ToLocal(origin.Latitude, origin.Longitude, origin.Altitude)
	return origin, proj, proj.Err()
}
