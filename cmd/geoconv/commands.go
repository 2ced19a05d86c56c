package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/woozymasta/geoanchor/internal/calib"
	"github.com/woozymasta/geoanchor/internal/geo"

	"github.com/rs/zerolog/log"
)

type ecefCommand struct {
	Lat float64 `long:"lat" description:"Latitude in degrees" required:"true"`
	Lon float64 `long:"lon" description:"Longitude in degrees" required:"true"`
	Alt float64 `long:"alt" description:"Altitude in meters above the ellipsoid"`
}

func (c *ecefCommand) Execute([]string) error {
	p := geo.GeodeticPoint{Latitude: c.Lat, Longitude: c.Lon, Altitude: c.Alt}
	if err := p.Validate(); err != nil {
		return err
	}
	return emit(geo.WGS84ToECEF(p))
}

type wgs84Command struct {
	X float64 `long:"x" description:"ECEF X in meters" required:"true"`
	Y float64 `long:"y" description:"ECEF Y in meters" required:"true"`
	Z float64 `long:"z" description:"ECEF Z in meters" required:"true"`
}

func (c *wgs84Command) Execute([]string) error {
	e := geo.EcefPoint{X: c.X, Y: c.Y, Z: c.Z}
	if err := e.Validate(); err != nil {
		return err
	}
	return emit(geo.ECEFToWGS84(e))
}

// calibrationFlags is shared by commands that project into the local frame.
type calibrationFlags struct {
	OriginLat *float64 `long:"origin-lat" env:"ORIGIN_LAT" description:"Calibration latitude in degrees"`
	OriginLon *float64 `long:"origin-lon" env:"ORIGIN_LON" description:"Calibration longitude in degrees"`
	OriginAlt float64  `long:"origin-alt" env:"ORIGIN_ALT" description:"Calibration altitude in meters"`
	Heading   float64  `long:"heading"    env:"HEADING"    description:"Calibration heading, degrees clockwise from north"`
	MaxRadius float64  `long:"max-radius" description:"Trusted flat-Earth radius in meters" default:"5000"`
}

// context returns a calibration context, calibrated only when both origin
// coordinates were supplied.
func (f calibrationFlags) context() (*calib.Context, error) {
	c := calib.New(calib.Options{MaxRadius: f.MaxRadius})
	if f.OriginLat == nil || f.OriginLon == nil {
		return c, nil
	}
	if err := c.SetOrigin(*f.OriginLat, *f.OriginLon, f.OriginAlt, f.Heading); err != nil {
		return nil, err
	}
	return c, nil
}

type localCommand struct {
	Calibration calibrationFlags `group:"Calibration"`

	Lat float64 `long:"lat" description:"Target latitude in degrees" required:"true"`
	Lon float64 `long:"lon" description:"Target longitude in degrees" required:"true"`
	Alt float64 `long:"alt" description:"Target altitude in meters"`
}

func (c *localCommand) Execute([]string) error {
	ctx, err := c.Calibration.context()
	if err != nil {
		return err
	}

	proj := ctx.WGS84ToLocal(c.Lat, c.Lon, c.Alt)
	if err := emit(proj); err != nil {
		return err
	}
	return proj.Err()
}

type originCommand struct {
	Calibration calibrationFlags `group:"Calibration"`

	Transform string `short:"t" long:"transform" description:"16 column-major values separated by commas or spaces. Reads stdin if empty"`
	Name      string `short:"n" long:"name" description:"Feature name for GeoJSON output" default:"content-origin"`
}

type originResult struct {
	Origin     geo.GeodeticPoint `json:"origin" yaml:"origin"`
	Projection *calib.Projection `json:"projection,omitempty" yaml:"projection,omitempty"`
}

func (c *originCommand) Execute([]string) error {
	raw := c.Transform
	if raw == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		raw = string(data)
	}

	matrix, err := parseTransform(raw)
	if err != nil {
		return err
	}

	ctx, err := c.Calibration.context()
	if err != nil {
		return err
	}

	if !ctx.IsCalibrated() {
		origin, err := calib.TilesetOriginFromTransform(matrix)
		if err != nil {
			return err
		}
		if opts.Format == formatGeoJSON {
			return emit(origin.Feature(map[string]any{"name": c.Name}))
		}
		return emit(originResult{Origin: origin})
	}

	origin, proj, err := ctx.AnchorTransform(matrix)
	if err != nil {
		return err
	}

	if opts.Format == formatGeoJSON {
		return emit(origin.Feature(map[string]any{
			"name":     c.Name,
			"offset":   proj.Offset,
			"status":   proj.Status.String(),
			"distance": proj.HorizontalMeters,
		}))
	}
	return emit(originResult{Origin: origin, Projection: &proj})
}

// parseTransform splits on commas, brackets and whitespace so both JSON
// arrays and plain lists are accepted.
func parseTransform(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case ',', '[', ']', ' ', '\t', '\n', '\r':
			return true
		}
		return false
	})

	values := make([]float64, 0, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("transform element %d: %w", i, err)
		}
		values = append(values, v)
	}

	if len(values) > calib.TransformLen {
		log.Warn().
			Int("elements", len(values)).
			Msg("Transform has extra elements, using the first 16")
	}

	return values, nil
}
