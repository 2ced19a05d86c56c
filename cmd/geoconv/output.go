package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/woozymasta/geoanchor/internal/geo"

	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	minjson "github.com/tdewolff/minify/v2/json"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON    = "json"
	formatYAML    = "yaml"
	formatGeoJSON = "geojson"

	mimeJSON = "application/json"
)

var errNotGeodetic = errors.New("geojson output needs a geodetic result")

// render encodes v in the requested format.
func render(v any, format string, compact bool) ([]byte, error) {
	if format == formatGeoJSON {
		switch t := v.(type) {
		case geo.GeodeticPoint:
			v = geo.NewFeatureCollection(t.Feature(nil))
		case geo.GeoJSONFeature:
			v = geo.NewFeatureCollection(t)
		case geo.GeoJSONFeatureCollection:
		default:
			return nil, fmt.Errorf("%w, got %T", errNotGeodetic, v)
		}
	}

	if format == formatYAML {
		if compact {
			log.Warn().Msg("Minify has no effect on YAML output")
		}
		return yaml.Marshal(v)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	if !compact {
		return data, nil
	}

	m := minify.New()
	m.AddFunc(mimeJSON, minjson.Minify)
	return m.Bytes(mimeJSON, data)
}

// emit renders v with the global options and writes it out.
func emit(v any) error {
	data, err := render(v, opts.Format, opts.Minify)
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}

	if opts.Output == "" {
		fmt.Println(string(data))
		return nil
	}

	if err := os.WriteFile(opts.Output, data, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	log.Info().
		Str("path", opts.Output).
		Str("format", opts.Format).
		Int("bytes", len(data)).
		Msg("Output written")
	return nil
}
