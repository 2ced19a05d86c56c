package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/woozymasta/geoanchor/internal/calib"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	data := []byte(`
calibration:
  latitude: 37.7749
  longitude: -122.4194
  altitude: 16
  heading: 270
session_policy: reset
max_radius: 2500
`)

	cfg, err := Parse(data)
	require.NoError(t, err)
	require.NotNil(t, cfg.Calibration)
	assert.Equal(t, 37.7749, cfg.Calibration.Latitude)
	assert.Equal(t, 270.0, cfg.Calibration.Heading)
	assert.Equal(t, "reset", cfg.SessionPolicy)
	assert.Equal(t, 2500.0, cfg.MaxRadius)

	opts := cfg.Options()
	assert.Equal(t, calib.PolicyReset, opts.Policy)
	assert.Equal(t, 2500.0, opts.MaxRadius)
}

func TestParse_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte("{}"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Calibration)
	assert.Equal(t, "retain", cfg.SessionPolicy)
	assert.Equal(t, calib.DefaultMaxRadius, cfg.MaxRadius)
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{name: "unknown policy", data: "session_policy: forget"},
		{name: "negative radius", data: "max_radius: -1"},
		{name: "nan radius", data: "max_radius: .nan"},
		{name: "latitude out of range", data: "calibration: {latitude: 91, longitude: 0, altitude: 0, heading: 0}"},
		{name: "infinite heading", data: "calibration: {latitude: 1, longitude: 2, altitude: 3, heading: .inf}"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.data))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err := Parse([]byte("calibration: [1, 2"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("missing file yields defaults", func(t *testing.T) {
		t.Parallel()
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, Default(), *cfg)
	})

	t.Run("reads file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("max_radius: 800\n"), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 800.0, cfg.MaxRadius)
	})
}
