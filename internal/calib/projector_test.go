package calib

import (
	"math"
	"testing"

	"github.com/woozymasta/geoanchor/internal/geo"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWGS84ToLocal_ZeroOffsetAtOrigin(t *testing.T) {
	t.Parallel()

	c := New(Options{})
	require.NoError(t, c.SetOrigin(48.8584, 2.2945, 35, 0))

	p := c.WGS84ToLocal(48.8584, 2.2945, 35)
	assert.Equal(t, StatusOK, p.Status)
	assert.True(t, p.Offset.IsZero())
	assert.NoError(t, p.Err())
}

func TestWGS84ToLocal_NorthWithZeroHeading(t *testing.T) {
	t.Parallel()

	c := New(Options{})
	require.NoError(t, c.SetOrigin(37.0, -122.0, 0, 0))

	p := c.WGS84ToLocal(37.0+100.0/MetersPerDegreeLatitude, -122.0, 0)
	require.Equal(t, StatusOK, p.Status)
	assert.InDelta(t, -100, p.Offset.Z, 1)
	assert.InDelta(t, 0, p.Offset.X, 1)
	assert.InDelta(t, 0, p.Offset.Y, 1e-9)
	assert.InDelta(t, 100, p.HorizontalMeters, 1e-6)
}

func TestWGS84ToLocal_HeadingRotation(t *testing.T) {
	t.Parallel()

	c := New(Options{})
	require.NoError(t, c.SetOrigin(37.0, -122.0, 0, 90))

	// Facing east, a point to the north is on the left.
	p := c.WGS84ToLocal(37.0+100.0/MetersPerDegreeLatitude, -122.0, 0)
	require.Equal(t, StatusOK, p.Status)
	assert.InDelta(t, -100, p.Offset.X, 1)
	assert.InDelta(t, 0, p.Offset.Z, 1)
}

func TestWGS84ToLocal_Axes(t *testing.T) {
	t.Parallel()

	const lat, lon = 37.0, -122.0
	eastDeg := 50.0 / MetersPerDegreeLongitude(lat)
	northDeg := 50.0 / MetersPerDegreeLatitude

	tests := []struct {
		name     string
		heading  float64
		lat, lon float64
		alt      float64
		want     LocalOffset
	}{
		{name: "east at heading 0 is right", heading: 0, lat: lat, lon: lon + eastDeg, want: LocalOffset{X: 50}},
		{name: "east at heading 90 is ahead", heading: 90, lat: lat, lon: lon + eastDeg, want: LocalOffset{Z: -50}},
		{name: "north at heading 180 is behind", heading: 180, lat: lat + northDeg, lon: lon, want: LocalOffset{Z: 50}},
		{name: "north at heading 270 is right", heading: 270, lat: lat + northDeg, lon: lon, want: LocalOffset{X: 50}},
		{name: "altitude maps to up", heading: 33, lat: lat, lon: lon, alt: 12.5, want: LocalOffset{Y: 12.5}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := New(Options{})
			require.NoError(t, c.SetOrigin(lat, lon, 0, tt.heading))

			p := c.WGS84ToLocal(tt.lat, tt.lon, tt.alt)
			assert.InDelta(t, tt.want.X, p.Offset.X, 1e-6)
			assert.InDelta(t, tt.want.Y, p.Offset.Y, 1e-6)
			assert.InDelta(t, tt.want.Z, p.Offset.Z, 1e-6)
		})
	}
}

func TestWGS84ToLocal_RotationPreservesDistance(t *testing.T) {
	t.Parallel()

	for _, heading := range []float64{0, 17, 90, 123.4, 359.9} {
		c := New(Options{})
		require.NoError(t, c.SetOrigin(-33.86, 151.21, 5, heading))

		p := c.WGS84ToLocal(-33.855, 151.215, 5)
		assert.InDelta(t, p.HorizontalMeters, math.Hypot(p.Offset.X, p.Offset.Z), 1e-6)
	}
}

func TestWGS84ToLocal_Uncalibrated(t *testing.T) {
	t.Parallel()

	c, logs := newTestContext(t, Options{})

	p := c.WGS84ToLocal(37.1, -122.1, 300)
	assert.Equal(t, StatusNotCalibrated, p.Status)
	assert.True(t, p.Offset.IsZero())
	assert.False(t, p.Valid())
	assert.ErrorIs(t, p.Err(), ErrNotCalibrated)
	assert.Contains(t, logs.String(), `"level":"warn"`)
	assert.Contains(t, logs.String(), "before calibration")
}

func TestWGS84ToLocal_NonFiniteInput(t *testing.T) {
	t.Parallel()

	c, _ := newTestContext(t, Options{})
	require.NoError(t, c.SetOrigin(0, 0, 0, 0))

	p := c.WGS84ToLocal(math.NaN(), 0, 0)
	assert.Equal(t, StatusInvalidInput, p.Status)
	assert.True(t, p.Offset.IsZero())
	assert.ErrorIs(t, p.Err(), ErrInvalidPoint)
}

func TestWGS84ToLocal_BeyondRadius(t *testing.T) {
	t.Parallel()

	c, logs := newTestContext(t, Options{MaxRadius: 1000})
	require.NoError(t, c.SetOrigin(37, -122, 0, 0))

	p := c.WGS84ToLocal(37+2000.0/MetersPerDegreeLatitude, -122, 0)
	assert.Equal(t, StatusBeyondRadius, p.Status)
	assert.True(t, p.Valid())
	assert.NoError(t, p.Err())
	assert.InDelta(t, -2000, p.Offset.Z, 1e-6)
	assert.Contains(t, logs.String(), "trusted flat-Earth radius")
}

func TestStatusString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "not_calibrated", StatusNotCalibrated.String())
	assert.Equal(t, "status(42)", Status(42).String())

	text, err := StatusBeyondRadius.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "beyond_radius", string(text))
}

func TestTilesetOriginFromTransform(t *testing.T) {
	t.Parallel()

	t.Run("equator prime meridian", func(t *testing.T) {
		t.Parallel()
		m := mgl64.Translate3D(geo.SemiMajorAxis, 0, 0)

		got, err := TilesetOriginFromTransform(m[:])
		require.NoError(t, err)
		assert.InDelta(t, 0, got.Latitude, 1e-6)
		assert.InDelta(t, 0, got.Longitude, 1e-6)
		assert.InDelta(t, 0, got.Altitude, 1e-3)
	})

	t.Run("translation at indices 12 to 14", func(t *testing.T) {
		t.Parallel()
		want := geo.GeodeticPoint{Latitude: 37.7749, Longitude: -122.4194, Altitude: 16}
		ecef := geo.WGS84ToECEF(want)

		m := make([]float64, 16)
		m[0], m[5], m[10], m[15] = 1, 1, 1, 1
		m[12], m[13], m[14] = ecef.X, ecef.Y, ecef.Z

		got, err := TilesetOriginFromTransform(m)
		require.NoError(t, err)
		assert.InDelta(t, want.Latitude, got.Latitude, 1e-6)
		assert.InDelta(t, want.Longitude, got.Longitude, 1e-6)
		assert.InDelta(t, want.Altitude, got.Altitude, 1e-3)
	})

	t.Run("rotation does not affect translation", func(t *testing.T) {
		t.Parallel()
		m := mgl64.Translate3D(geo.SemiMajorAxis, 0, 0).Mul4(mgl64.HomogRotate3DZ(1.2))

		got, err := TilesetOriginFromTransform(m[:])
		require.NoError(t, err)
		assert.InDelta(t, 0, got.Longitude, 1e-6)
	})

	t.Run("too short", func(t *testing.T) {
		t.Parallel()
		got, err := TilesetOriginFromTransform(make([]float64, 15))
		assert.ErrorIs(t, err, ErrMalformedTransform)
		assert.Equal(t, geo.GeodeticPoint{}, got)

		_, err = TilesetOriginFromTransform(nil)
		assert.ErrorIs(t, err, ErrMalformedTransform)
	})

	t.Run("non-finite translation", func(t *testing.T) {
		t.Parallel()
		m := mgl64.Ident4()
		m[13] = math.NaN()

		_, err := TilesetOriginFromTransform(m[:])
		assert.ErrorIs(t, err, ErrMalformedTransform)
		assert.ErrorIs(t, err, geo.ErrNonFinite)
	})
}

func TestAnchorTransform(t *testing.T) {
	t.Parallel()

	origin := geo.GeodeticPoint{Latitude: 51.5007, Longitude: -0.1246, Altitude: 20}
	content := geo.GeodeticPoint{Latitude: 51.5007 + 30.0/MetersPerDegreeLatitude, Longitude: -0.1246, Altitude: 25}
	ecef := geo.WGS84ToECEF(content)
	m := mgl64.Translate3D(ecef.X, ecef.Y, ecef.Z)

	t.Run("uncalibrated", func(t *testing.T) {
		t.Parallel()
		c, _ := newTestContext(t, Options{})

		got, proj, err := c.AnchorTransform(m[:])
		assert.ErrorIs(t, err, ErrNotCalibrated)
		assert.InDelta(t, content.Latitude, got.Latitude, 1e-6)
		assert.Equal(t, StatusNotCalibrated, proj.Status)
	})

	t.Run("calibrated", func(t *testing.T) {
		t.Parallel()
		c, _ := newTestContext(t, Options{})
		require.NoError(t, c.SetOrigin(origin.Latitude, origin.Longitude, origin.Altitude, 0))

		_, proj, err := c.AnchorTransform(m[:])
		require.NoError(t, err)
		assert.InDelta(t, -30, proj.Offset.Z, 1e-3)
		assert.InDelta(t, 0, proj.Offset.X, 1e-3)
		assert.InDelta(t, 5, proj.Offset.Y, 1e-3)
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()
		c, _ := newTestContext(t, Options{})
		_, _, err := c.AnchorTransform([]float64{1, 2, 3})
		assert.ErrorIs(t, err, ErrMalformedTransform)
	})
}
