// Package server exposes the calibration context over a small JSON HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/woozymasta/geoanchor/internal/calib"
	"github.com/woozymasta/geoanchor/internal/geo"

	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 64 << 10

type calibrationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
	Heading   float64 `json:"heading"`
}

type originRequest struct {
	Transform []float64 `json:"transform"`
}

type originResponse struct {
	Origin     geo.GeodeticPoint `json:"origin"`
	Projection calib.Projection  `json:"projection"`
}

type sessionEndResponse struct {
	Policy  calib.Policy `json:"policy"`
	Cleared bool         `json:"cleared"`
}

// HandleHealth reports liveness.
func (s *ServerContext) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

// HandleCalibration returns the calibration on GET and replaces it on POST.
func (s *ServerContext) HandleCalibration(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		cal, _ := s.Calib.Calibration()
		writeJSON(w, r, http.StatusOK, cal)

	case http.MethodPost:
		var req calibrationRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		err := s.Calib.SetOrigin(req.Latitude, req.Longitude, req.Altitude, req.Heading)
		if errors.Is(err, calib.ErrInvalidCalibrationInput) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, err.Error())
			return
		}

		s.Metrics.Calibrations.Inc()
		s.Metrics.Calibrated.Set(1)

		cal, _ := s.Calib.Calibration()
		writeJSON(w, r, http.StatusOK, cal)

	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

// HandleSessionEnd applies the configured session-end policy.
func (s *ServerContext) HandleSessionEnd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	cleared := s.Calib.EndSession()
	if !s.Calib.IsCalibrated() {
		s.Metrics.Calibrated.Set(0)
	}

	writeJSON(w, r, http.StatusOK, sessionEndResponse{Policy: s.Calib.Policy(), Cleared: cleared})
}

// HandleLocal projects a WGS84 point into the calibrated frame.
// An uncalibrated context answers 409 with the zero-offset projection body.
func (s *ServerContext) HandleLocal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var p geo.GeodeticPoint
	if !decodeJSON(w, r, &p) {
		return
	}

	proj := s.Calib.WGS84ToLocal(p.Latitude, p.Longitude, p.Altitude)
	s.Metrics.ObserveProjection(proj)

	status := http.StatusOK
	if errors.Is(proj.Err(), calib.ErrNotCalibrated) {
		status = http.StatusConflict
	}
	writeJSON(w, r, status, proj)
}

// HandleOrigin extracts the content origin from a column-major transform and
// projects it. The projection status is reported in the body.
func (s *ServerContext) HandleOrigin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req originRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	origin, proj, err := s.Calib.AnchorTransform(req.Transform)
	if errors.Is(err, calib.ErrMalformedTransform) {
		s.Metrics.MalformedTransform.Inc()
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.Metrics.ObserveProjection(proj)

	writeJSON(w, r, http.StatusOK, originResponse{Origin: origin, Projection: proj})
}

// HandleECEF converts a geodetic point to ECEF.
func (s *ServerContext) HandleECEF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var p geo.GeodeticPoint
	if !decodeJSON(w, r, &p) {
		return
	}
	if err := p.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, r, http.StatusOK, geo.WGS84ToECEF(p))
}

// HandleWGS84 converts an ECEF point to geodetic coordinates.
func (s *ServerContext) HandleWGS84(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var e geo.EcefPoint
	if !decodeJSON(w, r, &e) {
		return
	}

	writeJSON(w, r, http.StatusOK, geo.ECEFToWGS84(e))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	for _, m := range allowed {
		w.Header().Add("Allow", m)
	}
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}
