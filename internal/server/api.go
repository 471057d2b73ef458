package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/woozymasta/geoconvert/internal/config"
	"github.com/woozymasta/geoconvert/internal/coord"
	"github.com/woozymasta/geoconvert/internal/i18n"
	"github.com/woozymasta/geoconvert/internal/input"
	"github.com/woozymasta/geoconvert/internal/mapview"
	"github.com/woozymasta/geoconvert/internal/points"
)

const maxBodySize = 1 << 16

// ErrBadRequest marks malformed request bodies.
var ErrBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
}

// angleResponse is a single converted DMS angle.
type angleResponse struct {
	DMS     any     `json:"dms"`
	Axis    string  `json:"axis"`
	Text    string  `json:"text"`
	Decimal float64 `json:"decimal"`
}

type dmsResult[H coord.Hemisphere] struct {
	DMS  coord.DMS[H] `json:"dms"`
	Text string       `json:"text"`
}

func newDMSResult[H coord.Hemisphere](d coord.DMS[H]) dmsResult[H] {
	return dmsResult[H]{DMS: d, Text: d.String()}
}

type ddResponse struct {
	Lat dmsResult[coord.NS] `json:"lat"`
	Lon dmsResult[coord.EW] `json:"lon"`
}

type pointRequest struct {
	Lat  *float64 `json:"lat"`
	Lon  *float64 `json:"lon"`
	Type string   `json:"type"`
}

type pointResponse struct {
	Point points.SavedPoint `json:"point"`
	View  mapview.View      `json:"view"`
	Count int               `json:"count"`
}

type viewResponse struct {
	mapview.View
	Home     config.View `json:"home"`
	Language string      `json:"language"`
	PinZoom  int         `json:"pin_zoom"`
}

type flyRequest struct {
	Lat  *float64 `json:"lat"`
	Lon  *float64 `json:"lon"`
	Zoom int      `json:"zoom"`
}

type zoomRequest struct {
	Delta int `json:"delta"`
}

// HandleConvertDMS converts one DMS angle given as deg, min, sec and dir
// query parameters to decimal degrees. Empty fields count as zero.
func (s *ServerContext) HandleConvertDMS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	a, err := angleFromQuery(q.Get("deg"), q.Get("min"), q.Get("sec"), q.Get("dir"))
	if err != nil {
		conversionsTotal.WithLabelValues("dms", "invalid").Inc()
		writeError(w, err)
		return
	}

	conversionsTotal.WithLabelValues("dms", "ok").Inc()
	writeJSON(w, http.StatusOK, newAngleResponse(a))
}

// HandleConvertDD converts a lat/lon pair of decimal degrees to DMS.
func (s *ServerContext) HandleConvertDD(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := latLonFromQuery(r.URL.Query().Get("lat"), r.URL.Query().Get("lon"))
	if err != nil {
		conversionsTotal.WithLabelValues("dd", "invalid").Inc()
		writeError(w, err)
		return
	}

	conversionsTotal.WithLabelValues("dd", "ok").Inc()
	writeJSON(w, http.StatusOK, ddResponse{
		Lat: newDMSResult(coord.ToLatitude(lat)),
		Lon: newDMSResult(coord.ToLongitude(lon)),
	})
}

// HandleConvertParse converts a free-form DMS string such as 6°12'31.68"S.
func (s *ServerContext) HandleConvertParse(w http.ResponseWriter, r *http.Request) {
	a, err := input.ParseDMS(r.URL.Query().Get("q"))
	if err != nil {
		conversionsTotal.WithLabelValues("parse", "invalid").Inc()
		writeError(w, err)
		return
	}

	conversionsTotal.WithLabelValues("parse", "ok").Inc()
	writeJSON(w, http.StatusOK, newAngleResponse(a))
}

// HandlePointsList returns the saved points in insertion order.
func (s *ServerContext) HandlePointsList(w http.ResponseWriter, r *http.Request) {
	list, err := s.Store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []points.SavedPoint{}
	}
	writeJSON(w, http.StatusOK, list)
}

// HandlePointsAdd saves a confirmed point and pins it on the map.
func (s *ServerContext) HandlePointsAdd(w http.ResponseWriter, r *http.Request) {
	var req pointRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Lat == nil || req.Lon == nil {
		writeError(w, fmt.Errorf("lat and lon are required: %w", ErrBadRequest))
		return
	}
	if err := input.ValidateLatitude(*req.Lat); err != nil {
		writeError(w, err)
		return
	}
	if err := input.ValidateLongitude(*req.Lon); err != nil {
		writeError(w, err)
		return
	}

	format, err := points.ParseFormat(req.Type)
	if err != nil {
		writeError(w, err)
		return
	}

	// a closed map must not leave a stored point without its pin
	if _, err := s.Map.View(); err != nil {
		writeError(w, err)
		return
	}

	p := points.New(*req.Lat, *req.Lon, format)
	if err := s.Store.Add(r.Context(), p); err != nil {
		writeError(w, err)
		return
	}

	view, err := s.Map.Pin(p)
	if err != nil {
		writeError(w, err)
		return
	}
	pins, err := s.Map.Pins()
	if err != nil {
		writeError(w, err)
		return
	}

	pointsSavedTotal.WithLabelValues(string(format)).Inc()
	log.Info().
		Str("id", p.ID).
		Str("type", string(format)).
		Float64("lat", p.Latitude).
		Float64("lon", p.Longitude).
		Msg("Point saved")

	writeJSON(w, http.StatusCreated, pointResponse{Point: p, View: view, Count: len(pins)})
}

// HandlePointsClear removes every saved point and pin.
func (s *ServerContext) HandlePointsClear(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Clear(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	if err := s.Map.ClearPins(); err != nil {
		writeError(w, err)
		return
	}

	log.Info().Msg("Saved points cleared")
	w.WriteHeader(http.StatusNoContent)
}

// HandlePointsGeoJSON exports the saved points as a FeatureCollection.
func (s *ServerContext) HandlePointsGeoJSON(w http.ResponseWriter, r *http.Request) {
	list, err := s.Store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Disposition", `inline; filename="points.geojson"`)
	writeJSONType(w, http.StatusOK, "application/geo+json", points.FeatureCollection(list))
}

// HandleView returns the current map view with the home view and UI defaults.
func (s *ServerContext) HandleView(w http.ResponseWriter, r *http.Request) {
	v, err := s.Map.View()
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, viewResponse{
		View:     v,
		Home:     s.Config.Home,
		Language: i18n.Normalize(s.Config.Language),
		PinZoom:  s.Config.PinZoom,
	})
}

// HandleViewFly moves the map center.
func (s *ServerContext) HandleViewFly(w http.ResponseWriter, r *http.Request) {
	var req flyRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Lat == nil || req.Lon == nil {
		writeError(w, fmt.Errorf("lat and lon are required: %w", ErrBadRequest))
		return
	}
	if err := input.ValidateLatitude(*req.Lat); err != nil {
		writeError(w, err)
		return
	}
	if err := input.ValidateLongitude(*req.Lon); err != nil {
		writeError(w, err)
		return
	}

	v, err := s.Map.FlyTo(*req.Lat, *req.Lon, req.Zoom)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleViewHome returns the map to its home view.
func (s *ServerContext) HandleViewHome(w http.ResponseWriter, r *http.Request) {
	v, err := s.Map.Home()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleViewZoom zooms the map in or out.
func (s *ServerContext) HandleViewZoom(w http.ResponseWriter, r *http.Request) {
	var req zoomRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	v, err := s.Map.ZoomBy(req.Delta)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleI18n serves the UI strings for a language, Indonesian when unknown.
func (s *ServerContext) HandleI18n(w http.ResponseWriter, r *http.Request) {
	lang := i18n.Normalize(r.PathValue("lang"))
	w.Header().Set("Content-Language", strings.ToLower(lang))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	writeJSON(w, http.StatusOK, i18n.Lookup(lang))
}

func newAngleResponse(a input.Angle) angleResponse {
	resp := angleResponse{
		Axis:    a.Axis.String(),
		Decimal: a.Decimal(),
		Text:    a.String(),
	}
	if a.Axis == coord.Longitude {
		resp.DMS = a.Longitude
	} else {
		resp.DMS = a.Latitude
	}
	return resp
}

func angleFromQuery(degS, minS, secS, dir string) (input.Angle, error) {
	deg, err := intParam("deg", degS)
	if err != nil {
		return input.Angle{}, err
	}
	minutes, err := intParam("min", minS)
	if err != nil {
		return input.Angle{}, err
	}

	var sec float64
	if strings.TrimSpace(secS) != "" {
		if sec, err = input.ParseDecimal(secS); err != nil {
			return input.Angle{}, fmt.Errorf("sec: %w", err)
		}
	}

	a, err := input.NewAngle(deg, minutes, sec, dir)
	if err != nil {
		return input.Angle{}, err
	}
	if err := input.ValidateDMS(deg, minutes, sec, a.Axis); err != nil {
		return input.Angle{}, err
	}

	return a, nil
}

func latLonFromQuery(latS, lonS string) (float64, float64, error) {
	lat, err := input.ParseDecimal(latS)
	if err != nil {
		return 0, 0, fmt.Errorf("lat: %w", err)
	}
	lon, err := input.ParseDecimal(lonS)
	if err != nil {
		return 0, 0, fmt.Errorf("lon: %w", err)
	}
	if err := input.ValidateLatitude(lat); err != nil {
		return 0, 0, err
	}
	if err := input.ValidateLongitude(lon); err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}

func intParam(name, s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := input.ParseWhole(s)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", name, s, err)
	}
	return v, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %v: %w", err, ErrBadRequest)
	}
	return nil
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, input.ErrEmpty),
		errors.Is(err, input.ErrNotNumber),
		errors.Is(err, input.ErrOutOfRange),
		errors.Is(err, input.ErrHemisphere),
		errors.Is(err, input.ErrFormat),
		errors.Is(err, points.ErrFormat):
		return http.StatusBadRequest
	case errors.Is(err, points.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, mapview.ErrClosed):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", status).Msg("Request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	writeJSONType(w, status, "application/json", v)
}

func writeJSONType(w http.ResponseWriter, status int, contentType string, v any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(v)
}
