// Package mapview keeps the state of the map the UI shows: center, zoom and pins.
//
// A Controller is created by whoever owns the map and destroyed with Close;
// there is no package-level instance.
package mapview

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/woozymasta/geoconvert/internal/points"
)

// Zoom limits of the map widget.
const (
	MinZoom = 0
	MaxZoom = 19
)

// ErrClosed is returned by every method once the controller is closed.
var ErrClosed = errors.New("map controller closed")

// Center is a map center in decimal degrees.
type Center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// View is the visible part of the map.
type View struct {
	Center Center `json:"center"`
	Zoom   int    `json:"zoom"`
}

// Controller owns the map view and the pins drawn on it.
type Controller struct {
	home    View
	view    View
	pins    []points.SavedPoint
	pinZoom int
	closed  bool
	mu      sync.RWMutex
}

// New creates a controller showing home. Pinned points are zoomed to pinZoom.
func New(home View, pinZoom int) *Controller {
	home.Zoom = clampZoom(home.Zoom)
	return &Controller{
		home:    home,
		view:    home,
		pinZoom: clampZoom(pinZoom),
	}
}

// Close destroys the controller and drops its pins.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.pins = nil
}

// View returns the current view.
func (c *Controller) View() (View, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return View{}, ErrClosed
	}
	return c.view, nil
}

// FlyTo moves the center. A zoom of zero or less keeps the current zoom.
func (c *Controller) FlyTo(lat, lon float64, zoom int) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return View{}, ErrClosed
	}
	c.flyTo(lat, lon, zoom)
	return c.view, nil
}

// Home returns to the initial view.
func (c *Controller) Home() (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return View{}, ErrClosed
	}
	c.view = c.home
	return c.view, nil
}

// ZoomBy changes the zoom level by delta within [MinZoom, MaxZoom].
func (c *Controller) ZoomBy(delta int) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return View{}, ErrClosed
	}
	c.view.Zoom = clampZoom(c.view.Zoom + delta)
	return c.view, nil
}

// Pin draws a point and flies to it.
func (c *Controller) Pin(p points.SavedPoint) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return View{}, ErrClosed
	}
	c.pins = append(c.pins, p)
	c.flyTo(p.Latitude, p.Longitude, c.pinZoom)

	log.Debug().
		Str("id", p.ID).
		Float64("lat", p.Latitude).
		Float64("lon", p.Longitude).
		Msg("Point pinned")

	return c.view, nil
}

// Load replaces the pins without moving the view, e.g. with stored points at startup.
func (c *Controller) Load(pts []points.SavedPoint) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	c.pins = append(make([]points.SavedPoint, 0, len(pts)), pts...)
	return nil
}

// Pins returns a copy of the pinned points.
func (c *Controller) Pins() ([]points.SavedPoint, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, ErrClosed
	}
	return append(make([]points.SavedPoint, 0, len(c.pins)), c.pins...), nil
}

// ClearPins removes every pin.
func (c *Controller) ClearPins() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	c.pins = nil
	return nil
}

func (c *Controller) flyTo(lat, lon float64, zoom int) {
	c.view.Center = Center{Lat: lat, Lon: lon}
	if zoom > 0 {
		c.view.Zoom = clampZoom(zoom)
	}
}

func clampZoom(z int) int {
	return min(max(z, MinZoom), MaxZoom)
}
