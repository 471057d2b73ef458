// Package coord converts geographic coordinates between decimal degrees (DD)
// and degrees-minutes-seconds (DMS).
//
// Every function in this package is pure: no state is shared between calls,
// so all of them are safe for concurrent use.
package coord

import (
	"errors"
	"strings"
)

// ErrHemisphere is returned when a hemisphere letter does not belong to the axis.
var ErrHemisphere = errors.New("invalid hemisphere")

// NS is the latitude hemisphere.
type NS uint8

// Latitude hemispheres.
const (
	North NS = iota
	South
)

// Negative reports whether the hemisphere carries a negative sign.
func (h NS) Negative() bool { return h == South }

func (h NS) String() string {
	if h == South {
		return "S"
	}
	return "N"
}

// MarshalText encodes the hemisphere as its compass letter.
func (h NS) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

// UnmarshalText decodes a compass letter (N or S, any case).
func (h *NS) UnmarshalText(b []byte) error {
	v, err := ParseNS(string(b))
	if err != nil {
		return err
	}
	*h = v
	return nil
}

// ParseNS parses a latitude hemisphere letter.
func ParseNS(s string) (NS, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "N":
		return North, nil
	case "S":
		return South, nil
	}
	return North, ErrHemisphere
}

// EW is the longitude hemisphere.
type EW uint8

// Longitude hemispheres.
const (
	East EW = iota
	West
)

// Negative reports whether the hemisphere carries a negative sign.
func (h EW) Negative() bool { return h == West }

func (h EW) String() string {
	if h == West {
		return "W"
	}
	return "E"
}

// MarshalText encodes the hemisphere as its compass letter.
func (h EW) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

// UnmarshalText decodes a compass letter (E or W, any case).
func (h *EW) UnmarshalText(b []byte) error {
	v, err := ParseEW(string(b))
	if err != nil {
		return err
	}
	*h = v
	return nil
}

// ParseEW parses a longitude hemisphere letter.
func ParseEW(s string) (EW, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "E":
		return East, nil
	case "W":
		return West, nil
	}
	return East, ErrHemisphere
}

// Hemisphere is the closed set of direction tags: a latitude hemisphere or a
// longitude hemisphere. A DMS[EW] can never be tagged North.
type Hemisphere interface {
	NS | EW
	Negative() bool
	String() string
}

// Axis selects latitude or longitude when the choice is only known at runtime.
type Axis uint8

// Coordinate axes.
const (
	Latitude Axis = iota
	Longitude
)

func (a Axis) String() string {
	if a == Longitude {
		return "longitude"
	}
	return "latitude"
}

// Limit is the absolute range of decimal degrees on the axis.
func (a Axis) Limit() float64 {
	if a == Longitude {
		return 180
	}
	return 90
}

// AxisOf reports the axis a compass letter belongs to.
func AxisOf(letter string) (Axis, error) {
	switch strings.ToUpper(strings.TrimSpace(letter)) {
	case "N", "S":
		return Latitude, nil
	case "E", "W":
		return Longitude, nil
	}
	return Latitude, ErrHemisphere
}
