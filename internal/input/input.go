// Package input parses user-entered coordinates and validates their ranges
// before they reach the converter.
package input

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/woozymasta/geoconvert/internal/coord"
)

// Parse and validation errors.
var (
	ErrEmpty      = errors.New("empty input")
	ErrNotNumber  = errors.New("not a number")
	ErrOutOfRange = errors.New("value out of range")
	ErrHemisphere = coord.ErrHemisphere
	ErrFormat     = errors.New("unrecognized DMS format")
)

// Accepted forms (hemisphere letter before or after the numbers):
//
//	6° 12' 31.68" S
//	6 12 31.68 S
//	S 6 12 31.68
//	6:12:31.68S
var dmsRegex = regexp.MustCompile(
	`^\s*([NSEWnsew])?\s*` + // 1: leading hemisphere
		`(\d+(?:\.\d+)?)\s*(?:°|:)?\s*` + // 2: degrees
		`(?:(\d+(?:\.\d+)?)\s*(?:'|′|:)?\s*)?` + // 3: minutes
		`(?:(\d+(?:\.\d+)?)\s*(?:"|″|'')?\s*)?` + // 4: seconds
		`([NSEWnsew])?\s*$`, // 5: trailing hemisphere
)

// Angle is a parsed DMS value bound to exactly one axis.
type Angle struct {
	Axis      coord.Axis
	Latitude  coord.LatitudeDMS
	Longitude coord.LongitudeDMS
}

// Decimal converts the angle to decimal degrees.
func (a Angle) Decimal() float64 {
	if a.Axis == coord.Longitude {
		return a.Longitude.Decimal()
	}
	return a.Latitude.Decimal()
}

func (a Angle) String() string {
	if a.Axis == coord.Longitude {
		return a.Longitude.String()
	}
	return a.Latitude.String()
}

// NewAngle builds an Angle from loose fields and a compass letter.
func NewAngle(deg, minutes int, sec float64, letter string) (Angle, error) {
	axis, err := coord.AxisOf(letter)
	if err != nil {
		return Angle{}, fmt.Errorf("%q: %w", letter, ErrHemisphere)
	}

	a := Angle{Axis: axis}
	if axis == coord.Longitude {
		h, _ := coord.ParseEW(letter)
		a.Longitude = coord.LongitudeDMS{Degrees: deg, Minutes: minutes, Seconds: sec, Hemisphere: h}
	} else {
		h, _ := coord.ParseNS(letter)
		a.Latitude = coord.LatitudeDMS{Degrees: deg, Minutes: minutes, Seconds: sec, Hemisphere: h}
	}

	return a, nil
}

// ParseDecimal parses decimal degrees. NaN and infinities are rejected.
func ParseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmpty
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q: %w", s, ErrNotNumber)
	}

	return v, nil
}

// ParseDMS parses a DMS string into an Angle and validates field ranges.
// The hemisphere letter is required and decides the axis.
func ParseDMS(s string) (Angle, error) {
	if strings.TrimSpace(s) == "" {
		return Angle{}, ErrEmpty
	}

	m := dmsRegex.FindStringSubmatch(s)
	if m == nil {
		return Angle{}, fmt.Errorf("%q: %w", s, ErrFormat)
	}

	letter := m[1]
	if m[5] != "" {
		if letter != "" {
			return Angle{}, fmt.Errorf("%q: two hemisphere letters: %w", s, ErrFormat)
		}
		letter = m[5]
	}
	if letter == "" {
		return Angle{}, fmt.Errorf("%q: missing hemisphere: %w", s, ErrHemisphere)
	}

	deg, err := ParseWhole(m[2])
	if err != nil {
		return Angle{}, fmt.Errorf("degrees %q: %w", m[2], err)
	}
	minutes, err := ParseWhole(m[3])
	if err != nil {
		return Angle{}, fmt.Errorf("minutes %q: %w", m[3], err)
	}
	var sec float64
	if m[4] != "" {
		if sec, err = strconv.ParseFloat(m[4], 64); err != nil {
			return Angle{}, fmt.Errorf("seconds %q: %w", m[4], ErrNotNumber)
		}
	}

	a, err := NewAngle(deg, minutes, sec, letter)
	if err != nil {
		return Angle{}, err
	}
	if err := ValidateDMS(deg, minutes, sec, a.Axis); err != nil {
		return Angle{}, err
	}

	return a, nil
}

// ValidateLatitude checks that v is within [-90, 90].
func ValidateLatitude(v float64) error {
	return validateRange(v, coord.Latitude)
}

// ValidateLongitude checks that v is within [-180, 180].
func ValidateLongitude(v float64) error {
	return validateRange(v, coord.Longitude)
}

// ValidateDMS checks DMS fields: non-negative magnitudes, minutes and seconds
// below 60, and a total not exceeding the axis limit.
func ValidateDMS(deg, minutes int, sec float64, axis coord.Axis) error {
	switch {
	case deg < 0:
		return fmt.Errorf("degrees %d: %w", deg, ErrOutOfRange)
	case minutes < 0 || minutes >= 60:
		return fmt.Errorf("minutes %d: %w", minutes, ErrOutOfRange)
	case sec < 0 || sec >= 60 || math.IsNaN(sec):
		return fmt.Errorf("seconds %v: %w", sec, ErrOutOfRange)
	}

	total := float64(deg) + float64(minutes)/60 + sec/3600
	if total > axis.Limit() {
		return fmt.Errorf("%s %v: %w", axis, total, ErrOutOfRange)
	}

	return nil
}

func validateRange(v float64, axis coord.Axis) error {
	if math.IsNaN(v) || math.Abs(v) > axis.Limit() {
		return fmt.Errorf("%s %v: %w", axis, v, ErrOutOfRange)
	}
	return nil
}

// ParseWhole reads a degree or minute count. "12" and "12.0" are accepted,
// fractional values are rejected with ErrFormat. Empty input is zero.
func ParseWhole(s string) (int, error) {
	if s == "" {
		return 0, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrNotNumber
	}
	if f != math.Trunc(f) {
		return 0, ErrFormat
	}

	return int(f), nil
}

// ParseDMSPair parses a latitude and a longitude DMS string separated by a
// comma or semicolon, in either order.
func ParseDMSPair(s string) (coord.LatitudeDMS, coord.LongitudeDMS, error) {
	a, b, ok := splitPair(s)
	if !ok {
		return coord.LatitudeDMS{}, coord.LongitudeDMS{}, fmt.Errorf("%q: expected two angles: %w", s, ErrFormat)
	}

	first, err := ParseDMS(a)
	if err != nil {
		return coord.LatitudeDMS{}, coord.LongitudeDMS{}, err
	}
	second, err := ParseDMS(b)
	if err != nil {
		return coord.LatitudeDMS{}, coord.LongitudeDMS{}, err
	}

	if first.Axis == second.Axis {
		return coord.LatitudeDMS{}, coord.LongitudeDMS{}, fmt.Errorf("%q: both angles are %s: %w", s, first.Axis, ErrHemisphere)
	}
	if first.Axis == coord.Longitude {
		first, second = second, first
	}

	return first.Latitude, second.Longitude, nil
}

// ParseDecimalPair parses "lat, lon" (comma, semicolon or blank separated)
// and validates both ranges.
func ParseDecimalPair(s string) (lat, lon float64, err error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t'
	})
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%q: expected lat and lon: %w", s, ErrFormat)
	}

	if lat, err = ParseDecimal(fields[0]); err != nil {
		return 0, 0, err
	}
	if lon, err = ParseDecimal(fields[1]); err != nil {
		return 0, 0, err
	}
	if err = ValidateLatitude(lat); err != nil {
		return 0, 0, err
	}
	if err = ValidateLongitude(lon); err != nil {
		return 0, 0, err
	}

	return lat, lon, nil
}

// IsPair reports whether s holds two comma or semicolon separated parts.
func IsPair(s string) bool {
	_, _, ok := splitPair(s)
	return ok
}

func splitPair(s string) (string, string, bool) {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}
