package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woozymasta/geoconvert/internal/coord"
)

func TestParseDMS(t *testing.T) {
	data := []struct {
		s    string
		axis coord.Axis
		dd   float64
		text string
	}{
		{`6° 12' 31.68" S`, coord.Latitude, -6.2088, `6° 12' 31.68" S`},
		{`6 12 31.68 S`, coord.Latitude, -6.2088, `6° 12' 31.68" S`},
		{`S 6 12 31.68`, coord.Latitude, -6.2088, `6° 12' 31.68" S`},
		{`6:12:31.68S`, coord.Latitude, -6.2088, `6° 12' 31.68" S`},
		{`106° 50' 44.16" W`, coord.Longitude, -106.8456, `106° 50' 44.16" W`},
		{`106 50 44.16 e`, coord.Longitude, 106.8456, `106° 50' 44.16" E`},
		{`n 45`, coord.Latitude, 45, `45° 0' 0" N`},
		{`45° 30' N`, coord.Latitude, 45.5, `45° 30' 0" N`},
		{`90 0 0 N`, coord.Latitude, 90, `90° 0' 0" N`},
	}

	for _, d := range data {
		a, err := ParseDMS(d.s)
		require.NoError(t, err, d.s)
		assert.Equal(t, d.axis, a.Axis, d.s)
		assert.Equal(t, d.dd, a.Decimal(), d.s)
		assert.Equal(t, d.text, a.String(), d.s)
	}
}

func TestParseWhole(t *testing.T) {
	for s, want := range map[string]int{"": 0, "12": 12, "12.0": 12, "-3": -3} {
		got, err := ParseWhole(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}

	_, err := ParseWhole("12.5")
	assert.ErrorIs(t, err, ErrFormat)
	_, err = ParseWhole("twelve")
	assert.ErrorIs(t, err, ErrNotNumber)
}

func TestParseDMSErrors(t *testing.T) {
	data := []struct {
		s   string
		err error
	}{
		{"", ErrEmpty},
		{"   ", ErrEmpty},
		{"abc", ErrFormat},
		{"6 12 31.68", ErrHemisphere},
		{"N 6 12 31.68 S", ErrFormat},
		{"6.5 0 0 N", ErrFormat},
		{"6 75 0 N", ErrOutOfRange},
		{"6 12 60 N", ErrOutOfRange},
		{"91 0 0 N", ErrOutOfRange},
		{"181 0 0 E", ErrOutOfRange},
	}

	for _, d := range data {
		_, err := ParseDMS(d.s)
		assert.ErrorIs(t, err, d.err, d.s)
	}
}

func TestParseDecimal(t *testing.T) {
	for s, want := range map[string]float64{
		"-6.2088":   -6.2088,
		" 106.8456": 106.8456,
		"+1.5":      1.5,
		"0":         0,
	} {
		v, err := ParseDecimal(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, v, s)
	}

	_, err := ParseDecimal("")
	assert.ErrorIs(t, err, ErrEmpty)

	for _, s := range []string{"abc", "NaN", "Inf", "-inf", "1,5"} {
		_, err := ParseDecimal(s)
		assert.ErrorIs(t, err, ErrNotNumber, s)
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, ValidateLatitude(-90))
	assert.NoError(t, ValidateLatitude(90))
	assert.ErrorIs(t, ValidateLatitude(90.0001), ErrOutOfRange)
	assert.NoError(t, ValidateLongitude(-180))
	assert.ErrorIs(t, ValidateLongitude(180.5), ErrOutOfRange)

	assert.NoError(t, ValidateDMS(179, 59, 59.99, coord.Longitude))
	assert.ErrorIs(t, ValidateDMS(-1, 0, 0, coord.Latitude), ErrOutOfRange)
	assert.ErrorIs(t, ValidateDMS(1, -1, 0, coord.Latitude), ErrOutOfRange)
	assert.ErrorIs(t, ValidateDMS(1, 1, -0.5, coord.Latitude), ErrOutOfRange)
	assert.ErrorIs(t, ValidateDMS(90, 0, 1, coord.Latitude), ErrOutOfRange)
}

func TestNewAngle(t *testing.T) {
	a, err := NewAngle(106, 50, 44.16, "W")
	require.NoError(t, err)
	assert.Equal(t, coord.Longitude, a.Axis)
	assert.Equal(t, coord.West, a.Longitude.Hemisphere)
	assert.Equal(t, -106.8456, a.Decimal())

	_, err = NewAngle(1, 0, 0, "Q")
	assert.ErrorIs(t, err, ErrHemisphere)
}

func TestParseDMSPair(t *testing.T) {
	for _, s := range []string{
		`6° 12' 31.68" S, 106° 50' 44.16" E`,
		`106 50 44.16 E; 6 12 31.68 S`,
	} {
		lat, lon, err := ParseDMSPair(s)
		require.NoError(t, err, s)
		assert.Equal(t, coord.LatitudeDMS{Degrees: 6, Minutes: 12, Seconds: 31.68, Hemisphere: coord.South}, lat, s)
		assert.Equal(t, coord.LongitudeDMS{Degrees: 106, Minutes: 50, Seconds: 44.16, Hemisphere: coord.East}, lon, s)
	}

	_, _, err := ParseDMSPair(`6 12 31.68 S`)
	require.ErrorIs(t, err, ErrFormat)

	_, _, err = ParseDMSPair(`6 S, 7 N`)
	require.ErrorIs(t, err, ErrHemisphere)

	_, _, err = ParseDMSPair(`6 75 S, 7 E`)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestParseDecimalPair(t *testing.T) {
	for _, s := range []string{"-6.2088, 106.8456", "-6.2088 106.8456", "-6.2088;106.8456"} {
		lat, lon, err := ParseDecimalPair(s)
		require.NoError(t, err, s)
		assert.Equal(t, -6.2088, lat)
		assert.Equal(t, 106.8456, lon)
	}

	_, _, err := ParseDecimalPair("1")
	require.ErrorIs(t, err, ErrFormat)

	_, _, err = ParseDecimalPair("91, 0")
	require.ErrorIs(t, err, ErrOutOfRange)

	_, _, err = ParseDecimalPair("x, 0")
	require.ErrorIs(t, err, ErrNotNumber)
}

func TestIsPair(t *testing.T) {
	assert.True(t, IsPair("a, b"))
	assert.False(t, IsPair("a"))
	assert.False(t, IsPair("a, b, c"))
}
