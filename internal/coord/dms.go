package coord

import (
	"fmt"
	"math"
	"strconv"
)

const (
	// DecimalPlaces is the precision of DD values produced by ToDecimal.
	DecimalPlaces = 6
	// SecondPlaces is the precision of the seconds field produced by Split.
	SecondPlaces = 2
)

// DMS is a single coordinate component in sexagesimal form.
// Degrees, minutes and seconds are magnitudes; the sign is carried by Hemisphere.
type DMS[H Hemisphere] struct {
	Degrees    int     `json:"deg" yaml:"deg"`
	Minutes    int     `json:"min" yaml:"min"`
	Seconds    float64 `json:"sec" yaml:"sec"`
	Hemisphere H       `json:"dir" yaml:"dir"`
}

type (
	// LatitudeDMS is a latitude tagged North or South.
	LatitudeDMS = DMS[NS]
	// LongitudeDMS is a longitude tagged East or West.
	LongitudeDMS = DMS[EW]
)

// ToDecimal converts DMS to signed decimal degrees rounded to DecimalPlaces.
// Fields are not validated: minutes = 75 gives a defined, if meaningless, result.
func ToDecimal[H Hemisphere](d DMS[H]) float64 {
	dd := float64(d.Degrees) + float64(d.Minutes)/60 + d.Seconds/3600
	if d.Hemisphere.Negative() {
		dd = -dd
	}

	return Round(dd, DecimalPlaces)
}

// Split breaks the absolute value of decimal degrees into whole degrees, whole
// minutes and seconds rounded to SecondPlaces. Seconds that round up to 60 are
// returned as 60 and not carried into minutes.
func Split(value float64) (degrees, minutes int, seconds float64) {
	absolute := math.Abs(value)
	wholeDegrees := math.Floor(absolute)
	minutesFloat := (absolute - wholeDegrees) * 60
	wholeMinutes := math.Floor(minutesFloat)
	seconds = Round((minutesFloat-wholeMinutes)*60, SecondPlaces)

	return int(wholeDegrees), int(wholeMinutes), seconds
}

// ToLatitude converts decimal degrees to a latitude DMS.
// Zero and positive values are North.
func ToLatitude(value float64) LatitudeDMS {
	deg, mins, sec := Split(value)
	h := North
	if value < 0 {
		h = South
	}

	return LatitudeDMS{Degrees: deg, Minutes: mins, Seconds: sec, Hemisphere: h}
}

// ToLongitude converts decimal degrees to a longitude DMS.
// Zero and positive values are East.
func ToLongitude(value float64) LongitudeDMS {
	deg, mins, sec := Split(value)
	h := East
	if value < 0 {
		h = West
	}

	return LongitudeDMS{Degrees: deg, Minutes: mins, Seconds: sec, Hemisphere: h}
}

// Decimal is shorthand for ToDecimal(d).
func (d DMS[H]) Decimal() float64 { return ToDecimal(d) }

// String renders the value as `D° M' S" H` without padding. Seconds keep the
// precision they carry: 31.68, 60, 0.
func (d DMS[H]) String() string {
	return fmt.Sprintf(`%d° %d' %s" %s`,
		d.Degrees,
		d.Minutes,
		strconv.FormatFloat(d.Seconds, 'f', -1, 64),
		d.Hemisphere.String())
}
