package coord

import (
	"math"
	"strconv"
	"strings"
)

// Round rounds v to the given number of decimal places, half away from zero.
//
// Rounding works on the shortest decimal representation of v, so 1.005 rounds
// to 1.01 even though its binary value is slightly below the tie.
// Zero results are never negative.
func Round(v float64, places int) float64 {
	if v == 0 {
		return 0
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || places < 0 {
		return v
	}

	neg := v < 0
	s := strconv.FormatFloat(math.Abs(v), 'f', -1, 64)
	intPart, frac, _ := strings.Cut(s, ".")
	if len(frac) <= places {
		return v
	}

	digits := []byte(intPart + frac[:places])
	if frac[places] >= '5' {
		i := len(digits) - 1
		for ; i >= 0; i-- {
			if digits[i] == '9' {
				digits[i] = '0'
				continue
			}
			digits[i]++
			break
		}
		if i < 0 {
			digits = append([]byte{'1'}, digits...)
		}
	}

	out := string(digits)
	if places > 0 {
		n := len(digits) - places
		out = out[:n] + "." + out[n:]
	}

	r, err := strconv.ParseFloat(out, 64)
	if err != nil {
		return v
	}
	if neg && r != 0 {
		r = -r
	}

	return r
}
