package survey

import (
	"fmt"
	"math"
)

// Bound is the closed numeric range a dataset's scores must stay within.
type Bound struct {
	Lower float64 `yaml:"lower" json:"lower"`
	Upper float64 `yaml:"upper" json:"upper"`
}

// Validate reports an error unless Lower < Upper.
func (b Bound) Validate() error {
	if math.IsNaN(b.Lower) || math.IsNaN(b.Upper) || b.Lower >= b.Upper {
		return fmt.Errorf("invalid range [%g, %g]: lower must be below upper", b.Lower, b.Upper)
	}
	return nil
}

// Clamp limits v to the bound. NaN maps to Lower.
func (b Bound) Clamp(v float64) float64 {
	if math.IsNaN(v) || v < b.Lower {
		return b.Lower
	}
	if v > b.Upper {
		return b.Upper
	}
	return v
}

// Contains reports whether v lies within the bound.
func (b Bound) Contains(v float64) bool {
	return v >= b.Lower && v <= b.Upper
}

// Round rounds v to the given number of decimal places. A negative places
// value returns v unchanged.
func Round(v float64, places int) float64 {
	if places < 0 {
		return v
	}
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
