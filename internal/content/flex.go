package content

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// FlexNumber accepts numbers and numeric strings. Editors store sort keys
// in either form; anything non-numeric coerces to zero instead of failing
// the record.
type FlexNumber float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*f = 0
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = finite(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, perr := strconv.ParseFloat(strings.TrimSpace(s), 64); perr == nil {
			*f = finite(v)
		}
	}
	return nil
}

// finite drops NaN and infinities, which ParseFloat accepts by name and
// which cannot be encoded back to JSON.
func finite(v float64) FlexNumber {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return FlexNumber(v)
}

// Float64 converts FlexNumber back to float64.
func (f FlexNumber) Float64() float64 {
	return float64(f)
}
