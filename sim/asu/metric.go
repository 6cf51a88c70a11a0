package asu

import (
	"encoding/json"
	"strconv"
)

// Metric is a summary value that may be undefined, e.g. a ratio over zero
// patients. An undefined metric is never reported as zero.
type Metric struct {
	Value   float64
	Defined bool
}

// Undefined is the zero Metric.
var Undefined = Metric{}

// Value wraps a defined value.
func Value(v float64) Metric {
	return Metric{Value: v, Defined: true}
}

// Ratio returns num/den, undefined when den is zero.
func Ratio(num, den float64) Metric {
	if den == 0 {
		return Undefined
	}
	return Value(num / den)
}

func (m Metric) String() string {
	if !m.Defined {
		return "undefined"
	}
	return strconv.FormatFloat(m.Value, 'f', 4, 64)
}

// MarshalJSON renders an undefined metric as null.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON reads a number or null.
func (m *Metric) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Undefined
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Value(v)
	return nil
}

// MarshalYAML renders an undefined metric as null.
func (m Metric) MarshalYAML() (any, error) {
	if !m.Defined {
		return nil, nil
	}
	return m.Value, nil
}
