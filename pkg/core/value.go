package core

import (
	"encoding/json"
	"strconv"
)

// ValueState describes whether a derived value could be computed
type ValueState uint8

const (
	// Undefined marks a value inside an indicator warm-up window (the zero state)
	Undefined ValueState = iota
	// Defined marks a regular numeric value
	Defined
	// Indeterminate marks a 0/0 result resolved to a fixed sentinel
	Indeterminate
)

// String returns the state name
func (s ValueState) String() string {
	switch s {
	case Defined:
		return "defined"
	case Indeterminate:
		return "indeterminate"
	default:
		return "undefined"
	}
}

// Value is a derived numeric value that may be missing.
// The zero Value is Undefined.
type Value struct {
	state ValueState
	v     float64
}

// Some returns a defined value
func Some(v float64) Value {
	return Value{state: Defined, v: v}
}

// None returns an undefined value
func None() Value {
	return Value{}
}

// IndeterminateValue returns an indeterminate value carrying the given sentinel
func IndeterminateValue(sentinel float64) Value {
	return Value{state: Indeterminate, v: sentinel}
}

// State returns the value state
func (v Value) State() ValueState { return v.state }

// IsDefined reports whether the value holds a regular number
func (v Value) IsDefined() bool { return v.state == Defined }

// Float64 returns the number and whether it is defined.
// Indeterminate values report false; their sentinel is available through Sentinel.
func (v Value) Float64() (float64, bool) {
	if v.state != Defined {
		return 0, false
	}
	return v.v, true
}

// Sentinel returns the substitute number of an indeterminate value
func (v Value) Sentinel() (float64, bool) {
	if v.state != Indeterminate {
		return 0, false
	}
	return v.v, true
}

// OrElse returns the defined number or fallback
func (v Value) OrElse(fallback float64) float64 {
	if f, ok := v.Float64(); ok {
		return f
	}
	return fallback
}

// String formats defined values with one decimal place and "n/a" otherwise
func (v Value) String() string {
	if f, ok := v.Float64(); ok {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return "n/a"
}

// MarshalJSON encodes defined values as numbers and everything else as null
func (v Value) MarshalJSON() ([]byte, error) {
	if f, ok := v.Float64(); ok {
		return json.Marshal(f)
	}
	return []byte("null"), nil
}

// UnmarshalJSON decodes a number into a defined value and null into an undefined one
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = None()
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}
