package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

type valueKind int

const (
	valueNumber valueKind = iota
	valueNA
	valueError
)

// Value is the tri-state outcome of a region reduction: a number, "N/A" when
// the region held no valid pixels, or "Error" when the producing unit failed.
// Numbers are rounded to 4 decimal digits on construction; formatting is
// owned here, callers never re-round.
type Value struct {
	kind valueKind
	num  float64
}

func NumberValue(v float64) Value { return Value{kind: valueNumber, num: round4(v)} }
func NAValue() Value              { return Value{kind: valueNA} }
func ErrorValue() Value           { return Value{kind: valueError} }

// Number returns the numeric value and whether the value is numeric.
func (v Value) Number() (float64, bool) {
	return v.num, v.kind == valueNumber
}

func (v Value) IsNA() bool    { return v.kind == valueNA }
func (v Value) IsError() bool { return v.kind == valueError }

func (v Value) String() string {
	switch v.kind {
	case valueNA:
		return "N/A"
	case valueError:
		return "Error"
	default:
		return strconv.FormatFloat(v.num, 'f', 4, 64)
	}
}

// MarshalJSON renders numbers as 4-decimal JSON numbers and the sentinels as
// strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case valueNA:
		return []byte(`"N/A"`), nil
	case valueError:
		return []byte(`"Error"`), nil
	default:
		return []byte(strconv.FormatFloat(v.num, 'f', 4, 64)), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"N/A"`:
		*v = NAValue()
		return nil
	case `"Error"`:
		*v = ErrorValue()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid index value %s", data)
	}
	*v = Value{kind: valueNumber, num: f}
	return nil
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
