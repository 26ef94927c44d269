package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Numeric is a number submitted either as a JSON number or as a numeric string.
//
// The text is kept as submitted; conversion to float64 happens in one place,
// quality.ParseNumber, so that malformed input surfaces as a validation error
// instead of NaN.
type Numeric string

// IsEmpty reports whether no number was supplied.
func (n Numeric) IsEmpty() bool {
	return len(bytes.TrimSpace([]byte(n))) == 0
}

// UnmarshalJSON accepts a JSON number, a JSON string or null.
func (n *Numeric) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Numeric(s)
		return nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var num json.Number
		if err := json.Unmarshal(data, &num); err != nil {
			return err
		}
		*n = Numeric(num.String())
		return nil
	default:
		return fmt.Errorf("numeric: expected number or string, got %s", data)
	}
}

// MarshalJSON encodes the submitted text as a JSON string.
func (n Numeric) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(n))
}
