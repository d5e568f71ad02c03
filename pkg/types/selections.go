package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Selections maps an option key to the customer's chosen value(s). A key that
// is not present means "not selected", which is distinct from an empty list.
type Selections map[string]SelectionValue

type selectionKind int

const (
	selectionScalar selectionKind = iota
	selectionList
	selectionNumber
)

// SelectionValue holds one option's value: a scalar string, a list of
// strings, or a number (quantities and dimensions).
type SelectionValue struct {
	kind   selectionKind
	scalar string
	list   []string
	number float64
}

// Scalar builds a string-valued selection.
func Scalar(value string) SelectionValue {
	return SelectionValue{kind: selectionScalar, scalar: value}
}

// List builds a list-valued selection.
func List(values ...string) SelectionValue {
	return SelectionValue{kind: selectionList, list: values}
}

// Number builds a numeric selection.
func Number(value float64) SelectionValue {
	return SelectionValue{kind: selectionNumber, number: value}
}

// IsList reports whether the value is list-shaped.
func (v SelectionValue) IsList() bool {
	return v.kind == selectionList
}

// AsScalar returns the scalar string form. Numbers are formatted, lists
// report false.
func (v SelectionValue) AsScalar() (string, bool) {
	switch v.kind {
	case selectionScalar:
		return v.scalar, true
	case selectionNumber:
		return strconv.FormatFloat(v.number, 'f', -1, 64), true
	default:
		return "", false
	}
}

// AsNumber returns the numeric form when the value carries a number.
func (v SelectionValue) AsNumber() (float64, bool) {
	if v.kind != selectionNumber {
		return 0, false
	}
	return v.number, true
}

// AsList normalizes the value to a list: scalars and numbers become a
// single-element list.
func (v SelectionValue) AsList() []string {
	switch v.kind {
	case selectionList:
		out := make([]string, len(v.list))
		copy(out, v.list)
		return out
	default:
		s, _ := v.AsScalar()
		return []string{s}
	}
}

// UnmarshalJSON accepts a string, an array of strings, or a JSON number.
func (v *SelectionValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch val := raw.(type) {
	case string:
		*v = Scalar(val)
		return nil
	case float64:
		*v = Number(val)
		return nil
	case []any:
		items := make([]string, 0, len(val))
		for _, entry := range val {
			s, ok := entry.(string)
			if !ok {
				return fmt.Errorf("selection list entries must be strings, got %T", entry)
			}
			items = append(items, s)
		}
		*v = List(items...)
		return nil
	default:
		return fmt.Errorf("selection value must be a string, string list, or number, got %T", raw)
	}
}

// MarshalJSON renders the value back in its original shape.
func (v SelectionValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case selectionList:
		if v.list == nil {
			return json.Marshal([]string{})
		}
		return json.Marshal(v.list)
	case selectionNumber:
		return json.Marshal(v.number)
	default:
		return json.Marshal(v.scalar)
	}
}

// Scalar returns the scalar string stored under key.
func (s Selections) Scalar(key string) (string, bool) {
	value, ok := s[key]
	if !ok {
		return "", false
	}
	return value.AsScalar()
}

// Int returns the numeric value under key truncated to an int. Numeric
// strings are accepted since option widgets often post quantities as text.
func (s Selections) Int(key string) (int, bool) {
	value, ok := s[key]
	if !ok {
		return 0, false
	}
	if n, ok := value.AsNumber(); ok {
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	}
	if str, ok := value.AsScalar(); ok {
		if n, err := strconv.Atoi(str); err == nil {
			return n, true
		}
	}
	return 0, false
}

// Float returns the numeric value under key, accepting numeric strings.
func (s Selections) Float(key string) (float64, bool) {
	value, ok := s[key]
	if !ok {
		return 0, false
	}
	if n, ok := value.AsNumber(); ok {
		return n, true
	}
	if str, ok := value.AsScalar(); ok {
		if n, err := strconv.ParseFloat(str, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// Strings returns the list-normalized values under key.
func (s Selections) Strings(key string) ([]string, bool) {
	value, ok := s[key]
	if !ok {
		return nil, false
	}
	return value.AsList(), true
}
