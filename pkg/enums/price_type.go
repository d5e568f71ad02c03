package enums

import "fmt"

// PriceType defines how a post-process cost entry is applied.
type PriceType string

const (
	PriceTypeFixed   PriceType = "fixed"
	PriceTypePerUnit PriceType = "per_unit"
	PriceTypePerSqm  PriceType = "per_sqm"
)

var validPriceTypes = []PriceType{
	PriceTypeFixed,
	PriceTypePerUnit,
	PriceTypePerSqm,
}

// String implements fmt.Stringer.
func (t PriceType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known PriceType.
func (t PriceType) IsValid() bool {
	for _, candidate := range validPriceTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParsePriceType converts raw input into a PriceType.
func ParsePriceType(value string) (PriceType, error) {
	for _, candidate := range validPriceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid price type %q", value)
}
