package enums

import "fmt"

// PriceMode selects which cost-computation strategy a product uses. The four
// modes are mutually exclusive and assigned per product.
type PriceMode string

const (
	PriceModeLookup    PriceMode = "LOOKUP"
	PriceModeArea      PriceMode = "AREA"
	PriceModePage      PriceMode = "PAGE"
	PriceModeComposite PriceMode = "COMPOSITE"
)

var validPriceModes = []PriceMode{
	PriceModeLookup,
	PriceModeArea,
	PriceModePage,
	PriceModeComposite,
}

// String implements fmt.Stringer.
func (m PriceMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known PriceMode.
func (m PriceMode) IsValid() bool {
	for _, candidate := range validPriceModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParsePriceMode converts raw input into a PriceMode.
func ParsePriceMode(value string) (PriceMode, error) {
	for _, candidate := range validPriceModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid price mode %q", value)
}
