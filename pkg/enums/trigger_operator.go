package enums

import "fmt"

// TriggerOperator is the comparison a constraint rule applies between the
// customer's selection and the rule's configured trigger values.
type TriggerOperator string

const (
	TriggerOperatorIn        TriggerOperator = "IN"
	TriggerOperatorNotIn     TriggerOperator = "NOT_IN"
	TriggerOperatorEquals    TriggerOperator = "EQUALS"
	TriggerOperatorNotEquals TriggerOperator = "NOT_EQUALS"
	TriggerOperatorContains  TriggerOperator = "CONTAINS"
)

var validTriggerOperators = []TriggerOperator{
	TriggerOperatorIn,
	TriggerOperatorNotIn,
	TriggerOperatorEquals,
	TriggerOperatorNotEquals,
	TriggerOperatorContains,
}

// String implements fmt.Stringer.
func (o TriggerOperator) String() string {
	return string(o)
}

// IsValid reports whether the value is a known TriggerOperator.
func (o TriggerOperator) IsValid() bool {
	for _, candidate := range validTriggerOperators {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseTriggerOperator converts raw input into a TriggerOperator.
func ParseTriggerOperator(value string) (TriggerOperator, error) {
	for _, candidate := range validTriggerOperators {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid trigger operator %q", value)
}
