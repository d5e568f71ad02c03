package enums

import "fmt"

// ActionType tags the kind of a constraint action.
type ActionType string

const (
	ActionTypeFilter          ActionType = "filter"
	ActionTypeExclude         ActionType = "exclude"
	ActionTypeRequireOption   ActionType = "require_option"
	ActionTypeBlock           ActionType = "block"
	ActionTypeShowMessage     ActionType = "show_message"
	ActionTypeAutoAdd         ActionType = "auto_add"
	ActionTypeShowAddonList   ActionType = "show_addon_list"
	ActionTypeSetDefault      ActionType = "set_default"
	ActionTypeChangePriceMode ActionType = "change_price_mode"
)

var validActionTypes = []ActionType{
	ActionTypeFilter,
	ActionTypeExclude,
	ActionTypeRequireOption,
	ActionTypeBlock,
	ActionTypeShowMessage,
	ActionTypeAutoAdd,
	ActionTypeShowAddonList,
	ActionTypeSetDefault,
	ActionTypeChangePriceMode,
}

// String implements fmt.Stringer.
func (t ActionType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known ActionType.
func (t ActionType) IsValid() bool {
	for _, candidate := range validActionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseActionType converts raw input into an ActionType.
func ParseActionType(value string) (ActionType, error) {
	for _, candidate := range validActionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid action type %q", value)
}

// MessageSeverity grades the UI messages a rule can surface.
type MessageSeverity string

const (
	MessageSeverityInfo    MessageSeverity = "info"
	MessageSeverityWarning MessageSeverity = "warning"
	MessageSeverityError   MessageSeverity = "error"
)

var validMessageSeverities = []MessageSeverity{
	MessageSeverityInfo,
	MessageSeverityWarning,
	MessageSeverityError,
}

// String implements fmt.Stringer.
func (s MessageSeverity) String() string {
	return string(s)
}

// IsValid reports whether the value is a known MessageSeverity.
func (s MessageSeverity) IsValid() bool {
	for _, candidate := range validMessageSeverities {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseMessageSeverity converts raw input into a MessageSeverity.
func ParseMessageSeverity(value string) (MessageSeverity, error) {
	for _, candidate := range validMessageSeverities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid message severity %q", value)
}
