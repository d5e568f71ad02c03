package rules

import (
	"encoding/json"
	"fmt"

	"github.com/skeeper75/widget.creator-sub002/pkg/enums"
)

// Action is the sealed set of things a triggered constraint rule can do.
// Each variant carries only its own fields; construction goes through the
// validated builders below.
type Action interface {
	Type() enums.ActionType
}

// FilterAction restricts a target option's candidate values to the listed set.
type FilterAction struct {
	TargetOptionKey string
	Values          []string
}

func (FilterAction) Type() enums.ActionType { return enums.ActionTypeFilter }

// ExcludeAction hides the listed candidate values of a target option.
type ExcludeAction struct {
	TargetOptionKey string
	Values          []string
}

func (ExcludeAction) Type() enums.ActionType { return enums.ActionTypeExclude }

// RequireOptionAction marks a target option as mandatory in the UI.
type RequireOptionAction struct {
	TargetOptionKey string
}

func (RequireOptionAction) Type() enums.ActionType { return enums.ActionTypeRequireOption }

// BlockAction records a violation. At quote time it only flips isValid; at
// order time it rejects the confirmation.
type BlockAction struct {
	Message string
}

func (BlockAction) Type() enums.ActionType { return enums.ActionTypeBlock }

// ShowMessageAction surfaces a leveled message to the customer.
type ShowMessageAction struct {
	Message  string
	Severity enums.MessageSeverity
}

func (ShowMessageAction) Type() enums.ActionType { return enums.ActionTypeShowMessage }

// AutoAddAction appends an addon item to the configuration.
type AutoAddAction struct {
	AddonGroupID int64
	AddonItemID  int64
	Quantity     int
}

func (AutoAddAction) Type() enums.ActionType { return enums.ActionTypeAutoAdd }

// ShowAddonListAction tells the UI to display an addon group.
type ShowAddonListAction struct {
	AddonGroupID int64
}

func (ShowAddonListAction) Type() enums.ActionType { return enums.ActionTypeShowAddonList }

// SetDefaultAction suggests a default value for a target option. It is a UI
// hint only; the evaluator never mutates selections.
type SetDefaultAction struct {
	TargetOptionKey string
	Value           string
}

func (SetDefaultAction) Type() enums.ActionType { return enums.ActionTypeSetDefault }

// ChangePriceModeAction surfaces a pricing-mode hint to the UI. Server-side
// pricing inputs are never switched by a rule.
type ChangePriceModeAction struct {
	Mode enums.PriceMode
}

func (ChangePriceModeAction) Type() enums.ActionType { return enums.ActionTypeChangePriceMode }

// NewFilterAction builds a filter action over a non-empty value set.
func NewFilterAction(targetOptionKey string, values []string) (FilterAction, error) {
	if targetOptionKey == "" {
		return FilterAction{}, fmt.Errorf("filter action requires a target option key")
	}
	if len(values) == 0 {
		return FilterAction{}, fmt.Errorf("filter action requires at least one value")
	}
	return FilterAction{TargetOptionKey: targetOptionKey, Values: values}, nil
}

// NewExcludeAction builds an exclude action over a non-empty value set.
func NewExcludeAction(targetOptionKey string, values []string) (ExcludeAction, error) {
	if targetOptionKey == "" {
		return ExcludeAction{}, fmt.Errorf("exclude action requires a target option key")
	}
	if len(values) == 0 {
		return ExcludeAction{}, fmt.Errorf("exclude action requires at least one value")
	}
	return ExcludeAction{TargetOptionKey: targetOptionKey, Values: values}, nil
}

// NewRequireOptionAction builds a require-option action.
func NewRequireOptionAction(targetOptionKey string) (RequireOptionAction, error) {
	if targetOptionKey == "" {
		return RequireOptionAction{}, fmt.Errorf("require_option action requires a target option key")
	}
	return RequireOptionAction{TargetOptionKey: targetOptionKey}, nil
}

// NewBlockAction builds a block action carrying the violation message.
func NewBlockAction(message string) (BlockAction, error) {
	if message == "" {
		return BlockAction{}, fmt.Errorf("block action requires a message")
	}
	return BlockAction{Message: message}, nil
}

// NewShowMessageAction builds a show-message action; severity defaults to info.
func NewShowMessageAction(message string, severity enums.MessageSeverity) (ShowMessageAction, error) {
	if message == "" {
		return ShowMessageAction{}, fmt.Errorf("show_message action requires a message")
	}
	if severity == "" {
		severity = enums.MessageSeverityInfo
	}
	if !severity.IsValid() {
		return ShowMessageAction{}, fmt.Errorf("invalid message severity %q", severity)
	}
	return ShowMessageAction{Message: message, Severity: severity}, nil
}

// NewAutoAddAction builds an auto-add action; quantity defaults to 1.
func NewAutoAddAction(addonGroupID, addonItemID int64, quantity int) (AutoAddAction, error) {
	if addonGroupID <= 0 || addonItemID <= 0 {
		return AutoAddAction{}, fmt.Errorf("auto_add action requires addon group and item ids")
	}
	if quantity <= 0 {
		quantity = 1
	}
	return AutoAddAction{AddonGroupID: addonGroupID, AddonItemID: addonItemID, Quantity: quantity}, nil
}

// NewShowAddonListAction builds a show-addon-list action.
func NewShowAddonListAction(addonGroupID int64) (ShowAddonListAction, error) {
	if addonGroupID <= 0 {
		return ShowAddonListAction{}, fmt.Errorf("show_addon_list action requires an addon group id")
	}
	return ShowAddonListAction{AddonGroupID: addonGroupID}, nil
}

// NewSetDefaultAction builds a set-default action.
func NewSetDefaultAction(targetOptionKey, value string) (SetDefaultAction, error) {
	if targetOptionKey == "" {
		return SetDefaultAction{}, fmt.Errorf("set_default action requires a target option key")
	}
	return SetDefaultAction{TargetOptionKey: targetOptionKey, Value: value}, nil
}

// NewChangePriceModeAction builds a change-price-mode action.
func NewChangePriceModeAction(mode enums.PriceMode) (ChangePriceModeAction, error) {
	if !mode.IsValid() {
		return ChangePriceModeAction{}, fmt.Errorf("invalid price mode %q", mode)
	}
	return ChangePriceModeAction{Mode: mode}, nil
}

// rawAction is the loose storage/wire shape of an action.
type rawAction struct {
	Type            string                `json:"type"`
	TargetOptionKey string                `json:"target_option_key,omitempty"`
	Values          []string              `json:"values,omitempty"`
	Message         string                `json:"message,omitempty"`
	Severity        enums.MessageSeverity `json:"severity,omitempty"`
	AddonGroupID    int64                 `json:"addon_group_id,omitempty"`
	AddonItemID     int64                 `json:"addon_item_id,omitempty"`
	Quantity        int                   `json:"quantity,omitempty"`
	Value           string                `json:"value,omitempty"`
	PriceMode       string                `json:"price_mode,omitempty"`
}

// DecodeActions parses a stored jsonb action array into the sum type.
// Unknown action types and malformed entries are dropped silently so old
// binaries tolerate newer rule catalogs.
func DecodeActions(raw json.RawMessage) ([]Action, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var rawList []rawAction
	if err := json.Unmarshal(raw, &rawList); err != nil {
		return nil, fmt.Errorf("decoding constraint actions: %w", err)
	}

	actions := make([]Action, 0, len(rawList))
	for _, entry := range rawList {
		action, ok := buildAction(entry)
		if !ok {
			continue
		}
		actions = append(actions, action)
	}
	return actions, nil
}

func buildAction(raw rawAction) (Action, bool) {
	actionType, err := enums.ParseActionType(raw.Type)
	if err != nil {
		return nil, false
	}

	switch actionType {
	case enums.ActionTypeFilter:
		action, err := NewFilterAction(raw.TargetOptionKey, raw.Values)
		return action, err == nil
	case enums.ActionTypeExclude:
		action, err := NewExcludeAction(raw.TargetOptionKey, raw.Values)
		return action, err == nil
	case enums.ActionTypeRequireOption:
		action, err := NewRequireOptionAction(raw.TargetOptionKey)
		return action, err == nil
	case enums.ActionTypeBlock:
		action, err := NewBlockAction(raw.Message)
		return action, err == nil
	case enums.ActionTypeShowMessage:
		action, err := NewShowMessageAction(raw.Message, raw.Severity)
		return action, err == nil
	case enums.ActionTypeAutoAdd:
		action, err := NewAutoAddAction(raw.AddonGroupID, raw.AddonItemID, raw.Quantity)
		return action, err == nil
	case enums.ActionTypeShowAddonList:
		action, err := NewShowAddonListAction(raw.AddonGroupID)
		return action, err == nil
	case enums.ActionTypeSetDefault:
		action, err := NewSetDefaultAction(raw.TargetOptionKey, raw.Value)
		return action, err == nil
	case enums.ActionTypeChangePriceMode:
		mode, err := enums.ParsePriceMode(raw.PriceMode)
		if err != nil {
			return nil, false
		}
		action, buildErr := NewChangePriceModeAction(mode)
		return action, buildErr == nil
	default:
		return nil, false
	}
}

// EncodeActions serializes actions back to the storage shape. Used by
// fixtures and the admin-facing collaborator layer.
func EncodeActions(actions []Action) (json.RawMessage, error) {
	rawList := make([]rawAction, 0, len(actions))
	for _, action := range actions {
		raw := rawAction{Type: string(action.Type())}
		switch a := action.(type) {
		case FilterAction:
			raw.TargetOptionKey = a.TargetOptionKey
			raw.Values = a.Values
		case ExcludeAction:
			raw.TargetOptionKey = a.TargetOptionKey
			raw.Values = a.Values
		case RequireOptionAction:
			raw.TargetOptionKey = a.TargetOptionKey
		case BlockAction:
			raw.Message = a.Message
		case ShowMessageAction:
			raw.Message = a.Message
			raw.Severity = a.Severity
		case AutoAddAction:
			raw.AddonGroupID = a.AddonGroupID
			raw.AddonItemID = a.AddonItemID
			raw.Quantity = a.Quantity
		case ShowAddonListAction:
			raw.AddonGroupID = a.AddonGroupID
		case SetDefaultAction:
			raw.TargetOptionKey = a.TargetOptionKey
			raw.Value = a.Value
		case ChangePriceModeAction:
			raw.PriceMode = string(a.Mode)
		default:
			return nil, fmt.Errorf("unsupported action type %T", action)
		}
		rawList = append(rawList, raw)
	}
	return json.Marshal(rawList)
}
