package rules

import (
	"sort"

	"github.com/skeeper75/widget.creator-sub002/pkg/db/models"
	"github.com/skeeper75/widget.creator-sub002/pkg/enums"
	"github.com/skeeper75/widget.creator-sub002/pkg/types"
)

// Rule is the evaluator's view of a constraint rule with its actions decoded.
type Rule struct {
	ID               int64
	Name             string
	TriggerOptionKey string
	Operator         enums.TriggerOperator
	TriggerValues    []string
	Actions          []Action
	Priority         int
	IsActive         bool
}

// FromModel decodes a stored constraint rule into the evaluator shape.
func FromModel(row models.ConstraintRule) (Rule, error) {
	actions, err := DecodeActions(row.Actions)
	if err != nil {
		return Rule{}, err
	}
	return Rule{
		ID:               row.ID,
		Name:             row.Name,
		TriggerOptionKey: row.TriggerOptionKey,
		Operator:         row.TriggerOperator,
		TriggerValues:    []string(row.TriggerValues),
		Actions:          actions,
		Priority:         row.Priority,
		IsActive:         row.IsActive,
	}, nil
}

// UIAction is the client-facing rendering hint produced by a triggered rule.
// Only the fields relevant to Type are populated.
type UIAction struct {
	Type            enums.ActionType      `json:"type"`
	ConstraintName  string                `json:"constraint_name"`
	TargetOptionKey string                `json:"target_option_key,omitempty"`
	Values          []string              `json:"values,omitempty"`
	Message         string                `json:"message,omitempty"`
	Severity        enums.MessageSeverity `json:"severity,omitempty"`
	AddonGroupID    int64                 `json:"addon_group_id,omitempty"`
	AddonItemID     int64                 `json:"addon_item_id,omitempty"`
	Quantity        int                   `json:"quantity,omitempty"`
	Value           string                `json:"value,omitempty"`
	PriceMode       enums.PriceMode       `json:"price_mode,omitempty"`
}

// Violation is one blocking reason. All violations are collected in a single
// pass; a block never short-circuits the remaining rules.
type Violation struct {
	ConstraintName string `json:"constraint_name"`
	Message        string `json:"message"`
}

// AddonRef is an addon auto-added by a rule.
type AddonRef struct {
	AddonGroupID   int64  `json:"addon_group_id"`
	AddonItemID    int64  `json:"addon_item_id"`
	Quantity       int    `json:"quantity"`
	ConstraintName string `json:"constraint_name"`
}

// Result carries everything the rule pass produced. Validity is the caller's
// judgment: a quote is valid iff Violations is empty.
type Result struct {
	UIActions  []UIAction  `json:"ui_actions"`
	Violations []Violation `json:"violations"`
	Addons     []AddonRef  `json:"addons"`
}

// AppliedConstraintNames lists the rules whose actions produced output, in
// evaluation order without duplicates.
func (r Result) AppliedConstraintNames() []string {
	seen := map[string]struct{}{}
	names := []string{}
	for _, action := range r.UIActions {
		if _, ok := seen[action.ConstraintName]; ok {
			continue
		}
		seen[action.ConstraintName] = struct{}{}
		names = append(names, action.ConstraintName)
	}
	for _, violation := range r.Violations {
		if _, ok := seen[violation.ConstraintName]; ok {
			continue
		}
		seen[violation.ConstraintName] = struct{}{}
		names = append(names, violation.ConstraintName)
	}
	return names
}

// Evaluate runs the ordered rule pass over the selections. It is pure: the
// caller's rule slice is never reordered, selections are never mutated, and
// identical inputs always produce identical output.
//
// Rules whose trigger option is absent from the selections are skipped
// entirely; absence is "not applicable", not a NOT_IN/NOT_EQUALS trigger.
func Evaluate(ruleSet []Rule, selections types.Selections) Result {
	ordered := make([]Rule, 0, len(ruleSet))
	for _, rule := range ruleSet {
		if rule.IsActive {
			ordered = append(ordered, rule)
		}
	}
	// Priority descending; SliceStable keeps the original order for ties.
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	result := Result{
		UIActions:  []UIAction{},
		Violations: []Violation{},
		Addons:     []AddonRef{},
	}

	for _, rule := range ordered {
		value, present := selections[rule.TriggerOptionKey]
		if !present {
			continue
		}
		if !triggered(rule, value) {
			continue
		}
		for _, action := range rule.Actions {
			applyAction(&result, rule.Name, action)
		}
	}

	return result
}

func triggered(rule Rule, value types.SelectionValue) bool {
	switch rule.Operator {
	case enums.TriggerOperatorIn:
		return anyMember(value.AsList(), rule.TriggerValues)
	case enums.TriggerOperatorNotIn:
		return !anyMember(value.AsList(), rule.TriggerValues)
	case enums.TriggerOperatorEquals:
		scalar, ok := value.AsScalar()
		return ok && len(rule.TriggerValues) > 0 && scalar == rule.TriggerValues[0]
	case enums.TriggerOperatorNotEquals:
		scalar, ok := value.AsScalar()
		return ok && len(rule.TriggerValues) > 0 && scalar != rule.TriggerValues[0]
	case enums.TriggerOperatorContains:
		if !value.IsList() {
			return false
		}
		return anyMember(value.AsList(), rule.TriggerValues)
	default:
		return false
	}
}

func anyMember(values, candidates []string) bool {
	for _, value := range values {
		for _, candidate := range candidates {
			if value == candidate {
				return true
			}
		}
	}
	return false
}

func applyAction(result *Result, constraintName string, action Action) {
	switch a := action.(type) {
	case FilterAction:
		result.UIActions = append(result.UIActions, UIAction{
			Type:            enums.ActionTypeFilter,
			ConstraintName:  constraintName,
			TargetOptionKey: a.TargetOptionKey,
			Values:          a.Values,
		})
	case ExcludeAction:
		result.UIActions = append(result.UIActions, UIAction{
			Type:            enums.ActionTypeExclude,
			ConstraintName:  constraintName,
			TargetOptionKey: a.TargetOptionKey,
			Values:          a.Values,
		})
	case RequireOptionAction:
		result.UIActions = append(result.UIActions, UIAction{
			Type:            enums.ActionTypeRequireOption,
			ConstraintName:  constraintName,
			TargetOptionKey: a.TargetOptionKey,
		})
	case BlockAction:
		result.Violations = append(result.Violations, Violation{
			ConstraintName: constraintName,
			Message:        a.Message,
		})
	case ShowMessageAction:
		result.UIActions = append(result.UIActions, UIAction{
			Type:           enums.ActionTypeShowMessage,
			ConstraintName: constraintName,
			Message:        a.Message,
			Severity:       a.Severity,
		})
	case AutoAddAction:
		result.Addons = append(result.Addons, AddonRef{
			AddonGroupID:   a.AddonGroupID,
			AddonItemID:    a.AddonItemID,
			Quantity:       a.Quantity,
			ConstraintName: constraintName,
		})
		result.UIActions = append(result.UIActions, UIAction{
			Type:           enums.ActionTypeAutoAdd,
			ConstraintName: constraintName,
			AddonGroupID:   a.AddonGroupID,
			AddonItemID:    a.AddonItemID,
			Quantity:       a.Quantity,
		})
	case ShowAddonListAction:
		result.UIActions = append(result.UIActions, UIAction{
			Type:           enums.ActionTypeShowAddonList,
			ConstraintName: constraintName,
			AddonGroupID:   a.AddonGroupID,
		})
	case SetDefaultAction:
		result.UIActions = append(result.UIActions, UIAction{
			Type:            enums.ActionTypeSetDefault,
			ConstraintName:  constraintName,
			TargetOptionKey: a.TargetOptionKey,
			Value:           a.Value,
		})
	case ChangePriceModeAction:
		result.UIActions = append(result.UIActions, UIAction{
			Type:           enums.ActionTypeChangePriceMode,
			ConstraintName: constraintName,
			PriceMode:      a.Mode,
		})
	}
}
