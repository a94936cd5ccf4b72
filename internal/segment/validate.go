package segment

import (
	"fmt"

	"github.com/qhosting/smsegment/internal/types"
)

/*
 * Criteria validation for the save boundary.
 *
 * Validation runs when criteria are persisted onto a list, never during
 * evaluation. Moving error detection to save time keeps the user in the loop
 * while the rule is being authored; at evaluation time a persisted criteria
 * object is replayed verbatim and malformed content fails closed instead.
 */

// operatorsByType enumerates the known operator set per data type.
// is_empty/is_not_empty never require a comparison value.
var operatorsByType = map[types.DataType]map[string]bool{
	types.DataTypeString: {
		types.OpEquals: true, types.OpNotEquals: true,
		types.OpContains: true, types.OpNotContains: true,
		types.OpStartsWith: true, types.OpEndsWith: true,
		types.OpIsEmpty: true, types.OpIsNotEmpty: true,
		types.OpRegexMatch: true,
	},
	types.DataTypeNumber: {
		types.OpEquals: true, types.OpNotEquals: true,
		types.OpGreaterThan: true, types.OpLessThan: true,
		types.OpGreaterEqual: true, types.OpLessEqual: true,
	},
	types.DataTypeDate: {
		types.OpEquals: true, types.OpNotEquals: true,
		types.OpAfter: true, types.OpBefore: true,
		types.OpAfterEqual: true, types.OpBeforeEqual: true,
		types.OpLastDays: true,
	},
	types.DataTypeBoolean: {
		types.OpEquals: true,
	},
	types.DataTypeArray: {
		types.OpContains: true, types.OpNotContains: true,
		types.OpContainsAny: true, types.OpContainsAll: true,
		types.OpIsEmpty: true, types.OpIsNotEmpty: true,
	},
}

// Validate checks a criteria object before persistence.
// A nil or empty criteria is valid: it is the pass-through filter.
func Validate(criteria *types.Criteria) error {
	if criteria.IsEmpty() {
		return nil
	}

	if criteria.Operator != types.CombinatorAnd && criteria.Operator != types.CombinatorOr {
		return fmt.Errorf("%w: %q", types.ErrInvalidCombinator, criteria.Operator)
	}

	if len(criteria.Rules) > types.MaxRulesPerCriteria {
		return fmt.Errorf("%w: %d > %d", types.ErrTooManyRules, len(criteria.Rules), types.MaxRulesPerCriteria)
	}

	for i, rule := range criteria.Rules {
		if err := validateRule(rule); err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
	}

	return nil
}

func validateRule(rule types.Rule) error {
	if rule.Field == "" {
		return types.ErrEmptyFieldName
	}
	if len(rule.Field) > types.MaxFieldNameLength {
		return types.ErrFieldNameTooLong
	}

	ops, ok := operatorsByType[rule.DataType]
	if !ok {
		return fmt.Errorf("%w: %q", types.ErrUnknownDataType, rule.DataType)
	}
	if !ops[rule.Operator] {
		return fmt.Errorf("%w: %q on %q", types.ErrUnknownOperator, rule.Operator, rule.DataType)
	}

	if rule.Operator == types.OpContainsAny || rule.Operator == types.OpContainsAll {
		if values, ok := rule.Value.([]any); ok && len(values) > types.MaxArrayOperatorValues {
			return fmt.Errorf("%w: %d > %d", types.ErrTooManyArrayValues, len(values), types.MaxArrayOperatorValues)
		}
	}

	return nil
}
