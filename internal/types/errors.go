package types

import "errors"

// Sentinel errors for the criteria save boundary and the storage layer.
// The evaluation path never returns these: malformed rule content fails
// closed to a non-match instead of surfacing an error.
var (
	// ErrTooManyRules indicates a criteria object exceeds MaxRulesPerCriteria.
	ErrTooManyRules = errors.New("criteria has too many rules")

	// ErrEmptyFieldName indicates a rule with a blank field name.
	ErrEmptyFieldName = errors.New("rule field name is empty")

	// ErrFieldNameTooLong indicates a rule field name exceeds MaxFieldNameLength.
	ErrFieldNameTooLong = errors.New("rule field name too long")

	// ErrInvalidCombinator indicates a combination operator other than AND/OR.
	ErrInvalidCombinator = errors.New("criteria operator must be AND or OR")

	// ErrUnknownDataType indicates a rule data type outside the known set.
	ErrUnknownDataType = errors.New("unknown rule data type")

	// ErrUnknownOperator indicates an operator outside the known set for its data type.
	ErrUnknownOperator = errors.New("unknown operator for data type")

	// ErrTooManyArrayValues indicates a contains_any/contains_all value list
	// exceeds MaxArrayOperatorValues.
	ErrTooManyArrayValues = errors.New("array operator has too many values")

	// ErrTooManyTags indicates an imported contact exceeds MaxTagsPerContact.
	ErrTooManyTags = errors.New("contact has too many tags")

	// ErrTooManyCustomFields indicates an imported contact exceeds MaxCustomFields.
	ErrTooManyCustomFields = errors.New("contact has too many custom fields")

	// ErrListNotFound indicates a list lookup by ID returned no row.
	ErrListNotFound = errors.New("list not found")

	// ErrNotDynamicList indicates a refresh was requested for a list without
	// stored criteria.
	ErrNotDynamicList = errors.New("list has no stored criteria")
)
