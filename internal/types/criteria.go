package types

/*
 * Wire types for segmentation criteria.
 *
 * Criteria is the externally-visible schema: it is accepted from user input,
 * persisted verbatim on a list row, and replayed later against the full
 * contact universe. JSON field names below are the wire contract and must not
 * change.
 *
 * A criteria tree has exactly one level of aggregation: a combination
 * operator (AND/OR) over an ordered rule list. No nested groups; the
 * flat shape is deliberate, not a limitation to lift.
 *
 * Rules are wire-format strings rather than enums because unknown operators
 * and data types must round-trip unchanged and fail closed at evaluation
 * time instead of erroring at decode time.
 */

// Combinator joins rule results for one contact.
type Combinator string

const (
	CombinatorAnd Combinator = "AND"
	CombinatorOr  Combinator = "OR"
)

// DataType selects the comparator family for a rule. It is the single source
// of truth: the evaluator never introspects the runtime type of the resolved
// field value to decide behavior.
type DataType string

const (
	DataTypeString  DataType = "string"
	DataTypeNumber  DataType = "number"
	DataTypeDate    DataType = "date"
	DataTypeBoolean DataType = "boolean"
	DataTypeArray   DataType = "array"
)

// Rule operators, grouped by the data type they are defined for.
// An operator applied outside its type family evaluates to false.
const (
	OpEquals       = "equals"
	OpNotEquals    = "not_equals"
	OpContains     = "contains"
	OpNotContains  = "not_contains"
	OpStartsWith   = "starts_with"
	OpEndsWith     = "ends_with"
	OpIsEmpty      = "is_empty"
	OpIsNotEmpty   = "is_not_empty"
	OpRegexMatch   = "regex_match"
	OpGreaterThan  = "greater_than"
	OpLessThan     = "less_than"
	OpGreaterEqual = "greater_equal"
	OpLessEqual    = "less_equal"
	OpAfter        = "after"
	OpBefore       = "before"
	OpAfterEqual   = "after_equal"
	OpBeforeEqual  = "before_equal"
	OpLastDays     = "last_days"
	OpContainsAny  = "contains_any"
	OpContainsAll  = "contains_all"
)

// Rule is a single field/operator/value/dataType tuple evaluated against one
// contact. Immutable once evaluated.
type Rule struct {
	Field    string   `json:"field"`
	Operator string   `json:"operator"`
	Value    any      `json:"value"`
	DataType DataType `json:"dataType"`
}

// Criteria is the complete specification of a segmentation query.
// A nil Criteria or an empty rule list is a pass-through: every contact
// matches, regardless of the declared operator.
type Criteria struct {
	Operator Combinator `json:"operator"`
	Rules    []Rule     `json:"rules"`
}

// IsEmpty reports whether the criteria carries no rules and therefore
// matches every contact.
func (c *Criteria) IsEmpty() bool {
	return c == nil || len(c.Rules) == 0
}
