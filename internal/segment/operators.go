package segment

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/qhosting/smsegment/internal/types"
)

/*
 * Rule evaluation: resolved field value + operator + comparison value ->
 * boolean. Branches strictly on the declared data type first, then on the
 * operator within that type. The declared type is the single source of truth
 * for comparator selection; the runtime type of the resolved value is never
 * introspected to pick behavior.
 *
 * Fail-closed policy: an operator outside its type family, a malformed regex,
 * or an unparseable date evaluates to false rather than erroring. A malformed
 * rule excludes contacts; it never aborts the filter.
 *
 * Coercion asymmetry: numeric coercion falls back to 0 on failure (the rule
 * degrades to comparing against zero), while date parsing failure fails the
 * whole rule. Persisted campaign lists depend on the asymmetry; do not unify.
 *
 * Why function-based: operators are a flat switch per type family, matching
 * an enumerable wire contract. A switch over 20 operator strings is cleaner
 * than 20 single-method implementations.
 */

// EvaluateRule applies one rule's operator to a resolved field value.
// Pure and side-effect-free: same inputs always yield the same boolean.
func (e *Engine) EvaluateRule(resolved any, rule types.Rule) bool {
	switch rule.DataType {
	case types.DataTypeString:
		return evalString(resolved, rule.Operator, rule.Value)
	case types.DataTypeNumber:
		return evalNumber(resolved, rule.Operator, rule.Value)
	case types.DataTypeDate:
		return e.evalDate(resolved, rule.Operator, rule.Value)
	case types.DataTypeBoolean:
		return evalBoolean(resolved, rule.Operator, rule.Value)
	case types.DataTypeArray:
		return evalArray(resolved, rule.Operator, rule.Value)
	default:
		return false
	}
}

// evalString compares case-insensitively. Nil coerces to the empty string, so
// existence-requiring operators miss and is_empty hits on absent fields.
func evalString(value any, op string, target any) bool {
	v := strings.ToLower(toString(value))
	t := strings.ToLower(toString(target))

	switch op {
	case types.OpEquals:
		return v == t
	case types.OpNotEquals:
		return v != t
	case types.OpContains:
		return strings.Contains(v, t)
	case types.OpNotContains:
		return !strings.Contains(v, t)
	case types.OpStartsWith:
		return strings.HasPrefix(v, t)
	case types.OpEndsWith:
		return strings.HasSuffix(v, t)
	case types.OpIsEmpty:
		return v == ""
	case types.OpIsNotEmpty:
		return v != ""
	case types.OpRegexMatch:
		re, err := regexp.Compile("(?i)" + toString(target))
		if err != nil {
			return false
		}
		return re.MatchString(toString(value))
	default:
		return false
	}
}

// evalNumber compares both sides as float64 with a 0 fallback on parse
// failure: a rule comparing a non-numeric field degrades to comparing
// against zero rather than failing.
func evalNumber(value any, op string, target any) bool {
	v := toNumber(value)
	t := toNumber(target)

	switch op {
	case types.OpEquals:
		return v == t
	case types.OpNotEquals:
		return v != t
	case types.OpGreaterThan:
		return v > t
	case types.OpLessThan:
		return v < t
	case types.OpGreaterEqual:
		return v >= t
	case types.OpLessEqual:
		return v <= t
	default:
		return false
	}
}

// evalDate fails the rule when either side does not parse as a date.
// last_days ignores the date-ness of the comparison value and reads it as an
// integer day count instead: true when the field date is on or after
// "now minus N days".
func (e *Engine) evalDate(value any, op string, target any) bool {
	v, ok := toDate(value)
	if !ok {
		return false
	}

	if op == types.OpLastDays {
		cutoff := e.now().AddDate(0, 0, -int(toNumber(target)))
		return !v.Before(cutoff)
	}

	t, ok := toDate(target)
	if !ok {
		return false
	}

	switch op {
	case types.OpEquals:
		return v.Equal(t)
	case types.OpNotEquals:
		return !v.Equal(t)
	case types.OpAfter:
		return v.After(t)
	case types.OpBefore:
		return v.Before(t)
	case types.OpAfterEqual:
		return !v.Before(t)
	case types.OpBeforeEqual:
		return !v.After(t)
	default:
		return false
	}
}

// evalBoolean supports equals only, on truthiness of both sides.
func evalBoolean(value any, op string, target any) bool {
	if op != types.OpEquals {
		return false
	}
	return toBool(value) == toBool(target)
}

// evalArray coerces the field to an empty slice when not array-shaped.
// contains_any/contains_all require an array rule value; anything else is false.
func evalArray(value any, op string, target any) bool {
	items := toStringSlice(value)

	switch op {
	case types.OpContains:
		return sliceContains(items, toString(target))
	case types.OpNotContains:
		return !sliceContains(items, toString(target))
	case types.OpContainsAny:
		targets, ok := toStringSliceStrict(target)
		if !ok {
			return false
		}
		for _, t := range targets {
			if sliceContains(items, t) {
				return true
			}
		}
		return false
	case types.OpContainsAll:
		targets, ok := toStringSliceStrict(target)
		if !ok {
			return false
		}
		for _, t := range targets {
			if !sliceContains(items, t) {
				return false
			}
		}
		return true
	case types.OpIsEmpty:
		return len(items) == 0
	case types.OpIsNotEmpty:
		return len(items) > 0
	default:
		return false
	}
}

// toString stringifies scalars with an empty-string fallback for nil.
func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		if s {
			return "true"
		}
		return "false"
	case time.Time:
		return s.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// toNumber parses with a 0 fallback on failure.
func toNumber(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	case bool:
		if n {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// toDate accepts time.Time values, RFC 3339 strings, plain dates, and
// millisecond epochs (JSON numbers). Everything else fails the parse.
func toDate(v any) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return d, true
	case string:
		if t, err := time.Parse(time.RFC3339, d); err == nil {
			return t, true
		}
		if t, err := time.Parse("2006-01-02", d); err == nil {
			return t, true
		}
		return time.Time{}, false
	case float64:
		return time.UnixMilli(int64(d)).UTC(), true
	case int64:
		return time.UnixMilli(d).UTC(), true
	default:
		return time.Time{}, false
	}
}

// toBool is dynamic-language truthiness: empty string, zero, nil, empty
// slice, and zero time are false; everything else (including "false") is true.
func toBool(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		return b != ""
	case float64:
		return b != 0
	case int:
		return b != 0
	case int64:
		return b != 0
	case []string:
		return len(b) > 0
	case []any:
		return len(b) > 0
	case time.Time:
		return !b.IsZero()
	default:
		return true
	}
}

// toStringSlice coerces to a string slice, empty when not array-shaped.
func toStringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, e := range s {
			out = append(out, toString(e))
		}
		return out
	default:
		return nil
	}
}

// toStringSliceStrict is like toStringSlice but reports non-array input
// instead of coercing it away; contains_any/contains_all fail closed on it.
func toStringSliceStrict(v any) ([]string, bool) {
	switch v.(type) {
	case []string, []any:
		return toStringSlice(v), true
	default:
		return nil, false
	}
}

// sliceContains is exact element equality. Array membership is deliberately
// case-sensitive; only string-type operators fold case.
func sliceContains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
