package segment

import (
	"math"

	"github.com/qhosting/smsegment/internal/types"
)

/*
 * Criteria aggregation: combine per-rule booleans into one membership
 * decision, and summarize results across a contact collection.
 *
 * Pass-through short-circuit: nil criteria or a zero-length rule list matches
 * every contact before AND/OR semantics are even consulted. Under strict
 * aggregation an empty AND would be vacuously true and an empty OR vacuously
 * false; the short-circuit deliberately overrides the OR case because absent
 * criteria means "no filter", not "match nothing".
 *
 * Short-circuit within a criteria: AND stops on the first false rule, OR on
 * the first true one. Rules are evaluated in source order; AND results are
 * order-independent, so callers may persist rules in any order.
 */

// DefaultPreviewSize bounds the summary preview when the caller passes a
// non-positive size.
const DefaultPreviewSize = 10

// Summary describes a filter run over a contact collection.
// MatchPercentage is a rounded integer, 0 for an empty base. Preview holds
// the first matches in source order, for UI display only.
type Summary struct {
	Total           int             `json:"total"`
	Matched         int             `json:"matched"`
	MatchPercentage int             `json:"matchPercentage"`
	Preview         []types.Contact `json:"preview"`
}

// Matches reports whether one contact satisfies the criteria.
func (e *Engine) Matches(c *types.Contact, criteria *types.Criteria) bool {
	if criteria.IsEmpty() {
		return true
	}

	switch criteria.Operator {
	case types.CombinatorOr:
		for _, rule := range criteria.Rules {
			if e.EvaluateRule(e.Resolve(c, rule.Field), rule) {
				return true
			}
		}
		return false
	default:
		// AND, and any unrecognized combinator on replayed criteria
		for _, rule := range criteria.Rules {
			if !e.EvaluateRule(e.Resolve(c, rule.Field), rule) {
				return false
			}
		}
		return true
	}
}

// Filter returns the matching subset in source order plus a summary.
// previewSize <= 0 uses DefaultPreviewSize; the cap is types.MaxPreviewSize.
func (e *Engine) Filter(contacts []types.Contact, criteria *types.Criteria, previewSize int) ([]types.Contact, Summary) {
	if previewSize <= 0 {
		previewSize = DefaultPreviewSize
	}
	if previewSize > types.MaxPreviewSize {
		previewSize = types.MaxPreviewSize
	}

	matched := make([]types.Contact, 0, len(contacts))
	for i := range contacts {
		if e.Matches(&contacts[i], criteria) {
			matched = append(matched, contacts[i])
		}
	}

	summary := Summary{
		Total:   len(contacts),
		Matched: len(matched),
	}
	if len(contacts) > 0 {
		summary.MatchPercentage = int(math.Round(float64(len(matched)) / float64(len(contacts)) * 100))
	}
	if len(matched) > previewSize {
		summary.Preview = matched[:previewSize]
	} else {
		summary.Preview = matched
	}

	return matched, summary
}
