package segment

import (
	"errors"
	"testing"

	"github.com/qhosting/smsegment/internal/types"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		criteria *types.Criteria
		wantErr  error
	}{
		{
			name:     "nil criteria is the pass-through filter",
			criteria: nil,
			wantErr:  nil,
		},
		{
			name:     "empty rules valid regardless of operator",
			criteria: &types.Criteria{Operator: "BOGUS"},
			wantErr:  nil,
		},
		{
			name: "valid AND criteria",
			criteria: &types.Criteria{
				Operator: types.CombinatorAnd,
				Rules: []types.Rule{
					{Field: "score", Operator: types.OpGreaterEqual, Value: float64(80), DataType: types.DataTypeNumber},
				},
			},
			wantErr: nil,
		},
		{
			name: "invalid combinator with rules",
			criteria: &types.Criteria{
				Operator: "XOR",
				Rules: []types.Rule{
					{Field: "score", Operator: types.OpEquals, Value: float64(1), DataType: types.DataTypeNumber},
				},
			},
			wantErr: types.ErrInvalidCombinator,
		},
		{
			name: "empty field name",
			criteria: &types.Criteria{
				Operator: types.CombinatorAnd,
				Rules:    []types.Rule{{Field: "", Operator: types.OpEquals, Value: "x", DataType: types.DataTypeString}},
			},
			wantErr: types.ErrEmptyFieldName,
		},
		{
			name: "unknown data type",
			criteria: &types.Criteria{
				Operator: types.CombinatorAnd,
				Rules:    []types.Rule{{Field: "f", Operator: types.OpEquals, Value: "x", DataType: "uuid"}},
			},
			wantErr: types.ErrUnknownDataType,
		},
		{
			name: "operator outside its type family",
			criteria: &types.Criteria{
				Operator: types.CombinatorAnd,
				Rules:    []types.Rule{{Field: "f", Operator: types.OpRegexMatch, Value: ".*", DataType: types.DataTypeNumber}},
			},
			wantErr: types.ErrUnknownOperator,
		},
		{
			name: "last_days valid on dates",
			criteria: &types.Criteria{
				Operator: types.CombinatorOr,
				Rules:    []types.Rule{{Field: "lastMessageAt", Operator: types.OpLastDays, Value: float64(7), DataType: types.DataTypeDate}},
			},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.criteria)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_TooManyRules(t *testing.T) {
	rules := make([]types.Rule, types.MaxRulesPerCriteria+1)
	for i := range rules {
		rules[i] = types.Rule{Field: "score", Operator: types.OpEquals, Value: float64(i), DataType: types.DataTypeNumber}
	}

	err := Validate(&types.Criteria{Operator: types.CombinatorAnd, Rules: rules})
	if !errors.Is(err, types.ErrTooManyRules) {
		t.Errorf("Validate() error = %v, want ErrTooManyRules", err)
	}
}

func TestValidate_TooManyArrayValues(t *testing.T) {
	values := make([]any, types.MaxArrayOperatorValues+1)
	for i := range values {
		values[i] = "tag"
	}

	err := Validate(&types.Criteria{
		Operator: types.CombinatorAnd,
		Rules:    []types.Rule{{Field: "tags", Operator: types.OpContainsAny, Value: values, DataType: types.DataTypeArray}},
	})
	if !errors.Is(err, types.ErrTooManyArrayValues) {
		t.Errorf("Validate() error = %v, want ErrTooManyArrayValues", err)
	}
}

// Validation rejects what evaluation silently fails closed on; the two
// boundaries must stay consistent about what the known set is.
func TestValidate_KnownOperatorsEvaluate(t *testing.T) {
	e := NewEngineAt(fixedNow())
	c := testContact()

	for dt, ops := range operatorsByType {
		for op := range ops {
			criteria := &types.Criteria{
				Operator: types.CombinatorOr,
				Rules:    []types.Rule{{Field: "score", Operator: op, Value: "x", DataType: dt}},
			}
			if err := Validate(criteria); err != nil {
				t.Errorf("Validate rejected known operator %s/%s: %v", dt, op, err)
			}
			// Must not panic, whatever the boolean outcome
			_ = e.Matches(c, criteria)
		}
	}
}
