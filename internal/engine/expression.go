package engine

import (
	"fmt"
	"strings"
)

// Operator is a comparison applied by a rule expression.
type Operator string

const (
	OperatorEquals         Operator = "EQUALS"
	OperatorNotEquals      Operator = "NOT_EQUALS"
	OperatorGreaterThan    Operator = "GREATER_THAN"
	OperatorGreaterOrEqual Operator = "GREATER_OR_EQUAL"
	OperatorLessThan       Operator = "LESS_THAN"
	OperatorLessOrEqual    Operator = "LESS_OR_EQUAL"
	OperatorBetween        Operator = "BETWEEN"
	OperatorIn             Operator = "IN"
)

// Expression is a single condition over an evaluation field. EQUALS and
// NOT_EQUALS compare Value numerically when both sides are numbers and by
// string form otherwise, so they work for fields like condition and
// direction. The ordering operators require a numeric Value (Low/High for
// BETWEEN); IN matches the string form of the field against Values.
type Expression struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value,omitempty"`
	Low      float64  `json:"low,omitempty"`
	High     float64  `json:"high,omitempty"`
	Values   []string `json:"values,omitempty"`
}

// Validate checks operator and operand consistency.
func (e *Expression) Validate() error {
	if strings.TrimSpace(e.Field) == "" {
		return fmt.Errorf("expression: field is required")
	}
	switch e.Operator {
	case OperatorEquals, OperatorNotEquals:
		if e.Value == nil {
			return fmt.Errorf("expression: %s requires a value", e.Operator)
		}
		return nil
	case OperatorGreaterThan, OperatorGreaterOrEqual,
		OperatorLessThan, OperatorLessOrEqual:
		if _, ok := toFloat(e.Value); !ok {
			return fmt.Errorf("expression: %s requires a numeric value", e.Operator)
		}
		return nil
	case OperatorBetween:
		if e.Low > e.High {
			return fmt.Errorf("expression: BETWEEN low %v exceeds high %v", e.Low, e.High)
		}
		return nil
	case OperatorIn:
		if len(e.Values) == 0 {
			return fmt.Errorf("expression: IN requires at least one value")
		}
		return nil
	default:
		return fmt.Errorf("expression: unknown operator %q", e.Operator)
	}
}

// Evaluate applies the expression to a field map. A missing field never
// matches. The ordering operators require a numeric field; equality falls
// back to string-form comparison for non-numeric fields; IN compares
// against the field's string form.
func (e *Expression) Evaluate(fields map[string]any) bool {
	raw, ok := fields[e.Field]
	if !ok {
		return false
	}

	switch e.Operator {
	case OperatorIn:
		s := fmt.Sprintf("%v", raw)
		for _, v := range e.Values {
			if s == v {
				return true
			}
		}
		return false
	case OperatorEquals:
		return valuesEqual(raw, e.Value)
	case OperatorNotEquals:
		return !valuesEqual(raw, e.Value)
	}

	num, ok := toFloat(raw)
	if !ok {
		return false
	}
	want, _ := toFloat(e.Value)

	switch e.Operator {
	case OperatorGreaterThan:
		return num > want
	case OperatorGreaterOrEqual:
		return num >= want
	case OperatorLessThan:
		return num < want
	case OperatorLessOrEqual:
		return num <= want
	case OperatorBetween:
		return num >= e.Low && num <= e.High
	default:
		return false
	}
}

// valuesEqual compares numerically when both sides are numbers and by
// string form otherwise.
func valuesEqual(a, b any) bool {
	if na, ok := toFloat(a); ok {
		if nb, ok := toFloat(b); ok {
			return na == nb
		}
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

// EvaluateAll reports whether every expression matches. An empty list
// matches everything.
func EvaluateAll(exprs []Expression, fields map[string]any) bool {
	for i := range exprs {
		if !exprs[i].Evaluate(fields) {
			return false
		}
	}
	return true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
