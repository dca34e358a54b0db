package engine

import (
	"math"

	"github.com/helios-hq/meridian/pkg/rules"
)

// epsilon is the tolerance used for the = and != operators. Metric values
// arrive from float arithmetic, so exact equality is never tested.
const epsilon = 0.001

// CompareValues applies a condition operator to a resolved metric value
// and a threshold.
//
// Equality holds when the absolute difference is below epsilon; != is its
// exact complement. The remaining operators are strict numeric
// comparisons. Unrecognized operators evaluate to false.
func CompareValues(op rules.Operator, value, threshold float64) bool {
	switch op {
	case rules.OperatorGreaterThan:
		return value > threshold
	case rules.OperatorLessThan:
		return value < threshold
	case rules.OperatorGreaterEqual:
		return value >= threshold
	case rules.OperatorLessEqual:
		return value <= threshold
	case rules.OperatorEqual:
		return math.Abs(value-threshold) < epsilon
	case rules.OperatorNotEqual:
		return math.Abs(value-threshold) >= epsilon
	default:
		return false
	}
}
