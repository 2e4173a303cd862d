package errors

import (
	"fmt"
	"math"

	"github.com/cockroachdb/errors"
)

// NonFiniteValueError reports a NaN or ±Inf that reached a numeric output.
type NonFiniteValueError struct {
	Op    string
	Name  string
	Value float64
}

func (e *NonFiniteValueError) Error() string {
	return fmt.Sprintf("ottertune: %s: non-finite value for %s (%v)", e.Op, e.Name, e.Value)
}

// NewNonFiniteValueError creates a NonFiniteValueError with a stack trace.
func NewNonFiniteValueError(op, name string, value float64) error {
	return errors.WithStack(&NonFiniteValueError{Op: op, Name: name, Value: value})
}

// CheckScalar checks a single named value for NaN or Inf.
func CheckScalar(op, name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NewNonFiniteValueError(op, name, value)
	}
	return nil
}

// CheckMatrix checks all values in a matrix and reports the first
// non-finite cell as "row,col".
func CheckMatrix(op string, matrix interface{ At(int, int) float64 }, rows, cols int) error {
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := matrix.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return NewNonFiniteValueError(op, fmt.Sprintf("%d,%d", i, j), v)
			}
		}
	}
	return nil
}
