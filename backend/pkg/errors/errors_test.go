package errors

import (
	stderrors "errors"
	"testing"
)

func TestBaseErrorFormatting(t *testing.T) {
	inner := stderrors.New("boom")
	err := NewBaseError(ErrorTypeStore, "redis ping failed", inner)

	if got := err.Error(); got != "[store] redis ping failed: boom" {
		t.Errorf("Unexpected message: %q", got)
	}
	if !stderrors.Is(err, inner) {
		t.Error("Wrapped error not reachable through Unwrap")
	}

	bare := NewBaseError(ErrorTypeConfig, "MODEL_ID is required", nil)
	if got := bare.Error(); got != "[config] MODEL_ID is required" {
		t.Errorf("Unexpected message: %q", got)
	}
}

func TestCalculatorSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{ErrDivisionByZero, ErrInvalidSyntax, ErrUnsupportedOperator, ErrEmptyExpression}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && stderrors.Is(a, b) {
				t.Errorf("Sentinels %d and %d are not distinct", i, j)
			}
		}
	}
}
