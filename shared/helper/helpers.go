package helper

import (
	"fmt"
)

// GetTypedValueOf safely asserts the result of a getter function to the expected type T.
// Returns an error if the getter fails or the type assertion fails.
// A nil result converts to the zero value of T.
func GetTypedValueOf[T any](getFn func() (any, error)) (T, error) {
	var zero T

	res, err := getFn()
	if err != nil {
		return zero, fmt.Errorf("failed to get value: %w", err)
	}
	return As[T](res)
}

// As asserts raw to T. A nil raw converts to the zero value of T.
func As[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	val, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected type: %T, want %T", raw, zero)
	}
	return val, nil
}
