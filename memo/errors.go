package memo

import "errors"

var (
	// ErrNotFound is returned when a target has no entry in a store or any
	// visible parent. Callers use it to detect cache misses.
	ErrNotFound = errors.New("target not found")

	// ErrOutsideContext is returned when a memoized call or a context
	// operation runs without an active Context.
	ErrOutsideContext = errors.New("no active memo context")

	// ErrNoTarget is returned when a dependency is registered outside of any
	// memoized evaluation.
	ErrNoTarget = errors.New("no target under evaluation")

	// ErrOverlayActive is returned when a store is written while a store
	// layered on it is still open.
	ErrOverlayActive = errors.New("store has open overlays")

	// ErrUnhashableArgument is returned when a target argument is neither
	// comparable nor a fmt.Stringer.
	ErrUnhashableArgument = errors.New("argument is neither comparable nor a fmt.Stringer")

	// ErrInvariantViolation is the panic value (wrapped) for graph
	// inconsistencies. It is never returned.
	ErrInvariantViolation = errors.New("memo graph invariant violated")
)
