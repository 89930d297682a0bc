package memo

import (
	"context"
	"errors"
	"fmt"

	"github.com/on-the-ground/increment_al_go/memo/log"
	"github.com/on-the-ground/increment_al_go/shared/helper"
)

// Computation is a pure function of its arguments plus whatever memoized
// computations it calls through ctx.
type Computation interface {
	Invoke(ctx context.Context, args ...any) (any, error)
}

// ComputationFunc adapts a plain function to Computation.
type ComputationFunc func(ctx context.Context, args ...any) (any, error)

func (f ComputationFunc) Invoke(ctx context.Context, args ...any) (any, error) {
	return f(ctx, args...)
}

// Memoized is a Computation bound to a stable identity. Its results are
// cached in the active store and its reads of other memoized computations
// are recorded as dependencies.
type Memoized struct {
	identity    string
	computation Computation
}

// Memoize wraps c under identity. The identity must be unique per
// computation: it is the function half of every Target c produces.
//
// A computation that reaches its own Target, directly or through other
// memoized calls, recurses without bound. Cycles are not detected.
func Memoize(identity string, c Computation) *Memoized {
	return &Memoized{identity: identity, computation: c}
}

func (m *Memoized) Identity() string { return m.identity }

// Target builds the target for a call with args, without calling anything.
func (m *Memoized) Target(args ...any) (Target, error) {
	return NewTarget(m.identity, args...)
}

// Call resolves the computation for args in the active store.
//
// On a hit the cached value is returned as is. On a miss the computation runs
// with a fresh Scope in its context; its result is cached together with the
// targets it read. Errors from the computation are returned unchanged and
// leave nothing cached. A caller that recovers from such an error depends on
// what the failed build read, not on the failed target.
func (m *Memoized) Call(ctx context.Context, args ...any) (any, error) {
	mc, err := ActiveContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", m.identity, err)
	}
	target, err := m.Target(args...)
	if err != nil {
		return nil, err
	}

	if scope, ok := ScopeFrom(ctx); ok {
		scope.AddDependency(target)
	}

	value, err := mc.store.Get(target)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if log.Enabled(ctx) {
		log.Effect(ctx, log.LogDebug, "cache miss", map[string]interface{}{
			"target":  target.String(),
			"storeId": mc.store.id,
		})
	}

	scopedCtx, scope := withScope(ctx, target)
	result, err := m.computation.Invoke(scopedCtx, args...)
	if err != nil {
		log.Effect(ctx, log.LogWarn, "computation failed", map[string]interface{}{
			"target": target.String(),
			"err":    err,
		})
		abandon(ctx, scope)
		return nil, err
	}
	if err := mc.store.Cache(target, result, scope.Dependencies()); err != nil {
		abandon(ctx, scope)
		return nil, fmt.Errorf("caching %s: %w", target, err)
	}
	return result, nil
}

// abandon swaps the target of a failed build for the targets it read in the
// enclosing scope, if any.
func abandon(ctx context.Context, failed *Scope) {
	if enclosing, ok := ScopeFrom(ctx); ok {
		enclosing.replace(failed.Target(), failed.Dependencies())
	}
}

// MemoizeI0O1 memoizes a computation without arguments.
func MemoizeI0O1[O1 any](
	identity string,
	fn func(context.Context) (O1, error),
) func(context.Context) (O1, error) {
	m := Memoize(identity, ComputationFunc(func(ctx context.Context, _ ...any) (any, error) {
		return fn(ctx)
	}))
	return func(ctx context.Context) (O1, error) {
		return typed[O1](m.Call(ctx))
	}
}

func MemoizeI1O1[I1 any, O1 any](
	identity string,
	fn func(context.Context, I1) (O1, error),
) func(context.Context, I1) (O1, error) {
	m := Memoize(identity, ComputationFunc(func(ctx context.Context, args ...any) (any, error) {
		return fn(ctx, arg[I1](args[0]))
	}))
	return func(ctx context.Context, i1 I1) (O1, error) {
		return typed[O1](m.Call(ctx, i1))
	}
}

func MemoizeI2O1[I1, I2 any, O1 any](
	identity string,
	fn func(context.Context, I1, I2) (O1, error),
) func(context.Context, I1, I2) (O1, error) {
	m := Memoize(identity, ComputationFunc(func(ctx context.Context, args ...any) (any, error) {
		return fn(ctx, arg[I1](args[0]), arg[I2](args[1]))
	}))
	return func(ctx context.Context, i1 I1, i2 I2) (O1, error) {
		return typed[O1](m.Call(ctx, i1, i2))
	}
}

func MemoizeI3O1[I1, I2, I3 any, O1 any](
	identity string,
	fn func(context.Context, I1, I2, I3) (O1, error),
) func(context.Context, I1, I2, I3) (O1, error) {
	m := Memoize(identity, ComputationFunc(func(ctx context.Context, args ...any) (any, error) {
		return fn(ctx, arg[I1](args[0]), arg[I2](args[1]), arg[I3](args[2]))
	}))
	return func(ctx context.Context, i1 I1, i2 I2, i3 I3) (O1, error) {
		return typed[O1](m.Call(ctx, i1, i2, i3))
	}
}

func typed[O any](raw any, err error) (O, error) {
	if err != nil {
		var zero O
		return zero, err
	}
	return helper.As[O](raw)
}

// arg converts a positional argument back to its static type; a nil
// interface argument becomes the zero value.
func arg[T any](a any) T {
	v, _ := a.(T)
	return v
}
