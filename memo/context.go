package memo

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/on-the-ground/increment_al_go/memo/internal/helper"
	"github.com/on-the-ground/increment_al_go/memo/internal/model"
	"github.com/on-the-ground/increment_al_go/memo/log"
)

// Context binds a store as the active store for everything running under a
// context.Context. Nested Contexts layer a fresh store on the enclosing one;
// exiting a Context discards its store and leaves the parent untouched.
type Context struct {
	id     string
	store  *Store
	parent *Context
	depth  int
	exited atomic.Bool
}

func (c *Context) ID() string { return c.id }

func (c *Context) Store() *Store { return c.store }

// Parent returns the Context this one was layered on, or nil for a root.
func (c *Context) Parent() *Context { return c.parent }

// Depth is 0 for a root Context and grows by one per layer.
func (c *Context) Depth() int { return c.depth }

func (c *Context) Exited() bool { return c.exited.Load() }

// WithContext enters a new Context.
//
// If ctx already carries an active Context, the new store is layered on that
// Context's store; otherwise a root store is created. The returned function
// exits the Context and returns the outer ctx. Calling it more than once is
// a no-op.
//
// While the new Context is open, the enclosing Context's store rejects writes
// with ErrOverlayActive. Reads through the outer ctx still work.
//
// Usage:
//
//	ctx, end := memo.WithContext(ctx, memo.ContextConfig{})
//	defer end()
func WithContext(
	ctx context.Context,
	config ContextConfig,
) (context.Context, func() context.Context) {
	parent := enclosingContext(ctx)

	mc := &Context{
		id:     uuid.New().String(),
		parent: parent,
	}
	var parentStore *Store
	if parent != nil {
		parentStore = parent.store
		mc.depth = parent.depth + 1
	}
	mc.store = NewStore(parentStore, config.Store)

	ctxWith := withoutScope(context.WithValue(ctx, model.ActiveContext, mc))
	log.Effect(ctx, log.LogDebug, "entered memo context", map[string]interface{}{
		"contextId": mc.id,
		"storeId":   mc.store.id,
		"depth":     mc.depth,
	})

	return ctxWith, func() context.Context {
		if mc.exited.CompareAndSwap(false, true) {
			mc.store.Close()
			log.Effect(ctx, log.LogDebug, "exited memo context", map[string]interface{}{
				"contextId": mc.id,
				"entries":   mc.store.Len(),
			})
		}
		return ctx
	}
}

// ActiveContext returns the Context bound to ctx.
// It fails with ErrOutsideContext when none is bound or it has exited.
func ActiveContext(ctx context.Context) (*Context, error) {
	raw, err := helper.GetHandler(ctx, model.ActiveContext)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutsideContext, err)
	}
	mc := raw.(*Context)
	if mc.Exited() {
		return nil, fmt.Errorf("%w: context %s already exited", ErrOutsideContext, mc.id)
	}
	return mc, nil
}

// ActiveStore returns the store of the Context bound to ctx.
func ActiveStore(ctx context.Context) (*Store, error) {
	mc, err := ActiveContext(ctx)
	if err != nil {
		return nil, err
	}
	return mc.store, nil
}

// enclosingContext returns the innermost Context in ctx that has not exited.
func enclosingContext(ctx context.Context) *Context {
	raw, err := helper.GetHandler(ctx, model.ActiveContext)
	if err != nil {
		return nil
	}
	mc := raw.(*Context)
	for mc != nil && mc.Exited() {
		mc = mc.parent
	}
	return mc
}
