// Package memo is an incremental-computation engine: it memoizes pure
// computations, records which memoized calls each build read, and forgets
// every dependant when an input changes. Nothing is recomputed eagerly; the
// next call rebuilds whatever was forgotten.
//
// # Vocabulary
//
//   - Target: a computation identity applied to an argument list.
//   - Store: cached values plus the dependency graph, optionally layered on a
//     parent store.
//   - Scope: the dependencies read by one in-flight cache miss.
//   - Context: binds a store to a context.Context. Nested Contexts layer a
//     disposable overlay on the enclosing store.
//
// All state travels in context.Context. There are no globals and no
// goroutine-local stacks.
//
// Example:
//
//	dec := memo.MemoizeI0O1("dec", func(ctx context.Context) (int, error) {
//	    return 1, nil
//	})
//	bar := memo.MemoizeI1O1("bar", func(ctx context.Context, x int) (int, error) {
//	    d, err := dec(ctx)
//	    return x - d, err
//	})
//
//	ctx, end := memo.WithContext(ctx, memo.ContextConfig{})
//	defer end()
//
//	v, _ := bar(ctx, 4)                            // 3, computes bar and dec
//	_ = memo.Tweak(ctx, memo.MustTarget("dec"), 4) // forgets dec and bar(4)
//	v, _ = bar(ctx, 4)                             // 0, rebuilds bar(4)
//
// # Layering
//
// Entering a Context inside another creates a child store. Reads fall through
// to the parent; writes stay in the child. Invalidating or tweaking a target
// in the child masks the parent's copy of it and of everything that depends
// on it, so the overlay rebuilds them locally. Exiting the child drops the
// overlay and the parent is exactly as before. While a child is open its
// parent rejects writes with ErrOverlayActive.
//
// # Concurrency
//
// Evaluation is synchronous. Store methods are individually atomic, but a
// memoized call (lookup, compute, cache) is not, so one writer per store at a
// time is the contract.
package memo
