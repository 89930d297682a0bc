package memo

import (
	"context"
	"fmt"
	"sync"

	"github.com/on-the-ground/increment_al_go/memo/internal/model"
)

// Scope accumulates the dependencies read while one cache miss is evaluated.
// It lives exactly as long as that evaluation: the memoizing wrapper opens it
// and hands it down through the context given to the computation, so nested
// memoized calls register against the nearest enclosing scope.
type Scope struct {
	target Target

	mu   sync.Mutex
	deps []Target
	seen map[TargetID]struct{}
}

func newScope(target Target) *Scope {
	return &Scope{
		target: target,
		seen:   make(map[TargetID]struct{}),
	}
}

// Target returns the target being built.
func (s *Scope) Target() Target { return s.target }

// AddDependency records dep. Registering the same target twice is a no-op.
func (s *Scope) AddDependency(dep Target) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[dep.id]; ok {
		return
	}
	s.seen[dep.id] = struct{}{}
	s.deps = append(s.deps, dep)
}

// replace drops target and records deps in its place.
func (s *Scope) replace(target Target, deps []Target) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[target.id]; ok {
		delete(s.seen, target.id)
		kept := s.deps[:0]
		for _, d := range s.deps {
			if d.id != target.id {
				kept = append(kept, d)
			}
		}
		s.deps = kept
	}
	for _, dep := range deps {
		if _, ok := s.seen[dep.id]; ok {
			continue
		}
		s.seen[dep.id] = struct{}{}
		s.deps = append(s.deps, dep)
	}
}

// Dependencies returns the recorded targets in first-registration order.
func (s *Scope) Dependencies() []Target {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Target(nil), s.deps...)
}

func withScope(ctx context.Context, target Target) (context.Context, *Scope) {
	scope := newScope(target)
	return context.WithValue(ctx, model.ActiveScope, scope), scope
}

// withoutScope hides any enclosing scope, e.g. when a new Context is entered
// in the middle of an evaluation.
func withoutScope(ctx context.Context) context.Context {
	return context.WithValue(ctx, model.ActiveScope, (*Scope)(nil))
}

// ScopeFrom returns the nearest enclosing evaluation scope, if any.
func ScopeFrom(ctx context.Context) (*Scope, bool) {
	scope, _ := ctx.Value(model.ActiveScope).(*Scope)
	return scope, scope != nil
}

// AddDependency registers dep on the nearest enclosing evaluation scope.
func AddDependency(ctx context.Context, dep Target) error {
	scope, ok := ScopeFrom(ctx)
	if !ok {
		return fmt.Errorf("%w: cannot register %s", ErrNoTarget, dep)
	}
	scope.AddDependency(dep)
	return nil
}
