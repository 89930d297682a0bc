package memo

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// targetSet is an index set of targets keyed by arena id.
type targetSet map[TargetID]Target

func (ts targetSet) add(t Target) { ts[t.id] = t }

// sorted returns the members ordered by canonical key.
func (ts targetSet) sorted() []Target {
	out := make([]Target, 0, len(ts))
	for _, t := range ts {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

// entry is one cache slot. Its reverse edges live in Store.dependants so
// that a child store can point at parent-owned targets without touching the
// parent.
type entry struct {
	target       Target
	value        any
	dependencies targetSet
}

// Store maps targets to cached values and keeps the dependency graph between
// them. A store may be layered on a parent: lookups that miss locally fall
// through to the parent unless the target is masked here. A store never
// writes to its parent.
//
// A store with open overlays (children that are not closed) is frozen:
// Cache, Tweak and Invalidate fail with ErrOverlayActive, since a write the
// overlays cannot see would leave them answering from stale entries.
//
// Every public method is atomic. Evaluating a memoized call is not, so a
// store is meant to have one writer at a time.
type Store struct {
	id     string
	parent *Store

	mu         sync.RWMutex
	entries    map[TargetID]*entry
	dependants map[TargetID]targetSet
	masked     targetSet
	pinned     targetSet

	events   chan Event
	closed   bool
	children int
	released bool
}

// NewStore creates a store layered on parent, or a root store when parent is nil.
func NewStore(parent *Store, cfg StoreConfig) *Store {
	s := &Store{
		id:         uuid.New().String(),
		parent:     parent,
		entries:    make(map[TargetID]*entry),
		dependants: make(map[TargetID]targetSet),
		masked:     make(targetSet),
		pinned:     make(targetSet),
	}
	if cfg.EventBufferSize > 0 {
		s.events = make(chan Event, cfg.EventBufferSize)
	}
	if parent != nil {
		parent.mu.Lock()
		parent.children++
		parent.mu.Unlock()
	}
	return s
}

func (s *Store) ID() string { return s.id }

func (s *Store) Parent() *Store { return s.parent }

// Len returns the number of local entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Events returns the store's event channel, or nil when events are disabled.
// Sends never block: events are dropped while the buffer is full.
func (s *Store) Events() <-chan Event {
	return s.events
}

// Overlays returns the number of open stores layered directly on s.
func (s *Store) Overlays() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.children
}

// Close stops event emission, closes the event channel and releases the
// parent once no overlay of s is open. Entries stay readable.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.events != nil {
		close(s.events)
	}
	release := s.children == 0
	if release {
		s.released = true
	}
	s.mu.Unlock()

	if release {
		s.releaseParent()
	}
}

// releaseParent drops s from its parent's overlay count. A closed parent
// whose last overlay goes away releases its own parent in turn.
func (s *Store) releaseParent() {
	p := s.parent
	if p == nil {
		return
	}
	p.mu.Lock()
	p.children--
	cascade := p.closed && p.children == 0 && !p.released
	if cascade {
		p.released = true
	}
	p.mu.Unlock()

	if cascade {
		p.releaseParent()
	}
}

// Contains reports whether target resolves in this store or a visible parent.
func (s *Store) Contains(target Target) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.containsLocked(target)
}

// Get returns the cached value for target, or ErrNotFound.
func (s *Store) Get(target Target) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.local(target); ok {
		return e.value, nil
	}
	if s.parent != nil && !s.isMasked(target) {
		return s.parent.Get(target)
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, target)
}

// Cache invalidates any entry for target, then stores value with the given
// dependencies. Every dependency must already resolve in this store or a
// visible parent; otherwise ErrNotFound is returned and nothing changes.
func (s *Store) Cache(target Target, value any, dependencies []Target) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cacheLocked(target, value, dependencies, EventCached)
}

// Tweak overrides target with value, with no dependencies, and pins it.
func (s *Store) Tweak(target Target, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cacheLocked(target, value, nil, EventTweaked); err != nil {
		return err
	}
	s.pinned.add(target)
	return nil
}

// Invalidate removes target and every entry that transitively depends on it.
// Parent entries in the cascade are masked instead of removed. It returns
// the affected targets in wave order.
func (s *Store) Invalidate(target Target) ([]Target, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writableLocked(); err != nil {
		return nil, err
	}
	return s.invalidateLocked(target), nil
}

// Dependencies returns the targets read while building target.
func (s *Store) Dependencies(target Target) ([]Target, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.local(target); ok {
		return e.dependencies.sorted(), true
	}
	if s.parent != nil && !s.isMasked(target) {
		return s.parent.Dependencies(target)
	}
	return nil, false
}

// Dependants returns the visible targets whose builds read target.
func (s *Store) Dependants(target Target) ([]Target, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.containsLocked(target) {
		return nil, false
	}
	return s.visibleDependantsLocked(target).sorted(), true
}

// Pinned reports whether target was set locally by Tweak and is still present.
func (s *Store) Pinned(target Target) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.pinned[target.id]
	return ok
}

// Masked reports whether this store hides the parent's entry for target.
func (s *Store) Masked(target Target) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isMasked(target)
}

func (s *Store) writableLocked() error {
	if s.children > 0 {
		return fmt.Errorf("%w: store %s has %d open overlays", ErrOverlayActive, s.id, s.children)
	}
	return nil
}

func (s *Store) cacheLocked(target Target, value any, dependencies []Target, kind EventKind) error {
	if err := s.writableLocked(); err != nil {
		return err
	}
	for _, dep := range dependencies {
		if dep.Equal(target) {
			return fmt.Errorf("%w: %s cannot depend on itself", ErrNotFound, target)
		}
		if !s.containsLocked(dep) {
			return fmt.Errorf("%w: dependency %s of %s", ErrNotFound, dep, target)
		}
	}

	s.invalidateLocked(target)

	e := &entry{
		target:       target,
		value:        value,
		dependencies: make(targetSet, len(dependencies)),
	}
	for _, dep := range dependencies {
		if !s.containsLocked(dep) {
			// dep itself depended on target, so the old target stays invalidated
			return fmt.Errorf("%w: dependency %s of %s was invalidated by rebuilding it", ErrNotFound, dep, target)
		}
		e.dependencies.add(dep)
	}

	s.entries[target.id] = e
	delete(s.masked, target.id)
	for _, dep := range e.dependencies {
		ds, ok := s.dependants[dep.id]
		if !ok {
			ds = make(targetSet)
			s.dependants[dep.id] = ds
		}
		ds.add(target)
	}
	s.emit(kind, target)
	return nil
}

// invalidateLocked runs the cascade in waves. Each wave keeps only the ids
// that are still present (locally or through the parent), removes or masks
// them, and collects their dependants as the next wave. A target reached
// along two paths is handled once because by its second visit it is gone.
func (s *Store) invalidateLocked(target Target) []Target {
	var affected []Target
	processed := make(targetSet)
	frontier := targetSet{target.id: target}

	for len(frontier) > 0 {
		next := make(targetSet)
		for _, t := range frontier.sorted() {
			_, isLocal := s.local(t)
			inParent := s.parent != nil && !s.isMasked(t) && s.parent.Contains(t)
			if !isLocal && !inParent {
				continue
			}

			// collected before removal so parent edges are still readable
			for _, d := range s.visibleDependantsLocked(t) {
				next.add(d)
			}

			if isLocal {
				s.removeEntryLocked(t.id)
				s.emit(EventInvalidated, t)
			}
			if inParent {
				s.masked.add(t)
				s.emit(EventMasked, t)
			}
			processed.add(t)
			affected = append(affected, t)
		}
		frontier = next
	}

	for id, t := range processed {
		if len(s.dependants[id]) > 0 {
			panic(fmt.Errorf("%w: dependants of %s did not drain: %v", ErrInvariantViolation, t, s.dependants[id].sorted()))
		}
		delete(s.dependants, id)
	}
	return affected
}

// removeEntryLocked drops a local entry and its forward edges.
func (s *Store) removeEntryLocked(id TargetID) {
	e, ok := s.entries[id]
	if !ok {
		return
	}
	for depID := range e.dependencies {
		ds := s.dependants[depID]
		delete(ds, id)
		if len(ds) == 0 {
			delete(s.dependants, depID)
		}
	}
	delete(s.entries, id)
	delete(s.pinned, id)
}

// visibleDependantsLocked merges local reverse edges with the parent's
// dependants that this store still sees (neither shadowed nor masked).
func (s *Store) visibleDependantsLocked(target Target) targetSet {
	out := make(targetSet)
	for _, d := range s.dependants[target.id] {
		out.add(d)
	}
	if s.parent == nil || s.isMasked(target) {
		return out
	}
	parentDeps, ok := s.parent.Dependants(target)
	if !ok {
		return out
	}
	for _, d := range parentDeps {
		if _, shadowed := s.entries[d.id]; shadowed || s.isMasked(d) {
			continue
		}
		out.add(d)
	}
	return out
}

func (s *Store) containsLocked(target Target) bool {
	if _, ok := s.local(target); ok {
		return true
	}
	if s.parent != nil && !s.isMasked(target) {
		return s.parent.Contains(target)
	}
	return false
}

// local returns the local entry for target. Two distinct targets sharing an
// arena id would corrupt the graph, so that case panics.
func (s *Store) local(target Target) (*entry, bool) {
	e, ok := s.entries[target.id]
	if !ok {
		return nil, false
	}
	if !e.target.Equal(target) {
		panic(fmt.Errorf("%w: target id %s shared by %s and %s", ErrInvariantViolation, target.id, e.target, target))
	}
	return e, true
}

func (s *Store) isMasked(target Target) bool {
	_, ok := s.masked[target.id]
	return ok
}

func (s *Store) emit(kind EventKind, target Target) {
	if s.events == nil || s.closed {
		return
	}
	select {
	case s.events <- Event{Kind: kind, Target: target, StoreID: s.id, Span: now()}:
	default:
	}
}
