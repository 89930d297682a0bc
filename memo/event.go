package memo

import (
	"fmt"
	"time"

	"github.com/rickb777/date/v2/timespan"
)

// TimeSpan brackets the instant an event was emitted.
type TimeSpan = timespan.TimeSpan

const epsilon = time.Millisecond

func now() TimeSpan {
	n := time.Now()
	return timespan.BetweenTimes(n.Add(-1*epsilon), n.Add(epsilon))
}

type EventKind int

const (
	// EventCached: an entry was built and inserted.
	EventCached EventKind = iota + 1
	// EventTweaked: an entry was overridden and pinned.
	EventTweaked
	// EventInvalidated: a local entry was removed by a cascade.
	EventInvalidated
	// EventMasked: a parent entry was hidden from this store by a cascade.
	EventMasked
)

func (k EventKind) String() string {
	switch k {
	case EventCached:
		return "cached"
	case EventTweaked:
		return "tweaked"
	case EventInvalidated:
		return "invalidated"
	case EventMasked:
		return "masked"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event describes one change to a store's entries.
type Event struct {
	Kind    EventKind
	Target  Target
	StoreID string
	Span    TimeSpan
}
