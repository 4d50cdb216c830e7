// Package debug defines the listener interfaces a caller can plug into a
// search to observe its internal accept/reject/drop decisions (§4.2, §4.8,
// §6), without the core importing any particular logging library itself.
package debug

import (
	"github.com/transitcore/rangeraptor/pareto"
	"github.com/transitcore/rangeraptor/path"
	"github.com/transitcore/rangeraptor/transit"
)

// StopEventKind mirrors pareto.EventKind for stop-arrival listeners, kept
// as its own type so callers outside the pareto package have a stable name
// to switch on.
type StopEventKind = pareto.EventKind

// StopListener observes a single stop's pareto-set accept/reject/drop
// decisions during the Multi-Criteria search. arenaIdx identifies the
// arena record involved; stop is the stop the set belongs to.
type StopListener func(stop transit.Stop, kind StopEventKind, arenaIdx, by int, reason string)

// PathListener observes the destination-level pareto front's
// accept/reject/drop decisions as each departure-minute iteration offers
// candidate finished journeys.
type PathListener func(kind StopEventKind, candidate, by path.Path, reason string)

// Listeners bundles every debug hook a request can register. A nil field
// means "no observer"; the worker checks for nil before calling.
type Listeners struct {
	OnStopEvent StopListener
	OnPathEvent PathListener
	// OnRound fires once per completed round with the number of stops
	// marked for the next round, a cheap progress signal independent of
	// the per-element listeners above.
	OnRound func(round int, markedForNextRound int)
}
