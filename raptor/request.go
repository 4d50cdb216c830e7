package raptor

import (
	"github.com/pkg/errors"

	"github.com/transitcore/rangeraptor/debug"
	"github.com/transitcore/rangeraptor/state"
	"github.com/transitcore/rangeraptor/strategy"
	"github.com/transitcore/rangeraptor/transit"
)

// Profile selects which round-worker and state combination a search uses
// (§4.6).
type Profile int

const (
	// Standard keeps one best-time record per stop per round and
	// assembles full itineraries.
	Standard Profile = iota
	// NoWaitStandard is Standard with the board-slack safety margin
	// suppressed, trading a slightly less conservative arrival bound for
	// the ability to board the instant a stop is reached.
	NoWaitStandard
	// BestTime reports only arrival times reached at the egress/access
	// stops, without reconstructing itineraries — the cheap summary
	// profile used when only a travel-time estimate is needed.
	BestTime
	// NoWaitBestTime is BestTime with board slack suppressed.
	NoWaitBestTime
	// MultiCriteria retains every pareto-optimal (time, transfers, cost)
	// journey; a NoWait heuristic pre-pass in both directions prunes the
	// search only when Request.Optimizations selects a heuristic filter.
	MultiCriteria
)

// Optimizations is the set of optional performance/pruning optimizations a
// request may opt into (§4.7, §6). Bits combine with bitwise Or; the zero
// value runs the exhaustive, un-pruned search.
type Optimizations int

const (
	// OptParallel runs the Multi-Criteria profile's forward and reverse
	// heuristic pre-passes concurrently instead of sequentially. Has no
	// effect unless TRANSFERS_STOP_FILTER or
	// PARETO_CHECK_AGAINST_DESTINATION is also set, since otherwise no
	// heuristic pre-pass runs at all.
	OptParallel Optimizations = 1 << iota
	// OptTransferStopFilter drops a marked stop from a round's pattern
	// scan once the heuristic's minimum remaining transfers already
	// exceeds what could still fit within the round budget.
	OptTransferStopFilter
	// OptParetoCheckAgainstDestination projects every Multi-Criteria stop
	// arrival to the destination using the reverse heuristic's
	// (travelDuration, transfers, cost) bound, and skips expanding a
	// stop whose best possible projection is already dominated by the
	// current destination front.
	OptParetoCheckAgainstDestination
)

// Has reports whether every bit set in want is also set in o.
func (o Optimizations) Has(want Optimizations) bool { return o&want == want }

// Request is everything a single search needs beyond the transit.Provider
// itself: direction, time window, access/egress, and (for MultiCriteria)
// the generalized cost model.
type Request struct {
	Profile Profile
	// ArriveBy selects the reverse (arrive-by) calculator; the zero value
	// is a forward (depart-at) search.
	ArriveBy bool

	Access []transit.AccessLeg
	Egress []transit.EgressLeg

	// EarliestDeparture seeds a depart-at search (ArriveBy == false);
	// LatestArrival seeds an arrive-by search. Only the field matching
	// ArriveBy is read, except that MultiCriteria with a heuristic filter
	// optimization reads both to seed its forward and reverse pre-passes.
	EarliestDeparture      int
	LatestArrival          int
	DepartureWindowSeconds int

	Cost           strategy.CostParams
	CostRelaxation state.CostRelaxation

	// Optimizations selects which of the optional §4.7 pruning passes
	// the MultiCriteria profile applies; ignored by every other profile.
	Optimizations Optimizations

	Debug debug.Listeners
}

// Validate checks the request is well-formed before a Worker runs it.
func (r Request) Validate() error {
	if len(r.Access) == 0 {
		return errors.Wrap(ErrInvalidRequest, "no access legs")
	}
	if len(r.Egress) == 0 {
		return errors.Wrap(ErrInvalidRequest, "no egress legs")
	}
	if r.DepartureWindowSeconds < 0 {
		return errors.Wrap(ErrInvalidRequest, "negative departure window")
	}
	if r.Profile < Standard || r.Profile > MultiCriteria {
		return errors.Wrapf(ErrInvalidRequest, "unknown profile %d", r.Profile)
	}
	return nil
}
