package state

import (
	"github.com/transitcore/rangeraptor/calc"
	"github.com/transitcore/rangeraptor/pareto"
	"github.com/transitcore/rangeraptor/transit"
)

// McArrival is one arena-held Multi-Criteria stop arrival. Records are
// never moved or mutated in place once inserted; back-links reference
// other arena slots by index, matching the §9 design note's preference
// for an arena+index back-link over heap-allocated chain nodes.
type McArrival struct {
	Round       int
	Stop        transit.Stop
	ArrivalTime int
	Cost        int

	// Previous is the arena index this arrival's chain continues from, or
	// -1 at the access/egress root. PrevSameRound is true for a transfer
	// continuation (same round) and false for a transit continuation
	// (round-1), mirroring Record.AnchorPrevRound in StdState.
	Previous      int
	PrevSameRound bool

	HasTransit  bool
	Transit     TransitLeg
	HasTransfer bool
	Transfer    WalkLeg
}

// CostRelaxation loosens the cost criterion of the pareto comparisons used
// by McState and path.Collector: an existing element counts as better on
// cost only when the candidate's cost exceeds existing*Factor+Delta
// (pareto.RelaxedWorse). A candidate is still better on cost only when it
// is strictly cheaper. Relaxation therefore never retains a journey the
// strict comparison would reject; it can only let a candidate that is
// better elsewhere and within the slack on cost drop an existing element
// it would otherwise sit beside. Arrival time and round are always
// compared strictly.
type CostRelaxation struct {
	Factor float64
	Delta  float64
}

// McState is the Multi-Criteria stop-arrival state: an arena of McArrival
// records plus, per stop, a pareto.Set of arena indices non-dominated on
// (arrival time, round, cost).
type McState struct {
	calc   calc.Calculator
	nStops int
	relax  CostRelaxation

	arena   []McArrival
	perStop []*pareto.Set[int]

	// destination collects every arrival offered via OfferDestination,
	// non-dominated on the same three criteria; it is cleared only by
	// ResetForIteration.
	destination *pareto.Set[int]

	marked *StopSet

	// stopListener, when set, observes every per-stop pareto.Set's
	// accept/reject/drop decisions, tagged with the stop it belongs to.
	stopListener func(stop transit.Stop, kind pareto.EventKind, arenaIdx, by int, reason string)
}

// SetStopListener registers l to observe every per-stop pareto frontier's
// accept/reject/drop decisions (§4.2, §6 debug hooks). Safe to call before
// or after any stop's set has been created, since the listener is read at
// event time, not attachment time.
func (s *McState) SetStopListener(l func(stop transit.Stop, kind pareto.EventKind, arenaIdx, by int, reason string)) {
	s.stopListener = l
}

// NewMcState allocates Multi-Criteria state for a request.
func NewMcState(c calc.Calculator, nStops int, relax CostRelaxation) *McState {
	s := &McState{
		calc:    c,
		nStops:  nStops,
		relax:   relax,
		perStop: make([]*pareto.Set[int], nStops),
		marked:  NewStopSet(nStops),
	}
	s.destination = pareto.NewSet(s.compare)
	return s
}

// ResetForIteration drops the arena and every per-stop set, ready for the
// next departure-minute iteration.
func (s *McState) ResetForIteration() {
	s.arena = s.arena[:0]
	for i := range s.perStop {
		s.perStop[i] = nil
	}
	s.destination = pareto.NewSet(s.compare)
	s.marked.Reset()
}

func (s *McState) setFor(stop transit.Stop) *pareto.Set[int] {
	set := s.perStop[stop]
	if set == nil {
		set = pareto.NewSet(s.compare)
		set.AddListener(func(kind pareto.EventKind, element, by int, reason string) {
			if s.stopListener != nil {
				s.stopListener(stop, kind, element, by, reason)
			}
		})
		s.perStop[stop] = set
	}
	return set
}

// compare implements the pareto.Comparator[int] over arena indices: lower
// arrival time, lower round and lower cost are each an independent
// improving criterion, with cost compared under relaxation.
func (s *McState) compare(candidate, existing int) (candidateBetter, existingBetter bool) {
	a, b := s.arena[candidate], s.arena[existing]
	if s.calc.IsBetter(a.ArrivalTime, b.ArrivalTime) {
		candidateBetter = true
	} else if s.calc.IsBetter(b.ArrivalTime, a.ArrivalTime) {
		existingBetter = true
	}
	if a.Round < b.Round {
		candidateBetter = true
	} else if b.Round < a.Round {
		existingBetter = true
	}
	if a.Cost < b.Cost {
		candidateBetter = true
	} else if pareto.RelaxedWorse(a.Cost, b.Cost, s.relax.Factor, s.relax.Delta) {
		existingBetter = true
	}
	return candidateBetter, existingBetter
}

func (s *McState) push(a McArrival) int {
	idx := len(s.arena)
	s.arena = append(s.arena, a)
	return idx
}

// SetInitial seeds an access/egress arrival at a stop, round 0.
func (s *McState) SetInitial(stop transit.Stop, arrival, cost int) bool {
	idx := s.push(McArrival{Round: 0, Stop: stop, ArrivalTime: arrival, Cost: cost, Previous: -1})
	if !s.setFor(stop).Add(idx) {
		s.arena = s.arena[:idx]
		return false
	}
	s.marked.Add(stop)
	return true
}

// TransitToStop offers a transit-leg continuation of the arena record at
// boardIdx (itself a round-1 arrival at the boarding stop) as a new
// arrival at toStop.
func (s *McState) TransitToStop(round int, boardIdx int, toStop transit.Stop, arrival, cost int, leg TransitLeg) (int, bool) {
	idx := s.push(McArrival{
		Round: round, Stop: toStop, ArrivalTime: arrival, Cost: cost,
		Previous: boardIdx, PrevSameRound: false,
		HasTransit: true, Transit: leg,
	})
	if !s.setFor(toStop).Add(idx) {
		s.arena = s.arena[:idx]
		return 0, false
	}
	s.marked.Add(toStop)
	return idx, true
}

// TransferToStop offers a transfer-leg continuation of the arena record at
// fromIdx (a same-round transit arrival at the transfer's source stop) as
// a new arrival at toStop. leg carries the real physical walk, which may
// run opposite to fromIdx's stop -> toStop when the search runs in
// reverse.
func (s *McState) TransferToStop(round int, fromIdx int, toStop transit.Stop, arrival, cost int, leg WalkLeg) (int, bool) {
	idx := s.push(McArrival{
		Round: round, Stop: toStop, ArrivalTime: arrival, Cost: cost,
		Previous: fromIdx, PrevSameRound: true,
		HasTransfer: true, Transfer: leg,
	})
	if !s.setFor(toStop).Add(idx) {
		s.arena = s.arena[:idx]
		return 0, false
	}
	s.marked.Add(toStop)
	return idx, true
}

// Frontier returns the arena indices of the non-dominated arrivals
// currently held at stop.
func (s *McState) Frontier(stop transit.Stop) []int {
	set := s.perStop[stop]
	if set == nil {
		return nil
	}
	return set.Elements()
}

// Arrival dereferences an arena index.
func (s *McState) Arrival(idx int) McArrival { return s.arena[idx] }

// OfferDestination offers an arena index already accepted at some stop as
// a candidate finished journey, for iteration-wide path extraction.
func (s *McState) OfferDestination(idx int) bool { return s.destination.Add(idx) }

// Destination returns the current non-dominated destination arrivals.
func (s *McState) Destination() []int { return s.destination.Elements() }

// Marked returns the stops touched since the last ResetMarked.
func (s *McState) Marked() []int { return s.marked.Stops() }

// HasMarked reports whether any stop was touched since the last
// ResetMarked.
func (s *McState) HasMarked() bool { return s.marked.Len() > 0 }

// ResetMarked clears the marked set at the start of the next round.
func (s *McState) ResetMarked() { s.marked.Reset() }

// FilterMarked drops any currently-marked stop for which keep returns
// false, folding a heuristic pruning bound into the next round's scan.
func (s *McState) FilterMarked(keep func(stop transit.Stop) bool) { s.marked.Filter(keep) }
