package state

import (
	"github.com/transitcore/rangeraptor/calc"
	"github.com/transitcore/rangeraptor/transit"
)

// BestTimesState is the minimal state used by the NoWait heuristic
// pre-passes (§4.7): a pointwise-best arrival time, transfer count,
// elapsed travel duration and generalized cost per stop, with no
// back-links at all, since the heuristic only ever feeds pruning bounds
// into the real search and never assembles a path itself. Duration and
// cost are accumulated as plain sums from each stop's own seed (starting
// from the seed leg's own duration and cost), not anchored to the seed's
// absolute arrival time, so
// they remain valid lower bounds to add onto an unrelated real search's
// own arrival time or cost at the same stop (§4.7 destination-cost
// pruning).
type BestTimesState struct {
	calc      calc.Calculator
	arrival   []int
	transfers []int
	duration  []int
	cost      []int
	marked    *StopSet
}

// NewBestTimesState allocates heuristic state for nStops stops.
func NewBestTimesState(c calc.Calculator, nStops int) *BestTimesState {
	s := &BestTimesState{
		calc:      c,
		arrival:   make([]int, nStops),
		transfers: make([]int, nStops),
		duration:  make([]int, nStops),
		cost:      make([]int, nStops),
		marked:    NewStopSet(nStops),
	}
	s.Reset()
	return s
}

// Reset clears every stop back to unreached.
func (s *BestTimesState) Reset() {
	for i := range s.arrival {
		s.arrival[i] = s.calc.Unreached()
		s.transfers[i] = -1
		s.duration[i] = 0
		s.cost[i] = 0
	}
	s.marked.Reset()
}

// Arrival returns the best arrival time recorded at stop, or the
// unreached sentinel.
func (s *BestTimesState) Arrival(stop transit.Stop) int { return s.arrival[stop] }

// Transfers returns the fewest transfers used to achieve stop's current
// best arrival, or -1 if unreached.
func (s *BestTimesState) Transfers(stop transit.Stop) int { return s.transfers[stop] }

// Duration returns the elapsed NoWait travel time from stop's seed to
// stop, consistent with the current best arrival.
func (s *BestTimesState) Duration(stop transit.Stop) int { return s.duration[stop] }

// Cost returns the generalized NoWait cost from stop's seed to stop,
// consistent with the current best arrival.
func (s *BestTimesState) Cost(stop transit.Stop) int { return s.cost[stop] }

// Improve offers a new (arrival, transfers, duration, cost) tuple for
// stop, accepting it when it strictly improves the recorded arrival time.
// Ties on arrival time are broken toward fewer transfers, matching the
// NoWait heuristic's "first feasible, then cheapest" preference.
func (s *BestTimesState) Improve(stop transit.Stop, arrival, transfers, duration, cost int) bool {
	cur := s.arrival[stop]
	if s.calc.IsBetter(arrival, cur) {
		s.arrival[stop] = arrival
		s.transfers[stop] = transfers
		s.duration[stop] = duration
		s.cost[stop] = cost
		s.marked.Add(stop)
		return true
	}
	if arrival == cur && (s.transfers[stop] < 0 || transfers < s.transfers[stop]) {
		s.transfers[stop] = transfers
		s.duration[stop] = duration
		s.cost[stop] = cost
		s.marked.Add(stop)
		return true
	}
	return false
}

// Marked returns the stops touched since the last ResetMarked.
func (s *BestTimesState) Marked() []int { return s.marked.Stops() }

// HasMarked reports whether any stop was touched since the last
// ResetMarked.
func (s *BestTimesState) HasMarked() bool { return s.marked.Len() > 0 }

// ResetMarked clears the marked set at the start of the next round.
func (s *BestTimesState) ResetMarked() { s.marked.Reset() }
