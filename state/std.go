package state

import (
	"github.com/transitcore/rangeraptor/calc"
	"github.com/transitcore/rangeraptor/transit"
)

// TransitLeg is the real, wall-clock transit leg recorded when a stop
// arrival improves by riding a trip. Times are genuine seconds-since-
// midnight regardless of which directional calculator produced them.
type TransitLeg struct {
	FromStop      transit.Stop
	ToStop        transit.Stop
	DepartureTime int
	ArrivalTime   int
	Trip          transit.TripRef
}

// WalkLeg is the real walk leg recorded when a stop arrival improves via a
// transfer (or, at round 0, the access/egress leg itself).
type WalkLeg struct {
	FromStop transit.Stop
	ToStop   transit.Stop
	Duration int
}

// Record is the single per-round, per-stop entry the Standard state keeps
// (§4.4.1): at most one per (round, stop).
type Record struct {
	Valid bool
	Key   int // directional comparison value used by IsBetter.

	// Anchor is the stop whose own arrival licensed this leg: boarding
	// stop for a transit leg, source stop for a transfer. Chain recursion
	// for path assembly continues into Anchor's record at round-1 (for a
	// transit leg) or the same round (for a transfer, which never
	// advances the round counter).
	Anchor          transit.Stop
	AnchorPrevRound bool

	HasTransit bool
	Transit    TransitLeg

	HasTransfer bool
	Transfer    WalkLeg
}

// StdState is the "best-time" stop-arrival state: per round and stop, at
// most one record, plus a pointwise overall-best tracker (BestTimes) used
// to decide which stops feed the next round's pattern lookup.
type StdState struct {
	calc    calc.Calculator
	nStops  int
	nRounds int

	rounds [][]Record
	best   []int

	// marked accumulates stops touched (by transit or transfer) this
	// round, for the next round's findAllTransitForRound.
	marked *StopSet
	// transitTouched accumulates stops touched by transit only this
	// round, consumed by this round's transferForRound, then reset.
	transitTouched *StopSet
}

// NewStdState allocates state sized for nRounds rounds over nStops stops,
// once per request (§3 Lifecycles).
func NewStdState(c calc.Calculator, nStops, nRounds int) *StdState {
	s := &StdState{
		calc:           c,
		nStops:         nStops,
		nRounds:        nRounds,
		rounds:         make([][]Record, nRounds+1),
		best:           make([]int, nStops),
		marked:         NewStopSet(nStops),
		transitTouched: NewStopSet(nStops),
	}
	for k := range s.rounds {
		s.rounds[k] = make([]Record, nStops)
	}
	s.ResetForIteration()
	return s
}

// ResetForIteration fully resets the state, including the overall-best
// tracker: called once, before the first departure-minute iteration of a
// request.
func (s *StdState) ResetForIteration() {
	s.clearRounds()
	for i := range s.best {
		s.best[i] = s.calc.Unreached()
	}
}

// ResetRounds clears only the per-round record grid and touched-stop
// trackers, leaving the overall-best tracker untouched. Range Raptor scans
// departure minutes from latest to earliest and deliberately carries the
// best-time array across minutes (§4.5): an earlier departure can always
// match a later one by waiting, so results already found stay valid
// lower-bound seeds for the next, earlier minute.
func (s *StdState) ResetRounds() {
	s.clearRounds()
}

func (s *StdState) clearRounds() {
	for k := range s.rounds {
		for i := range s.rounds[k] {
			s.rounds[k][i] = Record{}
		}
	}
	s.marked.Reset()
	s.transitTouched.Reset()
}

// SetInitial seeds round 0 from an access (forward) or egress (reverse)
// leg: the stop is reachable "as-is" at arrival, with no further back-link.
func (s *StdState) SetInitial(stop transit.Stop, arrival int) {
	s.rounds[0][stop] = Record{Valid: true, Key: arrival, Anchor: -1}
	if s.calc.IsBetter(arrival, s.best[stop]) {
		s.best[stop] = arrival
	}
	s.marked.Add(stop)
}

// Best returns the pointwise-best arrival time recorded at stop so far
// this iteration, across every round.
func (s *StdState) Best(stop transit.Stop) int { return s.best[stop] }

// PrevRoundArrival returns the Key recorded for stop in round-1, or the
// unreached sentinel if that stop was never touched in round-1.
func (s *StdState) PrevRoundArrival(round int, stop transit.Stop) int {
	rec := s.rounds[round-1][stop]
	if !rec.Valid {
		return s.calc.Unreached()
	}
	return rec.Key
}

// RoundArrival returns the Key recorded for stop in round, or unreached.
func (s *StdState) RoundArrival(round int, stop transit.Stop) int {
	rec := s.rounds[round][stop]
	if !rec.Valid {
		return s.calc.Unreached()
	}
	return rec.Key
}

// Marked returns the stops touched (by transit or transfer) since the last
// ResetMarked, in insertion order.
func (s *StdState) Marked() []int { return s.marked.Stops() }

// HasMarked reports whether any stop was touched since the last
// ResetMarked — the worker's round-loop continuation condition.
func (s *StdState) HasMarked() bool { return s.marked.Len() > 0 }

// ResetMarked clears the marked set, consumed once per round by the
// worker before scanning patterns for the next round.
func (s *StdState) ResetMarked() { s.marked.Reset() }

// FilterMarked drops any currently-marked stop for which keep returns
// false, folding a heuristic pruning bound into the next round's scan.
func (s *StdState) FilterMarked(keep func(stop transit.Stop) bool) { s.marked.Filter(keep) }

// TransitTouched returns the stops reached by a transit leg so far this
// round, in insertion order — transferForRound's input.
func (s *StdState) TransitTouched() []int { return s.transitTouched.Stops() }

// ResetTransitTouched clears the transit-touch tracker at the start of
// each round.
func (s *StdState) ResetTransitTouched() { s.transitTouched.Reset() }

// TransitToStop attempts to improve the arrival at toStop via a transit
// leg boarded at boardStop. Accepted iff the new key strictly improves
// both the overall best at toStop and the previous round's arrival at
// toStop (the second check prevents a degenerate same-round reboarding,
// §4.4.1).
func (s *StdState) TransitToStop(round int, boardStop, toStop transit.Stop, key int, leg TransitLeg) bool {
	if !s.calc.IsBetter(key, s.best[toStop]) {
		return false
	}
	if !s.calc.IsBetter(key, s.PrevRoundArrival(round, toStop)) {
		return false
	}
	s.rounds[round][toStop] = Record{
		Valid: true, Key: key,
		Anchor: boardStop, AnchorPrevRound: true,
		HasTransit: true, Transit: leg,
	}
	s.best[toStop] = key
	s.marked.Add(toStop)
	s.transitTouched.Add(toStop)
	return true
}

// TransferToStop attempts to improve the arrival at toStop via a walk from
// fromStop, which must already have been reached by transit this same
// round. leg carries the real physical walk (which may run opposite to
// fromStop->toStop when the search is running in reverse) for later path
// assembly; toStop is always the graph stop whose state this call updates.
func (s *StdState) TransferToStop(round int, fromStop, toStop transit.Stop, key int, leg WalkLeg) bool {
	if !s.calc.IsBetter(key, s.best[toStop]) {
		return false
	}
	s.rounds[round][toStop] = Record{
		Valid: true, Key: key,
		Anchor: fromStop, AnchorPrevRound: false,
		HasTransfer: true, Transfer: leg,
	}
	s.best[toStop] = key
	s.marked.Add(toStop)
	return true
}

// BestRound returns the smallest round at which stop's current overall
// best arrival time was achieved (ties broken toward fewer transit legs),
// or -1 if stop was never reached this iteration.
func (s *StdState) BestRound(stop transit.Stop) int {
	best := s.best[stop]
	if best == s.calc.Unreached() {
		return -1
	}
	for k := 0; k <= s.nRounds; k++ {
		rec := s.rounds[k][stop]
		if rec.Valid && rec.Key == best {
			return k
		}
	}
	return -1
}

// RecordAt returns the record stored for (round, stop).
func (s *StdState) RecordAt(round int, stop transit.Stop) (Record, bool) {
	rec := s.rounds[round][stop]
	return rec, rec.Valid
}
