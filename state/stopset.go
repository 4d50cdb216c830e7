// Package state holds the per-round, per-stop stop-arrival records: the
// Standard best-time state, the Multi-Criteria pareto state, and the
// best-times-only state used by heuristic pre-passes (§4.4).
package state

// StopSet is a scratch touched-stop bitset with stable insertion order,
// allocated once per request and reused round over round (§5, §9). It
// backs both the "touched this round" and "touched overall, for next
// round's pattern lookup" trackers in StdState and McState.
type StopSet struct {
	present []bool
	order   []int
}

// NewStopSet allocates a set over stops [0, nStops).
func NewStopSet(nStops int) *StopSet {
	return &StopSet{present: make([]bool, nStops)}
}

// Add marks stop as present; a no-op if already marked.
func (s *StopSet) Add(stop int) {
	if !s.present[stop] {
		s.present[stop] = true
		s.order = append(s.order, stop)
	}
}

// Has reports whether stop is currently marked.
func (s *StopSet) Has(stop int) bool { return s.present[stop] }

// Stops returns the marked stops in insertion order.
func (s *StopSet) Stops() []int { return s.order }

// Len reports how many stops are marked.
func (s *StopSet) Len() int { return len(s.order) }

// Reset clears every mark, ready for reuse next round.
func (s *StopSet) Reset() {
	for _, stop := range s.order {
		s.present[stop] = false
	}
	s.order = s.order[:0]
}

// Filter keeps only the marked stops for which keep returns true,
// preserving insertion order; used to fold a heuristic pruning bound into
// the marked set between rounds (§4.7).
func (s *StopSet) Filter(keep func(stop int) bool) {
	kept := s.order[:0]
	for _, stop := range s.order {
		if keep(stop) {
			kept = append(kept, stop)
		} else {
			s.present[stop] = false
		}
	}
	s.order = kept
}
