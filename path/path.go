// Package path assembles the back-link chains held in state.StdState and
// state.McState into ordered, physically-directed Path values, and
// maintains the destination-level pareto front the worker ultimately
// returns (§4.8).
package path

import (
	"github.com/transitcore/rangeraptor/calc"
	"github.com/transitcore/rangeraptor/pareto"
	"github.com/transitcore/rangeraptor/state"
	"github.com/transitcore/rangeraptor/transit"
)

// LegKind distinguishes the four leg shapes a Path can contain.
type LegKind int

const (
	LegAccess LegKind = iota
	LegTransit
	LegTransfer
	LegEgress
)

// Leg is one physically-ordered segment of a Path: walk or ride, always
// expressed as real stop-to-stop, time-ascending travel regardless of
// which direction the search that found it scanned in.
type Leg struct {
	Kind          LegKind
	FromStop      transit.Stop
	ToStop        transit.Stop
	DepartureTime int
	ArrivalTime   int
	Trip          transit.TripRef // zero value unless Kind == LegTransit
}

// Path is one complete, pareto-surviving journey from true origin to true
// destination.
type Path struct {
	DepartureTime int
	ArrivalTime   int
	Transfers     int
	Cost          int
	Legs          []Leg
}

// compare is the destination-level Comparator (§4.8): shorter overall
// travel time, fewer transfers and lower cost are each an independent
// improving criterion. Cost is compared under the same relaxation used to
// build the stop-level Multi-Criteria frontier, so a path's survival at
// the destination is consistent with its survival at every intermediate
// stop.
func compare(relax state.CostRelaxation) pareto.Comparator[Path] {
	return func(candidate, existing Path) (candidateBetter, existingBetter bool) {
		candidateDuration := candidate.ArrivalTime - candidate.DepartureTime
		existingDuration := existing.ArrivalTime - existing.DepartureTime
		if candidateDuration < existingDuration {
			candidateBetter = true
		} else if existingDuration < candidateDuration {
			existingBetter = true
		}
		if candidate.Transfers < existing.Transfers {
			candidateBetter = true
		} else if existing.Transfers < candidate.Transfers {
			existingBetter = true
		}
		if candidate.Cost < existing.Cost {
			candidateBetter = true
		} else if pareto.RelaxedWorse(candidate.Cost, existing.Cost, relax.Factor, relax.Delta) {
			existingBetter = true
		}
		return candidateBetter, existingBetter
	}
}

// Collector accumulates the non-dominated finished journeys across an
// entire departure-window search: every departure-minute iteration offers
// its destination arrivals, and only the global pareto front survives.
type Collector struct {
	set *pareto.Set[Path]
}

// NewCollector builds a Collector whose cost criterion is relaxed by
// relax; pass the zero value for a strict (factor 1, delta 0) destination
// front, which is what the Standard profile uses.
func NewCollector(relax state.CostRelaxation) *Collector {
	return &Collector{set: pareto.NewSet(compare(relax))}
}

// Offer adds candidate to the running destination front.
func (c *Collector) Offer(p Path) bool { return c.set.Add(p) }

// SetListener registers l to observe the destination front's
// accept/reject/drop decisions as each departure-minute iteration offers
// candidate finished journeys (§4.8 debug hooks).
func (c *Collector) SetListener(l pareto.Listener[Path]) { c.set.AddListener(l) }

// Dominated reports whether a candidate with the given projected
// (travelDuration, transfers, cost) would already be dominated by the
// current destination front, without adding anything to it (§4.7
// destination-cost pruning). DepartureTime is left 0 and ArrivalTime set
// to the projected travel duration directly, since compare only ever
// reads their difference.
func (c *Collector) Dominated(travelDuration, transfers, cost int) bool {
	return c.set.Dominated(Path{ArrivalTime: travelDuration, Transfers: transfers, Cost: cost})
}

// Paths returns the current non-dominated journeys, in no particular
// order.
func (c *Collector) Paths() []Path { return c.set.Elements() }

// FromStd walks a StdState back-link chain starting at the arrival
// recorded for destStop in round, together with the egress leg attached
// to that stop, and returns the assembled Path in physical travel order
// (earliest leg first) regardless of search direction.
func FromStd(c calc.Calculator, st *state.StdState, round int, destStop transit.Stop, egress transit.EgressLeg) (Path, bool) {
	rec, ok := st.RecordAt(round, destStop)
	if !ok {
		return Path{}, false
	}

	var legs []Leg
	curRound := round
	curRec := rec
	for {
		hasAnchor := curRec.Anchor >= 0
		var nextRound int
		var nextRec state.Record
		if hasAnchor {
			nextRound = curRound
			if curRec.AnchorPrevRound {
				nextRound = curRound - 1
			}
			var ok bool
			nextRec, ok = st.RecordAt(nextRound, curRec.Anchor)
			if !ok {
				hasAnchor = false
			}
		}

		if curRec.HasTransit {
			legs = append(legs, Leg{
				Kind: LegTransit, FromStop: curRec.Transit.FromStop, ToStop: curRec.Transit.ToStop,
				DepartureTime: curRec.Transit.DepartureTime, ArrivalTime: curRec.Transit.ArrivalTime,
				Trip: curRec.Transit.Trip,
			})
		} else if curRec.HasTransfer {
			// Key's physical meaning flips with direction: forward, it is
			// the real arrival clock at this leg's later endpoint; reverse,
			// it is the real departure clock at this leg's earlier
			// endpoint. The anchor record holds the other endpoint's Key.
			var dep, arr int
			if c.Forward() {
				dep, arr = nextRec.Key, curRec.Key
			} else {
				dep, arr = curRec.Key, nextRec.Key
			}
			legs = append(legs, Leg{
				Kind: LegTransfer, FromStop: curRec.Transfer.FromStop, ToStop: curRec.Transfer.ToStop,
				DepartureTime: dep, ArrivalTime: arr,
			})
		}

		if !hasAnchor {
			break
		}
		curRound, curRec = nextRound, nextRec
	}

	reverse(legs)

	if c.Forward() {
		legs = append(legs, Leg{Kind: LegEgress, FromStop: destStop, ToStop: egress.Stop, DepartureTime: st.RoundArrival(round, destStop), ArrivalTime: st.RoundArrival(round, destStop) + egress.Duration})
	} else {
		legs = prepend(legs, Leg{Kind: LegAccess, FromStop: egress.Stop, ToStop: destStop, DepartureTime: st.RoundArrival(round, destStop) - egress.Duration, ArrivalTime: st.RoundArrival(round, destStop)})
	}

	return finish(legs), true
}

// reverse flips a leg slice in place; legs are accumulated walking the
// back-link chain from destination to origin, so they come out in
// reverse physical order.
func reverse(legs []Leg) {
	for i, j := 0, len(legs)-1; i < j; i, j = i+1, j-1 {
		legs[i], legs[j] = legs[j], legs[i]
	}
}

func prepend(legs []Leg, l Leg) []Leg {
	out := make([]Leg, 0, len(legs)+1)
	out = append(out, l)
	return append(out, legs...)
}

func finish(legs []Leg) Path {
	p := Path{Legs: legs}
	if len(legs) == 0 {
		return p
	}
	p.DepartureTime = legs[0].DepartureTime
	p.ArrivalTime = legs[len(legs)-1].ArrivalTime
	for _, l := range legs {
		if l.Kind == LegTransit {
			p.Transfers++
		}
	}
	if p.Transfers > 0 {
		p.Transfers--
	}
	return p
}

// FromMc walks a McState arena chain starting at arenaIdx and returns the
// assembled Path, mirroring FromStd but reading arena records instead of
// the StdState grid.
func FromMc(c calc.Calculator, st *state.McState, arenaIdx int, egress transit.EgressLeg) Path {
	var legs []Leg
	idx := arenaIdx
	rootCost := st.Arrival(arenaIdx).Cost
	for {
		rec := st.Arrival(idx)
		var prev state.McArrival
		hasPrev := rec.Previous >= 0
		if hasPrev {
			prev = st.Arrival(rec.Previous)
		}

		if rec.HasTransit {
			legs = append(legs, Leg{
				Kind: LegTransit, FromStop: rec.Transit.FromStop, ToStop: rec.Transit.ToStop,
				DepartureTime: rec.Transit.DepartureTime, ArrivalTime: rec.Transit.ArrivalTime,
				Trip: rec.Transit.Trip,
			})
		} else if rec.HasTransfer {
			var dep, arr int
			if c.Forward() {
				dep, arr = prev.ArrivalTime, rec.ArrivalTime
			} else {
				dep, arr = rec.ArrivalTime, prev.ArrivalTime
			}
			legs = append(legs, Leg{
				Kind: LegTransfer, FromStop: rec.Transfer.FromStop, ToStop: rec.Transfer.ToStop,
				DepartureTime: dep, ArrivalTime: arr,
			})
		}
		if !hasPrev {
			break
		}
		idx = rec.Previous
	}

	reverse(legs)

	root := st.Arrival(arenaIdx)
	destStop := root.Stop
	arrival := root.ArrivalTime
	if c.Forward() {
		legs = append(legs, Leg{Kind: LegEgress, FromStop: destStop, ToStop: egress.Stop, DepartureTime: arrival, ArrivalTime: arrival + egress.Duration})
	} else {
		legs = prepend(legs, Leg{Kind: LegAccess, FromStop: egress.Stop, ToStop: destStop, DepartureTime: arrival - egress.Duration, ArrivalTime: arrival})
	}

	p := finish(legs)
	p.Cost = rootCost + egress.Cost
	return p
}
