// Package strategy implements the per-pattern, per-stop-position scanning
// loop of a single Range Raptor round (§4.6): the part of the algorithm
// that actually rides trips and walks transfers, built once per profile on
// top of the direction-agnostic calc.Calculator and the profile's own
// stop-arrival state.
package strategy

import (
	"github.com/transitcore/rangeraptor/calc"
	"github.com/transitcore/rangeraptor/iterseq"
	"github.com/transitcore/rangeraptor/state"
	"github.com/transitcore/rangeraptor/transit"
)

// StdTransit is the Standard (best-time) profile's round worker: one
// record per stop per round, a single held boarding per pattern scan.
type StdTransit struct {
	Calc      calc.Calculator
	Provider  transit.Provider
	State     *state.StdState
	Threshold int
	InService func(transit.Trip) bool
	Exact     bool // round 1 only: require boarding exactly at the seed time, no invented wait.
}

// RunRound expands every pattern touching a stop marked since the last
// round, then expands transfers from every stop reached by transit this
// round. It consumes and clears both of State's touched-stop trackers.
// Returns ErrAdapterContract if the provider violates its contract.
func (st *StdTransit) RunRound(round int) error {
	marked := st.State.Marked()
	st.State.ResetMarked()
	st.State.ResetTransitTouched()
	if len(marked) == 0 {
		return nil
	}

	markedSet := make(map[transit.Stop]bool, len(marked))
	for _, s := range marked {
		markedSet[s] = true
	}

	for _, pattern := range st.Provider.PatternsTouching(marked) {
		if err := st.scanPattern(round, pattern, markedSet); err != nil {
			return err
		}
	}
	return st.transferForRound(round)
}

func (st *StdTransit) scanPattern(round int, pattern transit.Pattern, marked map[transit.Stop]bool) error {
	n := pattern.NumStops()
	positions := iterseq.NewSlice(st.Calc.Positions(n), false)

	hasBoard := false
	var boardTrip transit.TripIndex
	boardPos := -1
	boardStop := transit.Stop(-1)

	for positions.HasNext() {
		pos := positions.Next()
		stop := pattern.StopAt(pos)

		if hasBoard {
			trip := pattern.TripAt(boardTrip)
			alight := st.Calc.AlightTime(trip, pos)
			if st.Calc.IsBetter(alight, st.State.Best(stop)) &&
				st.Calc.IsBetter(alight, st.State.PrevRoundArrival(round, stop)) {
				fromPos, toPos := boardPos, pos
				if fromPos > toPos {
					fromPos, toPos = toPos, fromPos
				}
				leg := state.TransitLeg{
					FromStop:      pattern.StopAt(fromPos),
					ToStop:        pattern.StopAt(toPos),
					DepartureTime: trip.DepartureTime(fromPos),
					ArrivalTime:   trip.ArrivalTime(toPos),
					Trip:          trip.Ref(),
				}
				st.State.TransitToStop(round, boardStop, stop, alight, leg)
			}
		}

		if marked[stop] {
			prev := st.State.PrevRoundArrival(round, stop)
			if prev != st.Calc.Unreached() {
				target := st.Calc.EarliestBoardTime(prev)
				newTrip, found, err := calc.TripSearch(st.Calc, pattern, pos, target, boardTrip, hasBoard, st.Exact && round == 1, st.Threshold, st.InService)
				if err != nil {
					return err
				}
				if found {
					hasBoard = true
					boardTrip = newTrip
					boardPos = pos
					boardStop = stop
				}
			}
		}
	}
	return nil
}

// transferForRound walks every transfer out of every stop reached by
// transit this round, treating transfers as symmetric footpaths: a
// reverse search interprets TransfersFrom(stop) as the set of footpaths
// that, walked in the opposite physical direction, arrive at stop.
func (st *StdTransit) transferForRound(round int) error {
	nStops := st.Provider.NumStops()
	for _, stop := range st.State.TransitTouched() {
		arrival := st.State.RoundArrival(round, stop)
		if arrival == st.Calc.Unreached() {
			continue
		}
		for _, tr := range st.Provider.TransfersFrom(stop) {
			if err := transit.ValidateTransfer(nStops, tr); err != nil {
				return err
			}
			key := st.Calc.Plus(arrival, tr.Duration)
			physicalFrom, physicalTo := stop, tr.ToStop
			if !st.Calc.Forward() {
				physicalFrom, physicalTo = tr.ToStop, stop
			}
			leg := state.WalkLeg{FromStop: physicalFrom, ToStop: physicalTo, Duration: tr.Duration}
			st.State.TransferToStop(round, stop, tr.ToStop, key, leg)
		}
	}
	return nil
}
