package strategy

import (
	"github.com/transitcore/rangeraptor/calc"
	"github.com/transitcore/rangeraptor/state"
	"github.com/transitcore/rangeraptor/transit"
)

// NoWaitTransit runs the heuristic pre-pass profile (§4.7): a best-times
// scan that discards mid-journey wait entirely, used only to bound the
// Multi-Criteria search (minimum transfers per stop, and a destination
// travel-duration/cost projection). A board is searched for at the
// earliest boardable time exactly as StdTransit/McTransit do, but the real
// wait incurred catching that trip (boardTimeShift: the gap between the
// earliest boardable time and the trip's actual departure) is subtracted
// back out of every alight time recorded downstream on that trip, so the
// bound this pass produces answers "how fast could this be ridden with
// zero wait", not "how fast was the next actual departure" — the
// admissible lower bound §8 property 8 requires. Alongside that shifted
// arrival time it accumulates, as a seed-relative sum independent of the
// arrival time's absolute value, the elapsed NoWait travel duration and
// the generalized cost of reaching each stop — both valid lower bounds to
// add onto an unrelated real search's own time/cost at the same stop.
// Because it discards path information it can afford a single round-robin
// scan per round; its trip searches use calc.DefaultBinarySearchThreshold
// rather than a configured threshold.
type NoWaitTransit struct {
	Calc      calc.Calculator
	Provider  transit.Provider
	State     *state.BestTimesState
	InService func(transit.Trip) bool
	Cost      CostParams
}

// RunRound expands every pattern touching a stop marked since the last
// round, then walks transfers out of every stop touched this round.
// Returns ErrAdapterContract if the provider violates its contract.
func (nw *NoWaitTransit) RunRound(round int) error {
	marked := nw.State.Marked()
	nw.State.ResetMarked()
	if len(marked) == 0 {
		return nil
	}
	markedSet := make(map[transit.Stop]bool, len(marked))
	touched := make(map[transit.Stop]bool, len(marked))
	for _, s := range marked {
		markedSet[s] = true
	}

	for _, pattern := range nw.Provider.PatternsTouching(marked) {
		if err := nw.scanPattern(round, pattern, markedSet, touched); err != nil {
			return err
		}
	}
	return nw.transferForRound(touched)
}

func (nw *NoWaitTransit) scanPattern(round int, pattern transit.Pattern, marked, touched map[transit.Stop]bool) error {
	n := pattern.NumStops()
	positions := nw.Calc.Positions(n)

	hasBoard := false
	var boardTrip transit.TripIndex
	boardPos := -1
	boardDuration, boardCost := 0, 0
	boardTimeShift := 0

	for _, pos := range positions {
		stop := pattern.StopAt(pos)

		if hasBoard {
			trip := pattern.TripAt(boardTrip)
			rawAlight := nw.Calc.AlightTime(trip, pos)
			// Shift the real alight time back toward the boarding stop by
			// the wait this particular trip happened to incur: the bound
			// this pass reports must not charge for a wait a faster trip
			// could have avoided.
			alight := nw.Calc.Minus(rawAlight, boardTimeShift)
			inVehicle := trip.ArrivalTime(pos) - trip.DepartureTime(boardPos)
			if inVehicle < 0 {
				inVehicle = -inVehicle
			}
			duration := boardDuration + inVehicle
			cost := boardCost + nw.Cost.BoardCost + inVehicle
			if nw.State.Improve(stop, alight, round-1, duration, cost) {
				touched[stop] = true
			}
		}

		if marked[stop] {
			arrival := nw.State.Arrival(stop)
			if arrival != nw.Calc.Unreached() {
				target := nw.Calc.EarliestBoardTime(arrival)
				newTrip, found, err := calc.TripSearch(nw.Calc, pattern, pos, target, boardTrip, hasBoard, false, calc.DefaultBinarySearchThreshold, nw.InService)
				if err != nil {
					return err
				}
				if found {
					hasBoard = true
					boardTrip = newTrip
					boardPos = pos
					boardDuration = nw.State.Duration(stop)
					boardCost = nw.State.Cost(stop)
					searchTime := nw.Calc.SearchTime(pattern.TripAt(newTrip), pos)
					boardTimeShift = searchTime - target
					if boardTimeShift < 0 {
						boardTimeShift = -boardTimeShift
					}
				}
			}
		}
	}
	return nil
}

// transferForRound walks every transfer out of every stop reached by
// transit this round, mirroring StdTransit.transferForRound but folding
// duration and cost through the walk leg instead of storing it.
func (nw *NoWaitTransit) transferForRound(touched map[transit.Stop]bool) error {
	nStops := nw.Provider.NumStops()
	for stop := range touched {
		arrival := nw.State.Arrival(stop)
		duration := nw.State.Duration(stop)
		cost := nw.State.Cost(stop)
		for _, tr := range nw.Provider.TransfersFrom(stop) {
			if err := transit.ValidateTransfer(nStops, tr); err != nil {
				return err
			}
			key := nw.Calc.Plus(arrival, tr.Duration)
			walkCost := int(float64(tr.Cost) * nw.Cost.WalkReluctance)
			nw.State.Improve(tr.ToStop, key, nw.State.Transfers(stop), duration+tr.Duration, cost+walkCost)
		}
	}
	return nil
}
