package strategy

import (
	"github.com/transitcore/rangeraptor/calc"
	"github.com/transitcore/rangeraptor/iterseq"
	"github.com/transitcore/rangeraptor/state"
	"github.com/transitcore/rangeraptor/transit"
)

// CostParams weights the generalized cost the Multi-Criteria profile
// accumulates alongside arrival time and round (§4.6 McTransit): a fixed
// per-boarding cost plus reluctance multipliers on waiting and walking.
// In-vehicle time always contributes at weight 1.
type CostParams struct {
	BoardCost      int
	WaitReluctance float64
	WalkReluctance float64
}

// McTransit is the Multi-Criteria profile's round worker. Unlike StdTransit
// it holds every non-dominated boarding at a stop position, not just one:
// a pattern can be boarded from several arena records simultaneously when
// none dominates the others.
type McTransit struct {
	Calc      calc.Calculator
	Provider  transit.Provider
	State     *state.McState
	Threshold int
	InService func(transit.Trip) bool
	Cost      CostParams
}

// boarding is one currently-held boarding candidate for a pattern scan:
// the arena index it continues from, the trip it rides, and the position
// it boarded at (needed to compute in-vehicle time and physical legs).
type boarding struct {
	arenaIdx int
	trip     transit.TripIndex
	pos      int
	waitCost int
}

// RunRound returns ErrAdapterContract if the provider violates its
// contract.
func (mc *McTransit) RunRound(round int) error {
	marked := mc.State.Marked()
	mc.State.ResetMarked()
	if len(marked) == 0 {
		return nil
	}
	markedSet := make(map[transit.Stop]bool, len(marked))
	for _, s := range marked {
		markedSet[s] = true
	}
	for _, pattern := range mc.Provider.PatternsTouching(marked) {
		if err := mc.scanPattern(round, pattern, markedSet); err != nil {
			return err
		}
	}
	return mc.transferForRound(round)
}

func (mc *McTransit) scanPattern(round int, pattern transit.Pattern, marked map[transit.Stop]bool) error {
	n := pattern.NumStops()
	positions := iterseq.NewSlice(mc.Calc.Positions(n), false)

	var boardings []boarding

	for positions.HasNext() {
		pos := positions.Next()
		stop := pattern.StopAt(pos)

		for _, b := range boardings {
			trip := pattern.TripAt(b.trip)
			alight := mc.Calc.AlightTime(trip, pos)
			anchor := mc.State.Arrival(b.arenaIdx)
			fromPos, toPos := b.pos, pos
			if fromPos > toPos {
				fromPos, toPos = toPos, fromPos
			}
			inVehicle := trip.ArrivalTime(toPos) - trip.DepartureTime(fromPos)
			if inVehicle < 0 {
				inVehicle = -inVehicle
			}
			cost := anchor.Cost + mc.Cost.BoardCost + b.waitCost + inVehicle
			leg := state.TransitLeg{
				FromStop:      pattern.StopAt(fromPos),
				ToStop:        pattern.StopAt(toPos),
				DepartureTime: trip.DepartureTime(fromPos),
				ArrivalTime:   trip.ArrivalTime(toPos),
				Trip:          trip.Ref(),
			}
			mc.State.TransitToStop(round, b.arenaIdx, stop, alight, cost, leg)
		}

		if marked[stop] {
			for _, arenaIdx := range mc.State.Frontier(stop) {
				arr := mc.State.Arrival(arenaIdx)
				if arr.Round != round-1 {
					continue
				}
				target := mc.Calc.EarliestBoardTime(arr.ArrivalTime)
				newTrip, found, err := calc.TripSearch(mc.Calc, pattern, pos, target, 0, false, false, mc.Threshold, mc.InService)
				if err != nil {
					return err
				}
				if !found {
					continue
				}
				searchTime := mc.Calc.SearchTime(pattern.TripAt(newTrip), pos)
				wait := searchTime - target
				if wait < 0 {
					wait = -wait
				}
				waitCost := int(float64(wait) * mc.Cost.WaitReluctance)
				boardings = append(boardings, boarding{arenaIdx: arenaIdx, trip: newTrip, pos: pos, waitCost: waitCost})
			}
		}
	}
	return nil
}

func (mc *McTransit) transferForRound(round int) error {
	nStops := mc.Provider.NumStops()
	for _, stop := range mc.touchedThisRound(round) {
		for _, arenaIdx := range mc.State.Frontier(stop) {
			arr := mc.State.Arrival(arenaIdx)
			if arr.Round != round || !arr.HasTransit {
				continue
			}
			for _, tr := range mc.Provider.TransfersFrom(stop) {
				if err := transit.ValidateTransfer(nStops, tr); err != nil {
					return err
				}
				key := mc.Calc.Plus(arr.ArrivalTime, tr.Duration)
				walkCost := int(float64(tr.Cost) * mc.Cost.WalkReluctance)
				cost := arr.Cost + walkCost
				physicalFrom, physicalTo := stop, tr.ToStop
				if !mc.Calc.Forward() {
					physicalFrom, physicalTo = tr.ToStop, stop
				}
				leg := state.WalkLeg{FromStop: physicalFrom, ToStop: physicalTo, Duration: tr.Duration}
				mc.State.TransferToStop(round, arenaIdx, tr.ToStop, key, cost, leg)
			}
		}
	}
	return nil
}

// touchedThisRound re-derives the stops with a transit arrival in round,
// since McState keeps a single Marked tracker shared by both transit and
// transfer improvements rather than a separate transit-only tracker (the
// Multi-Criteria frontier lookup by round makes a second bitset
// unnecessary: Frontier+Round filtering already isolates transit arrivals).
func (mc *McTransit) touchedThisRound(round int) []transit.Stop {
	seen := map[transit.Stop]bool{}
	out := []transit.Stop{}
	for _, stop := range mc.State.Marked() {
		if seen[stop] {
			continue
		}
		seen[stop] = true
		for _, idx := range mc.State.Frontier(stop) {
			if mc.State.Arrival(idx).Round == round && mc.State.Arrival(idx).HasTransit {
				out = append(out, stop)
				break
			}
		}
	}
	return out
}
