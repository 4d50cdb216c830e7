// Package raptor assembles the calc, state, strategy, path and heuristic
// packages into the public search API: Request, Profile and Worker, the
// range-raptor minute/round loop described in §4.5.
package raptor

import (
	"context"

	"github.com/transitcore/rangeraptor/calc"
	"github.com/transitcore/rangeraptor/heuristic"
	"github.com/transitcore/rangeraptor/pareto"
	"github.com/transitcore/rangeraptor/path"
	"github.com/transitcore/rangeraptor/state"
	"github.com/transitcore/rangeraptor/strategy"
	"github.com/transitcore/rangeraptor/transit"
)

// Worker runs a single Request against a Provider.
type Worker struct {
	Provider transit.Provider
	Request  Request
	Config   Config
}

// NewWorker builds a Worker; cfg should come from NewConfig.
func NewWorker(provider transit.Provider, req Request, cfg Config) *Worker {
	return &Worker{Provider: provider, Request: req, Config: cfg}
}

// Run validates the request and dispatches to the profile-specific search.
func (w *Worker) Run(ctx context.Context) ([]path.Path, error) {
	if err := w.Request.Validate(); err != nil {
		return nil, err
	}
	switch w.Request.Profile {
	case Standard, NoWaitStandard:
		return w.runStd(ctx)
	case BestTime:
		return w.runStdBestTime(ctx)
	case NoWaitBestTime:
		return w.runNoWaitBestTime(ctx)
	case MultiCriteria:
		return w.runMc(ctx)
	}
	return nil, ErrInvalidRequest
}

func (w *Worker) boardSlack() int {
	if w.Request.Profile == NoWaitStandard || w.Request.Profile == NoWaitBestTime {
		return 0
	}
	return w.Config.BoardSlackSeconds
}

func (w *Worker) calculator() calc.Calculator {
	if w.Request.ArriveBy {
		return calc.Reverse{BoardSlack: w.boardSlack()}
	}
	return calc.Forward{BoardSlack: w.boardSlack()}
}

func asEgress(a transit.AccessLeg) transit.EgressLeg {
	return transit.EgressLeg{Stop: a.Stop, Duration: a.Duration, Cost: a.Cost}
}

func accessAsEgress(legs []transit.AccessLeg) []transit.EgressLeg {
	out := make([]transit.EgressLeg, len(legs))
	for i, a := range legs {
		out[i] = asEgress(a)
	}
	return out
}

// accessSeeds builds the round-0 seed durations and destination legs for a
// depart-at (Access feeds seeds, Egress is the destination) or arrive-by
// (Egress feeds seeds, Access is the destination) search.
func (w *Worker) accessSeeds() (map[transit.Stop]int, []transit.EgressLeg) {
	seedDurations := map[transit.Stop]int{}
	var destLegs []transit.EgressLeg
	if !w.Request.ArriveBy {
		for _, a := range w.Request.Access {
			seedDurations[a.Stop] = a.Duration
		}
		destLegs = w.Request.Egress
	} else {
		for _, e := range w.Request.Egress {
			seedDurations[e.Stop] = e.Duration
		}
		destLegs = accessAsEgress(w.Request.Access)
	}
	return seedDurations, destLegs
}

// runStd implements the Standard and NoWaitStandard profiles: a full
// itinerary search sweeping the window minute by minute (latest departure
// first for depart-at, earliest arrival first for arrive-by), carrying the
// per-stop best-time bound across minutes (§4.5).
func (w *Worker) runStd(ctx context.Context) ([]path.Path, error) {
	c := w.calculator()
	st := state.NewStdState(c, w.Provider.NumStops(), w.Config.MaxRounds)
	collector := path.NewCollector(state.CostRelaxation{})
	if w.Request.Debug.OnPathEvent != nil {
		collector.SetListener(pareto.Listener[path.Path](w.Request.Debug.OnPathEvent))
	}

	seedDurations, destLegs := w.accessSeeds()
	minutes := c.Minutes(w.Request.EarliestDeparture, w.Request.LatestArrival, w.Request.DepartureWindowSeconds, w.Config.IterationStepSeconds)

	strat := &strategy.StdTransit{
		Calc: c, Provider: w.Provider, State: st,
		Threshold: w.Config.BinarySearchThreshold,
		InService: w.Provider.IsTripInService,
	}

	for i, minute := range minutes {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if i == 0 {
			st.ResetForIteration()
		} else {
			st.ResetRounds()
		}
		for stop, dur := range seedDurations {
			st.SetInitial(stop, c.Plus(minute, dur))
		}

		for round := 1; round <= w.Config.MaxRounds && st.HasMarked(); round++ {
			if err := strat.RunRound(round); err != nil {
				return nil, err
			}
			if w.Request.Debug.OnRound != nil {
				w.Request.Debug.OnRound(round, len(st.Marked()))
			}
			for _, eg := range destLegs {
				if p, ok := path.FromStd(c, st, round, eg.Stop, eg); ok {
					collector.Offer(p)
				}
			}
		}
	}
	return collector.Paths(), nil
}

// runStdBestTime implements the BestTime profile: the same board-slack-
// respecting minute sweep as Standard, reading only the pointwise-best
// arrival time and transfer count reached at each destination leg, with no
// itinerary reconstruction. Distinct from NoWaitBestTime, which suppresses
// board slack entirely via the NoWait heuristic pass instead.
func (w *Worker) runStdBestTime(ctx context.Context) ([]path.Path, error) {
	c := w.calculator()
	st := state.NewStdState(c, w.Provider.NumStops(), w.Config.MaxRounds)
	bestRound := map[transit.Stop]int{}

	seedDurations, destLegs := w.accessSeeds()
	minutes := c.Minutes(w.Request.EarliestDeparture, w.Request.LatestArrival, w.Request.DepartureWindowSeconds, w.Config.IterationStepSeconds)

	strat := &strategy.StdTransit{
		Calc: c, Provider: w.Provider, State: st,
		Threshold: w.Config.BinarySearchThreshold,
		InService: w.Provider.IsTripInService,
	}

	for i, minute := range minutes {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if i == 0 {
			st.ResetForIteration()
		} else {
			st.ResetRounds()
		}
		for stop, dur := range seedDurations {
			st.SetInitial(stop, c.Plus(minute, dur))
		}

		for round := 1; round <= w.Config.MaxRounds && st.HasMarked(); round++ {
			if err := strat.RunRound(round); err != nil {
				return nil, err
			}
			if w.Request.Debug.OnRound != nil {
				w.Request.Debug.OnRound(round, len(st.Marked()))
			}
		}
		// ResetRounds clears the round grid every minute, so the round that
		// set a destination's best time is read while that minute's records
		// are still present.
		for _, eg := range destLegs {
			if r := st.BestRound(eg.Stop); r >= 0 {
				bestRound[eg.Stop] = r
			}
		}
	}

	collector := path.NewCollector(state.CostRelaxation{})
	for _, eg := range destLegs {
		best := st.Best(eg.Stop)
		if best == c.Unreached() {
			continue
		}
		final := c.Plus(best, eg.Duration)
		var dep, arr int
		if c.Forward() {
			dep, arr = w.Request.EarliestDeparture, final
		} else {
			dep, arr = final, w.Request.LatestArrival
		}
		transfers := bestRound[eg.Stop]
		if transfers > 0 {
			transfers--
		}
		collector.Offer(path.Path{DepartureTime: dep, ArrivalTime: arr, Transfers: transfers})
	}
	return collector.Paths(), nil
}

// runNoWaitBestTime implements the NoWaitBestTime profile: a single NoWait
// heuristic pre-pass with no board slack, reporting only arrival time and
// transfer count at the destination.
func (w *Worker) runNoWaitBestTime(ctx context.Context) ([]path.Path, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	c := w.calculator()
	seeds := map[transit.Stop]heuristic.Seed{}
	var destLegs []transit.EgressLeg
	if !w.Request.ArriveBy {
		for _, a := range w.Request.Access {
			seeds[a.Stop] = heuristic.Seed{Arrival: c.Plus(w.Request.EarliestDeparture, a.Duration), Duration: a.Duration}
		}
		destLegs = w.Request.Egress
	} else {
		for _, e := range w.Request.Egress {
			seeds[e.Stop] = heuristic.Seed{Arrival: c.Plus(w.Request.LatestArrival, e.Duration), Duration: e.Duration}
		}
		destLegs = accessAsEgress(w.Request.Access)
	}

	bounds, err := heuristic.Run(c, w.Provider, w.Config.MaxRounds, seeds, w.Request.Cost, w.Provider.IsTripInService)
	if err != nil {
		return nil, err
	}
	collector := path.NewCollector(state.CostRelaxation{})

	for _, eg := range destLegs {
		arrival := bounds.Arrival(eg.Stop)
		if arrival == c.Unreached() {
			continue
		}
		final := c.Plus(arrival, eg.Duration)
		var dep, arr int
		if c.Forward() {
			dep, arr = w.Request.EarliestDeparture, final
		} else {
			dep, arr = final, w.Request.LatestArrival
		}
		collector.Offer(path.Path{DepartureTime: dep, ArrivalTime: arr, Transfers: bounds.Transfers(eg.Stop)})
	}
	return collector.Paths(), nil
}

// runMc implements the MultiCriteria profile: when Request.Optimizations
// selects a heuristic filter, forward and reverse NoWait heuristic
// pre-passes (in parallel under OptParallel, otherwise sequentially) first
// build a remaining-transfers bound and a destination-cost projection
// bound; the real search then accumulates the full (time, transfers, cost)
// pareto front across the whole departure window (§4.6, §4.7).
func (w *Worker) runMc(ctx context.Context) ([]path.Path, error) {
	fwd := calc.Forward{BoardSlack: w.Config.BoardSlackSeconds}
	rev := calc.Reverse{BoardSlack: w.Config.BoardSlackSeconds}

	opts := w.Request.Optimizations
	needHeuristic := opts.Has(OptTransferStopFilter) || opts.Has(OptParetoCheckAgainstDestination)

	var fwdBounds, revBounds heuristic.Bounds
	if needHeuristic {
		fwdSeeds := map[transit.Stop]heuristic.Seed{}
		for _, a := range w.Request.Access {
			cost := int(float64(a.Cost) * w.Request.Cost.WalkReluctance)
			fwdSeeds[a.Stop] = heuristic.Seed{Arrival: fwd.Plus(w.Request.EarliestDeparture, a.Duration), Duration: a.Duration, Cost: cost}
		}
		revSeeds := map[transit.Stop]heuristic.Seed{}
		for _, e := range w.Request.Egress {
			cost := int(float64(e.Cost) * w.Request.Cost.WalkReluctance)
			revSeeds[e.Stop] = heuristic.Seed{Arrival: rev.Plus(w.Request.LatestArrival, e.Duration), Duration: e.Duration, Cost: cost}
		}

		var err error
		if opts.Has(OptParallel) {
			fwdBounds, revBounds, err = heuristic.RunParallel(ctx, fwd, rev, w.Provider, w.Config.MaxRounds, fwdSeeds, revSeeds, w.Request.Cost, w.Provider.IsTripInService)
		} else {
			fwdBounds, err = heuristic.Run(fwd, w.Provider, w.Config.MaxRounds, fwdSeeds, w.Request.Cost, w.Provider.IsTripInService)
			if err == nil {
				revBounds, err = heuristic.Run(rev, w.Provider, w.Config.MaxRounds, revSeeds, w.Request.Cost, w.Provider.IsTripInService)
			}
		}
		if err != nil {
			return nil, err
		}
	}

	c := w.calculator()
	remaining := revBounds
	if w.Request.ArriveBy {
		remaining = fwdBounds
	}

	st := state.NewMcState(c, w.Provider.NumStops(), w.Request.CostRelaxation)
	if w.Request.Debug.OnStopEvent != nil {
		st.SetStopListener(w.Request.Debug.OnStopEvent)
	}
	collector := path.NewCollector(w.Request.CostRelaxation)
	if w.Request.Debug.OnPathEvent != nil {
		collector.SetListener(pareto.Listener[path.Path](w.Request.Debug.OnPathEvent))
	}

	seedDurations := map[transit.Stop]int{}
	var destLegs []transit.EgressLeg
	if !w.Request.ArriveBy {
		for _, a := range w.Request.Access {
			seedDurations[a.Stop] = a.Duration
		}
		destLegs = w.Request.Egress
	} else {
		for _, e := range w.Request.Egress {
			seedDurations[e.Stop] = e.Duration
		}
		destLegs = accessAsEgress(w.Request.Access)
	}

	strat := &strategy.McTransit{
		Calc: c, Provider: w.Provider, State: st,
		Threshold: w.Config.BinarySearchThreshold,
		InService: w.Provider.IsTripInService,
		Cost:      w.Request.Cost,
	}

	minutes := c.Minutes(w.Request.EarliestDeparture, w.Request.LatestArrival, w.Request.DepartureWindowSeconds, w.Config.IterationStepSeconds)
	for _, minute := range minutes {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		for stop, dur := range seedDurations {
			st.SetInitial(stop, c.Plus(minute, dur), 0)
		}

		for round := 1; round <= w.Config.MaxRounds && st.HasMarked(); round++ {
			if opts.Has(OptTransferStopFilter) {
				st.FilterMarked(func(stop transit.Stop) bool {
					return heuristic.TransferStopFilter(remaining, stop, round, w.Config.MaxRounds)
				})
				if !st.HasMarked() {
					break
				}
			}
			if opts.Has(OptParetoCheckAgainstDestination) {
				st.FilterMarked(func(stop transit.Stop) bool {
					return !destinationDominated(c, st, collector, remaining, stop, minute)
				})
				if !st.HasMarked() {
					break
				}
			}

			if err := strat.RunRound(round); err != nil {
				return nil, err
			}
			if w.Request.Debug.OnRound != nil {
				w.Request.Debug.OnRound(round, len(st.Marked()))
			}

			for _, eg := range destLegs {
				for _, idx := range st.Frontier(eg.Stop) {
					if st.Arrival(idx).Round != round {
						continue
					}
					p := path.FromMc(c, st, idx, eg)
					if st.OfferDestination(idx) {
						collector.Offer(p)
					}
				}
			}
		}
	}
	return collector.Paths(), nil
}

// destinationDominated reports whether every arrival currently held at stop
// is already, once optimistically projected to the destination via the
// opposite-direction heuristic's (travelDuration, transfers, cost) bound,
// dominated by the current destination front (§4.7 PARETO_CHECK_AGAINST_
// DESTINATION). The projection takes the componentwise-best value across
// the stop's whole frontier, so if even that ideal point is dominated,
// every real frontier element — each weakly worse — is dominated too.
// Returns false (never prunes) when remaining has no bound at stop: an
// absent heuristic bound means "unknown", not "dominated".
func destinationDominated(c calc.Calculator, st *state.McState, collector *path.Collector, remaining heuristic.Bounds, stop transit.Stop, minute int) bool {
	if remaining.Transfers(stop) < 0 {
		return false
	}
	frontier := st.Frontier(stop)
	if len(frontier) == 0 {
		return false
	}

	haveBest := false
	var bestArrival, bestRound, bestCost int
	for _, idx := range frontier {
		arr := st.Arrival(idx)
		if !haveBest || c.IsBetter(arr.ArrivalTime, bestArrival) {
			bestArrival = arr.ArrivalTime
		}
		if !haveBest || arr.Round < bestRound {
			bestRound = arr.Round
		}
		if !haveBest || arr.Cost < bestCost {
			bestCost = arr.Cost
		}
		haveBest = true
	}

	transfers := bestRound - 1
	if transfers < 0 {
		transfers = 0
	}
	elapsed := bestArrival - minute
	if elapsed < 0 {
		elapsed = -elapsed
	}
	projectedDuration := elapsed + remaining.Duration(stop)
	projectedTransfers := transfers + remaining.Transfers(stop)
	projectedCost := bestCost + remaining.Cost(stop)
	return collector.Dominated(projectedDuration, projectedTransfers, projectedCost)
}
