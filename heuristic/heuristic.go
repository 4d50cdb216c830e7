// Package heuristic runs the NoWait best-times pre-passes (§4.7) used to
// prune the Multi-Criteria search: a cheap lower-bound search in each
// direction, whose results become a per-stop transfer-count ceiling and a
// destination (travelDuration, transfers, cost) projection bound for the
// real search.
package heuristic

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/transitcore/rangeraptor/calc"
	"github.com/transitcore/rangeraptor/state"
	"github.com/transitcore/rangeraptor/strategy"
	"github.com/transitcore/rangeraptor/transit"
)

// Seed is a single access/egress seed fed into a NoWait pre-pass: the
// real absolute arrival time used for the transfer-count bound, plus the
// seed leg's own duration and weighted cost (the starting point for the
// seed-relative duration/cost sums Bounds.Duration/Cost report).
type Seed struct {
	Arrival  int
	Duration int
	Cost     int
}

// Bounds is the result of a single-direction NoWait pre-pass: the best
// achievable arrival time and transfer count at every stop, ignoring wait
// time entirely, plus the elapsed travel duration and generalized cost
// accumulated from the pass's own seeds — valid lower bounds on the
// remaining duration/cost to reach any of those seeds from stop.
type Bounds struct {
	state *state.BestTimesState
}

// Arrival returns the NoWait best arrival time at stop.
func (b Bounds) Arrival(stop transit.Stop) int { return b.state.Arrival(stop) }

// Transfers returns the fewest transfers the NoWait pass used to reach
// stop, or -1 if unreached.
func (b Bounds) Transfers(stop transit.Stop) int { return b.state.Transfers(stop) }

// Duration returns the elapsed NoWait travel time between stop and the
// pass's seeds, consistent with the current best arrival at stop.
func (b Bounds) Duration(stop transit.Stop) int { return b.state.Duration(stop) }

// Cost returns the generalized NoWait cost between stop and the pass's
// seeds, consistent with the current best arrival at stop.
func (b Bounds) Cost(stop transit.Stop) int { return b.state.Cost(stop) }

// Run executes a single-direction NoWait pre-pass for maxRounds rounds
// starting from the given access/egress seeds.
func Run(c calc.Calculator, provider transit.Provider, maxRounds int, seeds map[transit.Stop]Seed, cost strategy.CostParams, inService func(transit.Trip) bool) (Bounds, error) {
	st := state.NewBestTimesState(c, provider.NumStops())
	for stop, seed := range seeds {
		st.Improve(stop, seed.Arrival, 0, seed.Duration, seed.Cost)
	}
	nw := &strategy.NoWaitTransit{Calc: c, Provider: provider, State: st, InService: inService, Cost: cost}
	for round := 1; round <= maxRounds && st.HasMarked(); round++ {
		if err := nw.RunRound(round); err != nil {
			return Bounds{}, err
		}
	}
	return Bounds{state: st}, nil
}

// RunParallel runs the forward and reverse NoWait pre-passes concurrently
// via golang.org/x/sync/errgroup, returning both bound sets. Used by the
// Multi-Criteria profile (§4.7 PARALLEL) when both directions are needed
// to build the transfer-count stop filter and the destination-cost
// pruning bound.
func RunParallel(ctx context.Context, fwd, rev calc.Calculator, provider transit.Provider, maxRounds int, fwdSeeds, revSeeds map[transit.Stop]Seed, cost strategy.CostParams, inService func(transit.Trip) bool) (Bounds, Bounds, error) {
	var fwdBounds, revBounds Bounds
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fwdBounds, err = Run(fwd, provider, maxRounds, fwdSeeds, cost, inService)
		return err
	})
	g.Go(func() error {
		var err error
		revBounds, err = Run(rev, provider, maxRounds, revSeeds, cost, inService)
		return err
	})
	if err := g.Wait(); err != nil {
		return Bounds{}, Bounds{}, err
	}
	return fwdBounds, revBounds, nil
}

// TransferStopFilter reports whether stop should be considered for
// boarding at round, given bounds' NoWait lower bound on transfers between
// stop and that pass's seeds (the worker passes the opposite-direction
// pass, i.e. the transfers still needed from stop): a round that could not
// possibly still produce an improving
// journey (its transfer count already exceeds what the destination
// requires) is skipped (§4.7 TRANSFERS_STOP_FILTER).
func TransferStopFilter(bounds Bounds, stop transit.Stop, round, maxRounds int) bool {
	t := bounds.Transfers(stop)
	if t < 0 {
		return true
	}
	return round+t <= maxRounds
}
