package raptor

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitcore/rangeraptor/calc"
	"github.com/transitcore/rangeraptor/heuristic"
	"github.com/transitcore/rangeraptor/memtransit"
	"github.com/transitcore/rangeraptor/path"
	"github.com/transitcore/rangeraptor/state"
	"github.com/transitcore/rangeraptor/strategy"
	"github.com/transitcore/rangeraptor/transit"
)

// randomChainProvider builds a random single-line network over nStops
// stops, one or two patterns each with a handful of trips at increasing
// departure times, plus occasional adjacent-stop transfers.
func randomChainProvider(rng *rand.Rand, nStops int) *memtransit.Provider {
	p := memtransit.New(nStops)
	stops := make([]transit.Stop, nStops)
	for i := range stops {
		stops[i] = transit.Stop(i)
	}

	nPatterns := 1 + rng.Intn(2)
	for pi := 0; pi < nPatterns; pi++ {
		b := p.AddPattern(stops)
		nTrips := 1 + rng.Intn(4)
		t0 := rng.Intn(200)
		for ti := 0; ti < nTrips; ti++ {
			t0 += 200 + rng.Intn(300)
			arr := make([]int, nStops)
			dep := make([]int, nStops)
			cur := t0
			for s := 0; s < nStops; s++ {
				arr[s] = cur
				dep[s] = cur
				cur += 60 + rng.Intn(120)
			}
			b.AddTrip(arr, dep, "weekday")
		}
	}
	for i := 0; i < nStops-1; i++ {
		if rng.Intn(3) == 0 {
			p.AddTransfer(transit.Stop(i), transit.Stop(i+1), 60+rng.Intn(300), 60+rng.Intn(300))
		}
	}
	return p
}

func bestArrival(paths []path.Path) *int {
	if len(paths) == 0 {
		return nil
	}
	best := paths[0].ArrivalTime
	for _, p := range paths[1:] {
		if p.ArrivalTime < best {
			best = p.ArrivalTime
		}
	}
	return &best
}

// TestRangeRaptorMonotonicAcrossWindow is a hand-rolled testing/quick-style
// check of §8 property 5: widening the departure window (more range-raptor
// iterations, same access set) never arrives later at the destination.
func TestRangeRaptorMonotonicAcrossWindow(t *testing.T) {
	rng := rand.New(rand.NewSource(101))
	for trial := 0; trial < 30; trial++ {
		nStops := 3 + rng.Intn(4)
		p := randomChainProvider(rng, nStops)
		dest := transit.Stop(nStops - 1)

		base := Request{
			Profile:           Standard,
			Access:            []transit.AccessLeg{{Stop: 0, Duration: 0}},
			Egress:            []transit.EgressLeg{{Stop: dest, Duration: 0}},
			EarliestDeparture: 0,
		}
		narrow := base
		narrow.DepartureWindowSeconds = 300
		wide := base
		wide.DepartureWindowSeconds = 1800

		narrowPaths, err := NewWorker(p, narrow, NewConfig()).Run(context.Background())
		require.NoError(t, err)
		widePaths, err := NewWorker(p, wide, NewConfig()).Run(context.Background())
		require.NoError(t, err)

		bestNarrow := bestArrival(narrowPaths)
		bestWide := bestArrival(widePaths)
		if bestNarrow == nil {
			continue
		}
		require.NotNil(t, bestWide, "a wider window must not lose a solution the narrower window found")
		assert.LessOrEqual(t, *bestWide, *bestNarrow, "widening the departure window must never arrive later")
	}
}

// TestTransferStopFilterNeverWorsensResult is a hand-rolled testing/quick-
// style check of §8 property 6 and scenario S6's spirit: turning on
// TRANSFERS_STOP_FILTER prunes search work but must never discard the
// overall best reachable arrival.
func TestTransferStopFilterNeverWorsensResult(t *testing.T) {
	rng := rand.New(rand.NewSource(102))
	for trial := 0; trial < 20; trial++ {
		nStops := 3 + rng.Intn(4)
		p := randomChainProvider(rng, nStops)
		dest := transit.Stop(nStops - 1)

		base := Request{
			Profile:                MultiCriteria,
			Access:                 []transit.AccessLeg{{Stop: 0, Duration: 0}},
			Egress:                 []transit.EgressLeg{{Stop: dest, Duration: 0}},
			EarliestDeparture:      0,
			LatestArrival:          4000,
			DepartureWindowSeconds: 1500,
			Cost:                   strategy.CostParams{BoardCost: 60, WaitReluctance: 1, WalkReluctance: 1},
		}
		withFilter := base
		withFilter.Optimizations = OptTransferStopFilter

		basePaths, err := NewWorker(p, base, NewConfig()).Run(context.Background())
		require.NoError(t, err)
		filteredPaths, err := NewWorker(p, withFilter, NewConfig()).Run(context.Background())
		require.NoError(t, err)

		bestBase := bestArrival(basePaths)
		bestFiltered := bestArrival(filteredPaths)
		if bestBase == nil {
			continue
		}
		require.NotNil(t, bestFiltered, "TRANSFERS_STOP_FILTER must not discard every solution")
		assert.Equal(t, *bestBase, *bestFiltered, "TRANSFERS_STOP_FILTER must not worsen the best reachable arrival")
	}
}

// TestParetoCheckAgainstDestinationNeverWorsensResult is a hand-rolled
// testing/quick-style check covering §8 property 6's counterpart for
// PARETO_CHECK_AGAINST_DESTINATION and scenario S6: the destination-cost
// pruning pass must preserve the pareto-optimal path set.
func TestParetoCheckAgainstDestinationNeverWorsensResult(t *testing.T) {
	rng := rand.New(rand.NewSource(103))
	for trial := 0; trial < 20; trial++ {
		nStops := 3 + rng.Intn(4)
		p := randomChainProvider(rng, nStops)
		dest := transit.Stop(nStops - 1)

		base := Request{
			Profile:                MultiCriteria,
			Access:                 []transit.AccessLeg{{Stop: 0, Duration: 0}},
			Egress:                 []transit.EgressLeg{{Stop: dest, Duration: 0}},
			EarliestDeparture:      0,
			LatestArrival:          4000,
			DepartureWindowSeconds: 1500,
			Cost:                   strategy.CostParams{BoardCost: 60, WaitReluctance: 1, WalkReluctance: 1},
		}
		withPruning := base
		withPruning.Optimizations = OptParetoCheckAgainstDestination

		basePaths, err := NewWorker(p, base, NewConfig()).Run(context.Background())
		require.NoError(t, err)
		prunedPaths, err := NewWorker(p, withPruning, NewConfig()).Run(context.Background())
		require.NoError(t, err)

		bestBase := bestArrival(basePaths)
		bestPruned := bestArrival(prunedPaths)
		if bestBase == nil {
			continue
		}
		require.NotNil(t, bestPruned, "PARETO_CHECK_AGAINST_DESTINATION must not discard every solution")
		assert.Equal(t, *bestBase, *bestPruned, "PARETO_CHECK_AGAINST_DESTINATION must not worsen the best reachable arrival")
	}
}

// TestForwardReverseEquivalence is a hand-rolled testing/quick-style check
// of §8 property 7 / scenario S5: anchoring a reverse search at a forward
// search's own best arrival must reproduce that same arrival.
func TestForwardReverseEquivalence(t *testing.T) {
	rng := rand.New(rand.NewSource(104))
	for trial := 0; trial < 20; trial++ {
		nStops := 2 + rng.Intn(3)
		p := randomChainProvider(rng, nStops)
		dest := transit.Stop(nStops - 1)

		fwdReq := Request{
			Profile:                Standard,
			Access:                 []transit.AccessLeg{{Stop: 0, Duration: 0}},
			Egress:                 []transit.EgressLeg{{Stop: dest, Duration: 0}},
			EarliestDeparture:      0,
			DepartureWindowSeconds: 2000,
		}
		fwdPaths, err := NewWorker(p, fwdReq, NewConfig()).Run(context.Background())
		require.NoError(t, err)
		bestFwd := bestArrival(fwdPaths)
		if bestFwd == nil {
			continue
		}

		revReq := Request{
			Profile:       Standard,
			ArriveBy:      true,
			Access:        []transit.AccessLeg{{Stop: 0, Duration: 0}},
			Egress:        []transit.EgressLeg{{Stop: dest, Duration: 0}},
			LatestArrival: *bestFwd,
		}
		revPaths, err := NewWorker(p, revReq, NewConfig()).Run(context.Background())
		require.NoError(t, err)
		bestRev := bestArrival(revPaths)
		require.NotNil(t, bestRev, "reverse search anchored at the forward best arrival must find a path")
		assert.Equal(t, *bestFwd, *bestRev, "forward and reverse search must agree on the best arrival")
	}
}

// TestHeuristicAdmissibility is a hand-rolled testing/quick-style check of
// §8 property 8: the NoWait heuristic's travel-duration bound at a stop
// never exceeds the actual best travel duration the standard search finds
// from the same origin.
func TestHeuristicAdmissibility(t *testing.T) {
	rng := rand.New(rand.NewSource(105))
	for trial := 0; trial < 20; trial++ {
		nStops := 2 + rng.Intn(4)
		p := randomChainProvider(rng, nStops)
		dest := transit.Stop(nStops - 1)

		c := calc.Forward{}
		seeds := map[transit.Stop]heuristic.Seed{0: {Arrival: 0}}
		bounds, err := heuristic.Run(c, p, 6, seeds, strategy.CostParams{}, p.IsTripInService)
		require.NoError(t, err)
		if bounds.Transfers(dest) < 0 {
			continue // heuristic pass never reached the destination this trial
		}

		req := Request{
			Profile:                Standard,
			Access:                 []transit.AccessLeg{{Stop: 0, Duration: 0}},
			Egress:                 []transit.EgressLeg{{Stop: dest, Duration: 0}},
			EarliestDeparture:      0,
			DepartureWindowSeconds: 3000,
		}
		paths, err := NewWorker(p, req, NewConfig()).Run(context.Background())
		require.NoError(t, err)
		if len(paths) == 0 {
			continue
		}
		best := paths[0]
		for _, cand := range paths {
			if cand.ArrivalTime-cand.DepartureTime < best.ArrivalTime-best.DepartureTime {
				best = cand
			}
		}
		realDuration := best.ArrivalTime - best.DepartureTime
		assert.LessOrEqual(t, bounds.Duration(dest), realDuration,
			"NoWait heuristic duration must lower-bound the real travel duration")
	}
}

// TestBoardSlackBoundaryIsBoardable is scenario S3: with a 300s board
// slack, a trip departing exactly boardSlack seconds after the rider's
// arrival is boardable — the policy is a strict >=, not a strict >.
func TestBoardSlackBoundaryIsBoardable(t *testing.T) {
	p := memtransit.New(3)
	p.AddPattern([]transit.Stop{0, 1}).
		AddTrip([]int{0, 600}, []int{0, 0}, "weekday") // A(0) -> X(1), depart 0, arrive 600 (08:00 -> 08:10)
	p.AddPattern([]transit.Stop{1, 2}).
		AddTrip([]int{0, 1500}, []int{900, 0}, "weekday") // X(1) -> B(2), depart 900 (08:15), arrive 1500 (08:25)

	// The slack also applies at the origin: the rider is at A 300s before
	// its departure at 0.
	req := Request{
		Profile:           Standard,
		Access:            []transit.AccessLeg{{Stop: 0, Duration: 0}},
		Egress:            []transit.EgressLeg{{Stop: 2, Duration: 0}},
		EarliestDeparture: -300,
	}
	cfg := NewConfig(WithBoardSlackSeconds(300))
	paths, err := NewWorker(p, req, cfg).Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, paths, "the 08:15 trip must be boardable from a 08:10 arrival plus exactly 300s of slack")

	best := paths[0]
	for _, cand := range paths {
		if cand.ArrivalTime < best.ArrivalTime {
			best = cand
		}
	}
	assert.Equal(t, 1500, best.ArrivalTime)
	assert.Equal(t, 1, best.Transfers)
}

// TestCostRelaxationAtDestination is scenario S4: a cheaper-but-slower path
// and a costlier-but-faster path (cost within 10% of each other) are mutual
// dominance at relaxCostAtDestination == 1.0 — neither front criterion beats
// the other once the cost edge is itself treated as significant, so both
// are strictly pareto-optimal and survive. At 1.10, the cost edge falls
// inside the slack, so it no longer counts as a point in the slower path's
// favor: the faster path dominates outright and evicts it.
func TestCostRelaxationAtDestination(t *testing.T) {
	cheapSlow := path.Path{DepartureTime: 0, ArrivalTime: 1500, Transfers: 0, Cost: 100}
	fastCostly := path.Path{DepartureTime: 0, ArrivalTime: 1000, Transfers: 0, Cost: 108} // 8% costlier, within 10%

	strict := path.NewCollector(state.CostRelaxation{Factor: 1.0})
	strict.Offer(cheapSlow)
	strict.Offer(fastCostly)
	assert.Len(t, strict.Paths(), 2, "relaxCostAtDestination 1.0 treats the cost edge as real: both are pareto-optimal")

	relaxed := path.NewCollector(state.CostRelaxation{Factor: 1.10})
	relaxed.Offer(cheapSlow)
	relaxed.Offer(fastCostly)
	assert.Len(t, relaxed.Paths(), 1, "relaxCostAtDestination 1.10 treats the cost edge as insignificant: the faster path dominates")
	assert.Equal(t, fastCostly, relaxed.Paths()[0])
}
