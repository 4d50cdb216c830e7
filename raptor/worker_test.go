package raptor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitcore/rangeraptor/memtransit"
	"github.com/transitcore/rangeraptor/strategy"
	"github.com/transitcore/rangeraptor/transit"
)

// threeStopLine builds a single pattern 0 -> 1 -> 2 with one trip
// departing stop 0 at 1000, and a single direct transfer stop 3 reachable
// from stop 1 by a 5-minute walk.
func threeStopLine() *memtransit.Provider {
	p := memtransit.New(4)
	p.AddPattern([]transit.Stop{0, 1, 2}).
		AddTrip([]int{0, 1100, 1200}, []int{1000, 1110, 0}, "weekday")
	p.AddTransfer(1, 3, 300, 300)
	return p
}

func TestStandardDirectTrip(t *testing.T) {
	p := threeStopLine()
	req := Request{
		Profile:           Standard,
		Access:            []transit.AccessLeg{{Stop: 0, Duration: 0}},
		Egress:            []transit.EgressLeg{{Stop: 2, Duration: 0}},
		EarliestDeparture: 900,
	}
	w := NewWorker(p, req, NewConfig())
	paths, err := w.Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	best := paths[0]
	for _, cand := range paths {
		if cand.ArrivalTime < best.ArrivalTime {
			best = cand
		}
	}
	assert.Equal(t, 1200, best.ArrivalTime)
	assert.Equal(t, 0, best.Transfers)
	require.Len(t, best.Legs, 2) // the transit leg, then the zero-duration egress leg
	assert.Equal(t, 0, best.Legs[0].FromStop)
	assert.Equal(t, 2, best.Legs[0].ToStop)
}

func TestStandardRequiredTransfer(t *testing.T) {
	p := threeStopLine()
	req := Request{
		Profile:           Standard,
		Access:            []transit.AccessLeg{{Stop: 0, Duration: 0}},
		Egress:            []transit.EgressLeg{{Stop: 3, Duration: 0}},
		EarliestDeparture: 900,
	}
	w := NewWorker(p, req, NewConfig())
	paths, err := w.Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	best := paths[0]
	for _, cand := range paths {
		if cand.ArrivalTime < best.ArrivalTime {
			best = cand
		}
	}
	// ride to stop 1 (arrives 1100), then walk 300s to stop 3.
	assert.Equal(t, 1400, best.ArrivalTime)
}

func TestForwardReverseAgreeOnArrivalTime(t *testing.T) {
	p := threeStopLine()

	fwdReq := Request{
		Profile:           Standard,
		Access:            []transit.AccessLeg{{Stop: 0, Duration: 0}},
		Egress:            []transit.EgressLeg{{Stop: 2, Duration: 0}},
		EarliestDeparture: 900,
	}
	fwdPaths, err := NewWorker(p, fwdReq, NewConfig()).Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, fwdPaths)

	revReq := Request{
		Profile:       Standard,
		ArriveBy:      true,
		Access:        []transit.AccessLeg{{Stop: 0, Duration: 0}},
		Egress:        []transit.EgressLeg{{Stop: 2, Duration: 0}},
		LatestArrival: 1300,
	}
	revPaths, err := NewWorker(p, revReq, NewConfig()).Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, revPaths)

	bestFwd := fwdPaths[0].ArrivalTime
	for _, cand := range fwdPaths {
		if cand.ArrivalTime < bestFwd {
			bestFwd = cand.ArrivalTime
		}
	}
	bestRevDeparture := revPaths[0].DepartureTime
	for _, cand := range revPaths {
		if cand.DepartureTime > bestRevDeparture {
			bestRevDeparture = cand.DepartureTime
		}
	}
	assert.Equal(t, 1200, bestFwd)
	// the reverse search should find the same trip, boarding at the same
	// real departure time as the forward search did.
	assert.Equal(t, 1000, bestRevDeparture)
}

func TestMultiCriteriaFindsTransitRide(t *testing.T) {
	p := memtransit.New(2)
	p.AddPattern([]transit.Stop{0, 1}).
		AddTrip([]int{0, 1100}, []int{1000, 0}, "weekday")
	// A walk from the access stop; transfers are only expanded from stops
	// reached by transit in the same round, so this walk is never taken.
	p.AddTransfer(0, 1, 1500, 150)

	req := Request{
		Profile:                MultiCriteria,
		Access:                 []transit.AccessLeg{{Stop: 0, Duration: 0}},
		Egress:                 []transit.EgressLeg{{Stop: 1, Duration: 0}},
		EarliestDeparture:      900,
		LatestArrival:          3000,
		DepartureWindowSeconds: 120,
		Cost:                   strategy.CostParams{BoardCost: 60, WaitReluctance: 1, WalkReluctance: 1},
	}
	w := NewWorker(p, req, NewConfig())
	paths, err := w.Run(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, paths, "the transit ride to the destination should be found")
}
