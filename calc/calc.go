// Package calc implements the directional transit calculator (§4.3): the
// one seam that lets the worker, state and strategy packages stay
// direction-agnostic. Every other component calls through a Calculator
// rather than branching on forward/reverse itself.
package calc

import (
	"math"

	"github.com/transitcore/rangeraptor/iterseq"
	"github.com/transitcore/rangeraptor/transit"
)

// Unreached sentinels. Forward search improves by finding smaller times, so
// "nothing found yet" is +inf; reverse search improves by finding larger
// times, so it's -inf.
const (
	PosInf = math.MaxInt32
	NegInf = -math.MaxInt32
)

// Calculator encapsulates the forward/reverse asymmetry described in the
// §4.3 table. A request builds exactly one of Forward/Reverse and holds it
// for the lifetime of the search.
type Calculator interface {
	// Forward reports which direction this calculator implements.
	Forward() bool

	Plus(t, d int) int
	Minus(t, d int) int
	// IsBetter reports whether a is a strict improvement over b.
	IsBetter(a, b int) bool
	// Unreached is the sentinel meaning "no arrival recorded".
	Unreached() int

	BoardSlackSeconds() int
	// EarliestBoardTime turns a stop arrival time into the earliest time a
	// trip may be boarded there.
	EarliestBoardTime(stopArrivalTime int) int
	// AlightTime is the comparison value recorded when a transit leg
	// reaches stop position pos on trip: the real arrival clock time
	// forward, or a comparison proxy (departure+slack) reverse.
	AlightTime(trip transit.Trip, pos int) int
	// SearchTime is the time at stop position pos on trip used as a
	// trip-search comparison key: departure time forward (boarding),
	// arrival time reverse (the reverse search "boards" by scanning
	// arrivals).
	SearchTime(trip transit.Trip, pos int) int

	// Positions returns the stop-position scan order for a pattern with n
	// stops: ascending forward, descending reverse.
	Positions(n int) []int
	// Minutes returns the range-raptor outer-loop iteration times.
	Minutes(earliestDeparture, latestArrival, window, step int) []int
}

// Forward is the depart-at calculator: time moves ahead, smaller arrival
// times are better, and a trip is boardable when it departs at or after
// the stop arrival time plus the board slack.
type Forward struct {
	BoardSlack int
}

func (Forward) Forward() bool { return true }

func (Forward) Plus(t, d int) int      { return t + d }
func (Forward) Minus(t, d int) int     { return t - d }
func (Forward) IsBetter(a, b int) bool { return a < b }
func (Forward) Unreached() int         { return PosInf }

func (f Forward) BoardSlackSeconds() int { return f.BoardSlack }

func (f Forward) EarliestBoardTime(stopArrivalTime int) int {
	return stopArrivalTime + f.BoardSlack
}

func (Forward) AlightTime(trip transit.Trip, pos int) int {
	return trip.ArrivalTime(pos)
}

func (Forward) SearchTime(trip transit.Trip, pos int) int {
	return trip.DepartureTime(pos)
}

func (Forward) Positions(n int) []int { return iterseq.Positions(n, false) }

func (Forward) Minutes(edt, lat, window, step int) []int {
	return iterseq.Minutes(edt+window, edt, step)
}

// Reverse is the arrive-by calculator: time moves backward from the latest
// arrival bound, larger times are better, a board is a scan over arrival
// times.
type Reverse struct {
	BoardSlack int
}

func (Reverse) Forward() bool { return false }

func (Reverse) Plus(t, d int) int      { return t - d }
func (Reverse) Minus(t, d int) int     { return t + d }
func (Reverse) IsBetter(a, b int) bool { return a > b }
func (Reverse) Unreached() int         { return NegInf }

func (r Reverse) BoardSlackSeconds() int { return r.BoardSlack }

func (Reverse) EarliestBoardTime(stopArrivalTime int) int {
	return stopArrivalTime
}

func (r Reverse) AlightTime(trip transit.Trip, pos int) int {
	return trip.DepartureTime(pos) + r.BoardSlack
}

func (Reverse) SearchTime(trip transit.Trip, pos int) int {
	return trip.ArrivalTime(pos)
}

func (Reverse) Positions(n int) []int { return iterseq.Positions(n, true) }

func (Reverse) Minutes(edt, lat, window, step int) []int {
	return iterseq.Minutes(lat-window, lat, step)
}
