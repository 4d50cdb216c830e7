// Package transit describes the read-only contract the Range Raptor core
// consumes from a transit-data adapter (patterns, trips, transfers and
// calendar membership). Ingesting GTFS/OSM into something that satisfies
// this contract is explicitly out of scope for the core; see memtransit for
// a minimal in-memory implementation used by the engine's own tests.
package transit

import "github.com/pkg/errors"

// ErrAdapterContract signals that a Provider violated one of the
// invariants this package documents: a transfer to a stop outside
// [0, NumStops()), a calendar predicate that panicked instead of
// returning a bool, or trips found out of order within a pattern during a
// trip search. §7 treats every one of these as fatal — the worker
// stops and returns the error, never a partial result set.
var ErrAdapterContract = errors.New("adapter contract violated")

// ValidateTransfer checks that leg references a stop actually within the
// provider's index range, wrapping ErrAdapterContract when it does not.
func ValidateTransfer(nStops int, leg TransferLeg) error {
	if leg.ToStop < 0 || leg.ToStop >= nStops {
		return errors.Wrapf(ErrAdapterContract, "transfer to out-of-range stop %d (nStops=%d)", leg.ToStop, nStops)
	}
	return nil
}

// Stop is a zero-based index in [0, nStops). The core has no other notion
// of a stop beyond this index.
type Stop = int

// PatternIndex identifies a TripPattern; TripIndex identifies a trip within
// a pattern. Both are request-scoped, pattern-local indices rather than
// pointers, so a stop-arrival can carry a trip reference as two ints.
type PatternIndex = int
type TripIndex = int

// TripRef is an opaque, cheap-to-copy handle to a scheduled trip: a
// pattern index plus a trip index local to that pattern.
type TripRef struct {
	Pattern PatternIndex
	Trip    TripIndex
}

// TransferLeg is a precomputed off-vehicle walk from one stop to another.
type TransferLeg struct {
	ToStop   Stop
	Duration int // seconds
	Cost     int // generalized cost units; 0 when unused
}

// AccessLeg is a precomputed off-network segment from the true origin to a
// stop that seeds round 0 of the search.
type AccessLeg struct {
	Stop     Stop
	Duration int
	Cost     int
}

// EgressLeg is a precomputed off-network segment from a stop to the true
// destination, attached to every arrival found at that stop.
type EgressLeg struct {
	Stop     Stop
	Duration int
	Cost     int
}

// Trip is one scheduled vehicle run within a pattern. Arrival/departure
// times are seconds since midnight, always real wall-clock values
// regardless of which directional calculator is scanning them.
type Trip interface {
	Ref() TripRef
	ArrivalTime(pos int) int
	DepartureTime(pos int) int
	// DebugInfo is opaque metadata surfaced only to debug listeners.
	DebugInfo() any
}

// Pattern is an ordered sequence of stops visited by one or more trips.
// Trips within a pattern are sorted ascending by departure time at every
// stop position (FIFO, non-overtaking) — callers must guarantee this; a
// violation surfaces as ErrAdapterContract.
type Pattern interface {
	Index() PatternIndex
	NumStops() int
	StopAt(pos int) Stop
	NumTrips() int
	TripAt(i TripIndex) Trip
}

// Provider is the adapter contract consumed by the core (§4.1). The core
// never mutates a Provider and assumes no ordering beyond what is stated
// here.
type Provider interface {
	NumStops() int
	// PatternsTouching returns every pattern that visits at least one of
	// the given stops. The caller (the worker) only ever passes the set of
	// stops newly touched in the previous round.
	PatternsTouching(stops []Stop) []Pattern
	TransfersFrom(stop Stop) []TransferLeg
	// IsTripInService applies calendar/service-day filtering. The core
	// calls this once per trip candidate scanned during a trip search.
	IsTripInService(trip Trip) bool
}
