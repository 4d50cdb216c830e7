package calc

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/transitcore/rangeraptor/transit"
)

// DefaultBinarySearchThreshold is the trip-count above which TripSearch
// switches from a linear scan to a binary search for the candidate window,
// matching the tuning default in §6.
const DefaultBinarySearchThreshold = 50

// TripSearch finds the best boardable trip at stop position pos on
// pattern, given the calculator's search-time semantics (departure time
// forward, arrival time reverse) and a comparison target.
//
//   - bound, hasBound restricts the search to trip indices strictly below
//     bound (forward) — used once a trip is already held, to only look for
//     an earlier, still-valid improvement (§4.6 StdTransit step 2).
//   - exact requires the found trip's search time to equal target exactly;
//     used only in round 1 when the caller does not want the engine to
//     invent extra wait at the origin.
//   - inService filters out trips whose calendar/service membership does
//     not match (§4.1 IsTripInService); trips within a pattern remain
//     sorted by time across all calendars, so skipping an ineligible
//     candidate and continuing the scan preserves monotonicity.
//
// Patterns are assumed sorted ascending by search-time at every position
// (the FIFO invariant, §3); above threshold trips, the candidate index is
// located with a binary search and then linearly walked in the scan
// direction (ascending forward, descending reverse), applying
// the service filter, which keeps the common case O(log n) while still
// respecting calendar membership. The walk also checks the FIFO invariant
// as it goes, returning ErrAdapterContract the moment two consecutive
// visited trips are out of order — a binary search over unsorted trips
// would otherwise fail silently rather than loudly (§7).
func TripSearch(
	c Calculator,
	pattern transit.Pattern,
	pos int,
	target int,
	bound transit.TripIndex,
	hasBound bool,
	exact bool,
	threshold int,
	inService func(transit.Trip) bool,
) (transit.TripIndex, bool, error) {
	n := pattern.NumTrips()
	if hasBound && bound < n {
		n = bound
	}
	if n <= 0 {
		return 0, false, nil
	}

	timeAt := func(i int) int { return c.SearchTime(pattern.TripAt(i), pos) }

	var start int
	if n <= threshold {
		start = linearLowerBound(n, timeAt, target, c.Forward())
	} else {
		start = binaryLowerBound(n, timeAt, target, c.Forward())
	}

	step := 1
	if !c.Forward() {
		step = -1
	}
	prevSet := false
	var prevTime int
	for i := start; i >= 0 && i < n; i += step {
		t := timeAt(i)
		if prevSet && ((step > 0 && t < prevTime) || (step < 0 && t > prevTime)) {
			return 0, false, errors.Wrapf(transit.ErrAdapterContract, "pattern trips not sorted ascending by search time at position %d (trip index %d)", pos, i)
		}
		prevTime, prevSet = t, true

		trip := pattern.TripAt(i)
		if exact && t != target {
			return 0, false, nil
		}
		ok, err := checkInService(inService, trip)
		if err != nil {
			return 0, false, err
		}
		if !ok {
			continue
		}
		return i, true, nil
	}
	return 0, false, nil
}

// checkInService calls inService, converting a panicking calendar
// predicate (§4.1, §7) into an ErrAdapterContract return instead of
// letting it unwind through the search.
func checkInService(inService func(transit.Trip) bool, trip transit.Trip) (ok bool, err error) {
	if inService == nil {
		return true, nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(transit.ErrAdapterContract, "calendar predicate panicked: %v", r)
		}
	}()
	return inService(trip), nil
}

// linearLowerBound scans trips 0..n-1 and returns the first index whose
// time is an acceptable candidate: >= target (forward) or <= target
// (reverse). Returns n (forward) or -1 (reverse) when no such trip exists,
// a sentinel the caller's walk loop treats as "not found".
func linearLowerBound(n int, timeAt func(int) int, target int, forward bool) int {
	if forward {
		for i := 0; i < n; i++ {
			if timeAt(i) >= target {
				return i
			}
		}
		return n
	}
	for i := n - 1; i >= 0; i-- {
		if timeAt(i) <= target {
			return i
		}
	}
	return -1
}

// binaryLowerBound is the same search as linearLowerBound but in O(log n),
// relying on timeAt being monotonic ascending across the whole trip range
// (true regardless of calendar membership: calendar filtering only removes
// candidates from consideration after the position is found).
func binaryLowerBound(n int, timeAt func(int) int, target int, forward bool) int {
	if forward {
		return sort.Search(n, func(i int) bool { return timeAt(i) >= target })
	}
	idx := sort.Search(n, func(i int) bool { return timeAt(i) > target })
	return idx - 1
}
