// Package memtransit is a minimal in-memory transit.Provider, built for
// the engine's own tests and as a worked example of the adapter contract
// (§4.1): no GTFS ingestion, no persistence, just patterns, trips and
// transfers held in slices.
package memtransit

import "github.com/transitcore/rangeraptor/transit"

// Trip is one scheduled vehicle run held in memory.
type Trip struct {
	ref        transit.TripRef
	arrivals   []int
	departures []int
	service    string
	debug      any
}

func (t *Trip) Ref() transit.TripRef      { return t.ref }
func (t *Trip) ArrivalTime(pos int) int   { return t.arrivals[pos] }
func (t *Trip) DepartureTime(pos int) int { return t.departures[pos] }
func (t *Trip) DebugInfo() any            { return t.debug }

// Pattern is an ordered stop sequence with its trips, which the caller
// must add sorted ascending by departure time at every position; AddTrip
// does not check or re-sort them.
type Pattern struct {
	index int
	stops []transit.Stop
	trips []*Trip
}

func (p *Pattern) Index() transit.PatternIndex             { return p.index }
func (p *Pattern) NumStops() int                           { return len(p.stops) }
func (p *Pattern) StopAt(pos int) transit.Stop             { return p.stops[pos] }
func (p *Pattern) NumTrips() int                           { return len(p.trips) }
func (p *Pattern) TripAt(i transit.TripIndex) transit.Trip { return p.trips[i] }

// Provider is the in-memory transit.Provider implementation.
type Provider struct {
	nStops         int
	patterns       []*Pattern
	patternsByStop map[transit.Stop][]*Pattern
	transfers      map[transit.Stop][]transit.TransferLeg
	services       map[string]bool // nil means every trip is in service
}

// New allocates an empty provider over nStops stops.
func New(nStops int) *Provider {
	return &Provider{
		nStops:         nStops,
		patternsByStop: map[transit.Stop][]*Pattern{},
		transfers:      map[transit.Stop][]transit.TransferLeg{},
	}
}

// WithServices restricts IsTripInService to the given set; by default
// every trip is considered in service.
func (p *Provider) WithServices(services map[string]bool) *Provider {
	p.services = services
	return p
}

// PatternBuilder accumulates trips for one pattern before it is sealed
// into the provider.
type PatternBuilder struct {
	provider *Provider
	pattern  *Pattern
}

// AddPattern starts a new pattern over the given stop sequence.
func (p *Provider) AddPattern(stops []transit.Stop) *PatternBuilder {
	pat := &Pattern{index: len(p.patterns), stops: stops}
	p.patterns = append(p.patterns, pat)
	for _, s := range stops {
		p.patternsByStop[s] = append(p.patternsByStop[s], pat)
	}
	return &PatternBuilder{provider: p, pattern: pat}
}

// AddTrip appends a trip to the pattern. Callers must add trips in
// ascending departure-time order at every stop position: the core assumes
// this FIFO invariant and does not re-sort.
func (b *PatternBuilder) AddTrip(arrivals, departures []int, service string) *PatternBuilder {
	b.pattern.trips = append(b.pattern.trips, &Trip{
		ref:        transit.TripRef{Pattern: b.pattern.index, Trip: len(b.pattern.trips)},
		arrivals:   arrivals,
		departures: departures,
		service:    service,
	})
	return b
}

// AddTransfer records a walk from one stop to another.
func (p *Provider) AddTransfer(from, to transit.Stop, durationSeconds, cost int) {
	p.transfers[from] = append(p.transfers[from], transit.TransferLeg{ToStop: to, Duration: durationSeconds, Cost: cost})
}

func (p *Provider) NumStops() int { return p.nStops }

func (p *Provider) PatternsTouching(stops []transit.Stop) []transit.Pattern {
	seen := map[transit.PatternIndex]bool{}
	var out []transit.Pattern
	for _, s := range stops {
		for _, pat := range p.patternsByStop[s] {
			if seen[pat.index] {
				continue
			}
			seen[pat.index] = true
			out = append(out, pat)
		}
	}
	return out
}

func (p *Provider) TransfersFrom(stop transit.Stop) []transit.TransferLeg {
	return p.transfers[stop]
}

func (p *Provider) IsTripInService(trip transit.Trip) bool {
	if p.services == nil {
		return true
	}
	t, ok := trip.(*Trip)
	if !ok {
		return true
	}
	return p.services[t.service]
}
