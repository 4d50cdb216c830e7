package pareto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// point2D is a simple two-criterion test fixture: lower is better on both.
type point2D struct{ x, y int }

func cmp2D(candidate, existing point2D) (candidateBetter, existingBetter bool) {
	if candidate.x < existing.x {
		candidateBetter = true
	} else if existing.x < candidate.x {
		existingBetter = true
	}
	if candidate.y < existing.y {
		candidateBetter = true
	} else if existing.y < candidate.y {
		existingBetter = true
	}
	return
}

func TestSetRejectsDominated(t *testing.T) {
	s := NewSet(cmp2D)
	require.True(t, s.Add(point2D{1, 1}))
	require.False(t, s.Add(point2D{2, 2}), "strictly worse on both criteria must be rejected")
	assert.Equal(t, 1, s.Len())
}

func TestSetRejectsEquivalent(t *testing.T) {
	s := NewSet(cmp2D)
	require.True(t, s.Add(point2D{1, 1}))
	require.False(t, s.Add(point2D{1, 1}), "an identical element carries no new information")
	assert.Equal(t, 1, s.Len())
}

func TestSetKeepsMutualDominance(t *testing.T) {
	s := NewSet(cmp2D)
	require.True(t, s.Add(point2D{1, 5}))
	require.True(t, s.Add(point2D{5, 1}), "each element is better than the other on one criterion")
	assert.Equal(t, 2, s.Len())
}

func TestSetDropsDominatedExisting(t *testing.T) {
	s := NewSet(cmp2D)
	require.True(t, s.Add(point2D{3, 3}))
	require.True(t, s.Add(point2D{1, 1}))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, point2D{1, 1}, s.Elements()[0])
}

func TestSetRejectNeverMutates(t *testing.T) {
	// A rejected Add must leave the set exactly as it was: verified by
	// checking Len and Elements are unchanged after a failed Add.
	s := NewSet(cmp2D)
	s.Add(point2D{1, 1})
	before := s.Elements()
	s.Add(point2D{1, 1})
	after := s.Elements()
	assert.Equal(t, before, after)
}

func TestMarkerAndSince(t *testing.T) {
	s := NewSet(cmp2D)
	s.Add(point2D{5, 5})
	marker := s.Marker()
	s.Add(point2D{1, 5})
	s.Add(point2D{5, 1})
	since := s.Since(marker)
	assert.ElementsMatch(t, []point2D{{1, 5}, {5, 1}}, since)
}

func TestSinceExcludesDroppedElements(t *testing.T) {
	s := NewSet(cmp2D)
	s.Add(point2D{5, 5})
	marker := s.Marker()
	s.Add(point2D{1, 1}) // dominates and drops the {5,5} added before marker
	since := s.Since(marker)
	assert.Equal(t, []point2D{{1, 1}}, since)
}

func TestRelaxedWorseStrictAtDefaultFactor(t *testing.T) {
	assert.True(t, RelaxedWorse(11, 10, 1, 0))
	assert.False(t, RelaxedWorse(10, 10, 1, 0))
}

func TestRelaxedWorseAllowsSlack(t *testing.T) {
	assert.False(t, RelaxedWorse(15, 10, 1.5, 0), "within the relaxed factor, not worse")
	assert.True(t, RelaxedWorse(16, 10, 1.5, 0))
	assert.False(t, RelaxedWorse(20, 10, 1, 10), "within the additive delta, not worse")
}

func TestListenerFires(t *testing.T) {
	s := NewSet(cmp2D)
	var accepted, rejected, dropped int
	s.AddListener(func(kind EventKind, element, by point2D, reason string) {
		switch kind {
		case Accepted:
			accepted++
		case Rejected:
			rejected++
		case Dropped:
			dropped++
		}
	})
	s.Add(point2D{3, 3})
	s.Add(point2D{5, 5}) // dominated, rejected
	s.Add(point2D{1, 1}) // dominates and drops {3,3}

	assert.Equal(t, 2, accepted)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 1, dropped)
}
