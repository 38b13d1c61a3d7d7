// Package index implements FixedRadiusIndex, a 2D spatial hash keyed on a
// fixed bucket size equal to the search radius. It is build-once/read-many:
// the build phase is expected to run single-threaded, and the structure is
// not internally synchronized against concurrent mutation.
package index

import (
	"math"

	"github.com/samber/lo"
)

type bucketKey struct {
	i, j int
}

type entry[P any] struct {
	x, y    float64
	payload P
}

// Result is a single FixedRadiusIndex search hit.
type Result[P any] struct {
	Payload    P
	DistSquared float64
}

// FixedRadiusIndex buckets inserted (x, y, payload) entries by
// (floor(x/r), floor(y/r)) and answers radius queries by scanning the nine
// buckets around the query point.
type FixedRadiusIndex[P any] struct {
	radius  float64
	buckets map[bucketKey][]entry[P]
}

// New constructs a FixedRadiusIndex whose bucket size equals radius.
func New[P any](radius float64) *FixedRadiusIndex[P] {
	return &FixedRadiusIndex[P]{
		radius:  radius,
		buckets: make(map[bucketKey][]entry[P]),
	}
}

func (idx *FixedRadiusIndex[P]) bucketFor(x, y float64) bucketKey {
	return bucketKey{
		i: int(math.Floor(x / idx.radius)),
		j: int(math.Floor(y / idx.radius)),
	}
}

// Insert adds payload at (x, y). Amortized O(1); not safe to call
// concurrently with other Insert or Search calls.
func (idx *FixedRadiusIndex[P]) Insert(x, y float64, payload P) {
	key := idx.bucketFor(x, y)
	idx.buckets[key] = append(idx.buckets[key], entry[P]{x: x, y: y, payload: payload})
}

// Search returns every stored entry whose (x, y) lies within radius of the
// query point, in unspecified order. Complexity is O(k) where k is the
// number of candidates across the nine adjacent buckets.
func (idx *FixedRadiusIndex[P]) Search(x, y float64) []Result[P] {
	center := idx.bucketFor(x, y)
	r2 := idx.radius * idx.radius

	candidates := make([]entry[P], 0)
	for di := -1; di <= 1; di++ {
		for dj := -1; dj <= 1; dj++ {
			key := bucketKey{i: center.i + di, j: center.j + dj}
			candidates = append(candidates, idx.buckets[key]...)
		}
	}

	hits := lo.FilterMap(candidates, func(e entry[P], _ int) (Result[P], bool) {
		dx := e.x - x
		dy := e.y - y
		d2 := dx*dx + dy*dy
		if d2 > r2 {
			return Result[P]{}, false
		}
		return Result[P]{Payload: e.payload, DistSquared: d2}, true
	})

	return hits
}
