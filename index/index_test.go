package index

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchFindsEveryPointWithinRadius(t *testing.T) {
	idx := New[int](2.0)
	for i := 0; i < 50; i++ {
		x := float64(i % 10)
		y := float64(i / 10)
		idx.Insert(x, y, i)
	}

	for i := 0; i < 50; i++ {
		x := float64(i % 10)
		y := float64(i / 10)
		hits := idx.Search(x, y)

		found := false
		for _, h := range hits {
			if h.Payload == i {
				found = true
				assert.Equal(t, 0.0, h.DistSquared)
			}
		}
		assert.True(t, found, "point %d should find itself", i)
	}
}

func TestSearchExcludesFarPoints(t *testing.T) {
	idx := New[string](1.0)
	idx.Insert(0, 0, "near")
	idx.Insert(100, 100, "far")

	hits := idx.Search(0.2, 0.2)
	var payloads []string
	for _, h := range hits {
		payloads = append(payloads, h.Payload)
	}
	sort.Strings(payloads)
	assert.Equal(t, []string{"near"}, payloads)
}

func TestSearchEmptyWhenNoCandidates(t *testing.T) {
	idx := New[int](1.0)
	idx.Insert(0, 0, 1)
	hits := idx.Search(500, 500)
	assert.Empty(t, hits)
}
