package places

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Port of Spain city centre.
const (
	posLat = 10.6549
	posLng = -61.5019
)

func TestNearbyReturnsClosestFirst(t *testing.T) {
	results := Nearby(posLat, posLng, 10, "restaurants")

	require.NotEmpty(t, results)
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i-1].DistanceKM, results[i].DistanceKM)
	}
	for _, result := range results {
		assert.LessOrEqual(t, result.DistanceKM, 10.0)
	}
}

func TestNearbyIngredientsPool(t *testing.T) {
	results := Nearby(posLat, posLng, 10, "ingredients")

	require.NotEmpty(t, results)
	assert.Equal(t, "Central Market", results[0].Name)
}

func TestNearbyOutsideRadiusIsEmpty(t *testing.T) {
	// Middle of the Atlantic.
	results := Nearby(0, -30, 5, "restaurants")
	assert.Empty(t, results)
}

func TestHaversineKnownDistance(t *testing.T) {
	// Port of Spain to San Fernando is roughly 42 km.
	d := haversineKM(posLat, posLng, 10.2797, -61.4683)
	assert.InDelta(t, 42, d, 3)
}
