// Package places answers nearby lookups against a bundled sample dataset of
// Trinidad & Tobago restaurants and fresh-ingredient markets.
package places

import (
	_ "embed"
	"encoding/json"
	"log"
	"math"
	"sort"
)

//go:embed samples.json
var samplesJSON []byte

const earthRadiusKM = 6371.0

// Place is one sample location.
type Place struct {
	Name string  `json:"name"`
	Area string  `json:"area"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// Result is a place annotated with its distance from the query point.
type Result struct {
	Place
	DistanceKM float64 `json:"distance_km"`
}

type dataset struct {
	Restaurants []Place `json:"restaurants"`
	Ingredients []Place `json:"ingredients"`
}

var samples dataset

func init() {
	if err := json.Unmarshal(samplesJSON, &samples); err != nil {
		log.Printf("Failed to parse bundled places dataset: %v", err)
	}
}

// Nearby returns the places of the given kind within radiusKM of the point,
// closest first. Kind "ingredients" selects markets; anything else selects
// restaurants.
func Nearby(lat, lng, radiusKM float64, kind string) []Result {
	pool := samples.Restaurants
	if kind == "ingredients" {
		pool = samples.Ingredients
	}

	results := make([]Result, 0, len(pool))
	for _, place := range pool {
		distance := haversineKM(lat, lng, place.Lat, place.Lng)
		if distance <= radiusKM {
			results = append(results, Result{Place: place, DistanceKM: distance})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].DistanceKM < results[j].DistanceKM
	})
	return results
}

func haversineKM(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLng := radians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKM * c
}

func radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
