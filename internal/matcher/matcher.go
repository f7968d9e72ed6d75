package matcher

import (
	"sort"

	"github.com/example/ride-ledger/internal/geo"
	"github.com/example/ride-ledger/internal/models"
)

// Candidate is an available driver scored by pickup distance.
type Candidate struct {
	DriverIndex int     `json:"driver_index"`
	DistanceKm  float64 `json:"distance_km"`
}

// FindNearestDriver scans available drivers in registration order and returns
// the closest one to pickup. Ties go to the earliest registered driver.
func FindNearestDriver(drivers []models.Driver, pickup models.Location) (Candidate, bool) {
	best := Candidate{DriverIndex: -1}
	for i, d := range drivers {
		if !d.Available {
			continue
		}
		dist := geo.Distance(d.Location, pickup)
		if best.DriverIndex < 0 || dist < best.DistanceKm {
			best = Candidate{DriverIndex: i, DistanceKm: dist}
		}
	}
	if best.DriverIndex < 0 {
		return Candidate{DriverIndex: -1}, false
	}
	return best, true
}

// Nearby ranks available drivers by distance to pickup. limit <= 0 returns
// every available driver.
func Nearby(drivers []models.Driver, pickup models.Location, limit int) []Candidate {
	arr := make([]Candidate, 0, len(drivers))
	for i, d := range drivers {
		if !d.Available {
			continue
		}
		arr = append(arr, Candidate{DriverIndex: i, DistanceKm: geo.Distance(d.Location, pickup)})
	}
	sort.SliceStable(arr, func(i, j int) bool { return arr[i].DistanceKm < arr[j].DistanceKm })
	if limit > 0 && limit < len(arr) {
		arr = arr[:limit]
	}
	return arr
}
