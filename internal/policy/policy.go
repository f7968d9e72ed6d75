package policy

import (
	"github.com/example/ride-ledger/internal/geo"
	"github.com/example/ride-ledger/internal/models"
)

// DefaultMaxPickupDistanceKm is the pickup distance beyond which a match is
// cancelled automatically.
const DefaultMaxPickupDistanceKm = 4.0

type Policy struct {
	MaxPickupDistanceKm float64
}

func Default() Policy {
	return Policy{MaxPickupDistanceKm: DefaultMaxPickupDistanceKm}
}

// ShouldCancelRide reports whether the driver is strictly farther than the
// threshold from the pickup point.
func (p Policy) ShouldCancelRide(driverLoc, pickup models.Location) bool {
	return geo.Distance(driverLoc, pickup) > p.MaxPickupDistanceKm
}
