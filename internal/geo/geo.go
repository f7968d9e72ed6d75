package geo

import (
	"math"

	"github.com/example/ride-ledger/internal/models"
)

// Distance is the Euclidean distance between two points in kilometers,
// sqrt(dx*dx + dy*dy) without overflowing for large coordinates.
// Matching, the pickup policy and trip fares all go through it.
func Distance(a, b models.Location) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
