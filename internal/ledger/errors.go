package ledger

import (
	"errors"

	"github.com/example/ride-ledger/internal/registry"
)

// Failures are local: when one is returned nothing has been mutated.
var (
	ErrInvalidIndex          = registry.ErrInvalidIndex
	ErrNoDriversOrPassengers = errors.New("not enough passengers or drivers to request a ride")
	ErrNoActiveRide          = errors.New("no ride to cancel")
	ErrNoValidRide           = errors.New("no valid ride")
	ErrRideInProgress        = errors.New("passenger already has an active ride")
)
