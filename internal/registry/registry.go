package registry

import (
	"errors"

	"github.com/example/ride-ledger/internal/models"
)

// ErrInvalidIndex is returned for an index outside the registry bounds.
var ErrInvalidIndex = errors.New("invalid index")

// Registry owns drivers and passengers in registration order. Indices are
// stable for the life of the process since nothing is ever removed.
//
// Registry is not safe for concurrent use; the ledger serialises access.
type Registry struct {
	drivers    []models.Driver
	passengers []models.Passenger
}

func New() *Registry {
	return &Registry{}
}

func (r *Registry) AddDriver(name, carDetails string, loc models.Location) int {
	idx := len(r.drivers)
	r.drivers = append(r.drivers, models.Driver{
		Index:      idx,
		Name:       name,
		CarDetails: carDetails,
		Location:   loc,
		Available:  true,
	})
	return idx
}

func (r *Registry) AddPassenger(name string, pickup, destination models.Location) int {
	idx := len(r.passengers)
	r.passengers = append(r.passengers, models.Passenger{
		Index:       idx,
		Name:        name,
		Pickup:      pickup,
		Destination: destination,
		RideState:   models.RideIdle,
	})
	return idx
}

// Drivers returns a copy of all drivers in registration order.
func (r *Registry) Drivers() []models.Driver {
	out := make([]models.Driver, len(r.drivers))
	copy(out, r.drivers)
	return out
}

// Passengers returns a copy of all passengers in registration order.
func (r *Registry) Passengers() []models.Passenger {
	out := make([]models.Passenger, len(r.passengers))
	copy(out, r.passengers)
	return out
}

// Driver returns the stored driver for mutation.
func (r *Registry) Driver(i int) (*models.Driver, error) {
	if i < 0 || i >= len(r.drivers) {
		return nil, ErrInvalidIndex
	}
	return &r.drivers[i], nil
}

// Passenger returns the stored passenger for mutation.
func (r *Registry) Passenger(i int) (*models.Passenger, error) {
	if i < 0 || i >= len(r.passengers) {
		return nil, ErrInvalidIndex
	}
	return &r.passengers[i], nil
}

func (r *Registry) DriverCount() int    { return len(r.drivers) }
func (r *Registry) PassengerCount() int { return len(r.passengers) }

// AvailableDrivers counts drivers that can take a new ride.
func (r *Registry) AvailableDrivers() int {
	n := 0
	for _, d := range r.drivers {
		if d.Available {
			n++
		}
	}
	return n
}
