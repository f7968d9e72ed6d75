package models

import "time"

// Location is a point on the abstract plane; units are kilometers.
type Location struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Driver struct {
	Index      int      `json:"index"`
	Name       string   `json:"name"`
	CarDetails string   `json:"car_details"`
	Location   Location `json:"location"`
	Available  bool     `json:"available"`
}

type Passenger struct {
	Index         int       `json:"index"`
	Name          string    `json:"name"`
	Pickup        Location  `json:"pickup"`
	Destination   Location  `json:"destination"`
	RideCancelled bool      `json:"ride_cancelled"`
	RideState     RideState `json:"ride_state"`
}

// RideState is the state of a passenger's most recent ride.
type RideState string

const (
	RideIdle          RideState = "idle"
	RideAssigned      RideState = "assigned"
	RideAutoCancelled RideState = "auto_cancelled"
	RideCancelled     RideState = "cancelled"
	RideCompleted     RideState = "completed"
)

// OutcomeStatus is the result of a ride request.
type OutcomeStatus string

const (
	OutcomeNoDriver      OutcomeStatus = "no_driver"
	OutcomeAutoCancelled OutcomeStatus = "auto_cancelled"
	OutcomeAssigned      OutcomeStatus = "assigned"
)

type Assignment struct {
	RideID           string    `json:"ride_id"`
	PassengerIndex   int       `json:"passenger_index"`
	DriverIndex      int       `json:"driver_index"`
	PickupDistanceKm float64   `json:"pickup_distance_km"`
	State            RideState `json:"state"`
	AssignedAt       time.Time `json:"assigned_at"`
}

type RideOutcome struct {
	Status           OutcomeStatus `json:"status"`
	PassengerIndex   int           `json:"passenger_index"`
	DriverIndex      int           `json:"driver_index"` // -1 when no driver was found
	PickupDistanceKm float64       `json:"pickup_distance_km"`
	Assignment       *Assignment   `json:"assignment,omitempty"`
}

type Receipt struct {
	RideID         string  `json:"ride_id"`
	PassengerIndex int     `json:"passenger_index"`
	DriverIndex    int     `json:"driver_index"`
	TripDistanceKm float64 `json:"trip_distance_km"`
	Fare           float64 `json:"fare"`
}

type MatchOffer struct {
	RideID           string   `json:"ride_id"`
	DriverIndex      int      `json:"driver_index"`
	PassengerName    string   `json:"passenger_name"`
	Pickup           Location `json:"pickup"`
	Destination      Location `json:"destination"`
	PickupDistanceKm float64  `json:"pickup_distance_km"`
}

// Ride is the journal record for a single ride request.
type Ride struct {
	ID               string
	PassengerIndex   int
	DriverIndex      int
	Pickup           Location
	Destination      Location
	Status           RideState
	PickupDistanceKm float64
	TripDistanceKm   float64
	Fare             float64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type EventType string

const (
	EventNoDriver      EventType = "no_driver"
	EventAutoCancelled EventType = "auto_cancelled"
	EventAssigned      EventType = "assigned"
	EventCancelled     EventType = "cancelled"
	EventCompleted     EventType = "completed"
)

type RideEvent struct {
	RideID           string    `json:"ride_id"`
	Type             EventType `json:"type"`
	PassengerIndex   int       `json:"passenger_index"`
	DriverIndex      int       `json:"driver_index"`
	PickupDistanceKm float64   `json:"pickup_distance_km,omitempty"`
	TripDistanceKm   float64   `json:"trip_distance_km,omitempty"`
	Fare             float64   `json:"fare,omitempty"`
	At               time.Time `json:"at"`
}
