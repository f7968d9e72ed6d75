package ledger

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/ride-ledger/internal/dispatch"
	"github.com/example/ride-ledger/internal/fare"
	"github.com/example/ride-ledger/internal/geo"
	"github.com/example/ride-ledger/internal/matcher"
	"github.com/example/ride-ledger/internal/models"
	"github.com/example/ride-ledger/internal/observability"
	"github.com/example/ride-ledger/internal/policy"
	"github.com/example/ride-ledger/internal/registry"
	"github.com/example/ride-ledger/internal/storage"
)

// EventPublisher receives every ride lifecycle transition.
type EventPublisher interface {
	PublishRideEvent(ctx context.Context, ev models.RideEvent) error
}

type Options struct {
	Policy   policy.Policy
	Fare     *fare.Calculator    // nil means fare.Default(); a zero calculator prices every ride at 0
	Store    storage.TripStore   // optional ride journal
	Events   EventPublisher      // optional
	Dispatch dispatch.Dispatcher // optional
	Logger   *slog.Logger

	Now   func() time.Time
	NewID func() string
}

// Service is the ride lifecycle state machine. A single mutex guards the
// registry and the assignments together, so an availability flip and the
// matching assignment change are always observed as one step.
type Service struct {
	mu     sync.Mutex
	reg    *registry.Registry
	active map[int]models.Assignment // keyed by passenger index

	policy   policy.Policy
	fares    fare.Calculator
	store    storage.TripStore
	events   EventPublisher
	dispatch dispatch.Dispatcher
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

func New(opts Options) *Service {
	s := &Service{
		reg:      registry.New(),
		active:   make(map[int]models.Assignment),
		policy:   opts.Policy,
		fares:    fare.Default(),
		store:    opts.Store,
		events:   opts.Events,
		dispatch: opts.Dispatch,
		logger:   opts.Logger,
		now:      opts.Now,
		newID:    opts.NewID,
	}
	if s.policy.MaxPickupDistanceKm <= 0 {
		s.policy = policy.Default()
	}
	if opts.Fare != nil {
		s.fares = *opts.Fare
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = func() string { return uuid.NewString() }
	}
	return s
}

func (s *Service) AddDriver(name, carDetails string, loc models.Location) int {
	s.mu.Lock()
	idx := s.reg.AddDriver(name, carDetails, loc)
	s.refreshGaugesLocked()
	s.mu.Unlock()
	s.logger.Info("driver added", "driver", idx, "name", name)
	return idx
}

func (s *Service) AddPassenger(name string, pickup, destination models.Location) int {
	s.mu.Lock()
	idx := s.reg.AddPassenger(name, pickup, destination)
	s.mu.Unlock()
	s.logger.Info("passenger added", "passenger", idx, "name", name)
	return idx
}

func (s *Service) ListDrivers() []models.Driver {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.Drivers()
}

func (s *Service) ListPassengers() []models.Passenger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.Passengers()
}

// Nearby ranks currently available drivers around a point.
func (s *Service) Nearby(pickup models.Location, limit int) []matcher.Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return matcher.Nearby(s.reg.Drivers(), pickup, limit)
}

// ActiveRides returns the outstanding assignments ordered by passenger.
func (s *Service) ActiveRides() []models.Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Assignment, 0, len(s.active))
	for _, a := range s.active {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PassengerIndex < out[j].PassengerIndex })
	return out
}

// RequestRide matches the passenger with the nearest available driver. A
// match farther than the pickup threshold is cancelled automatically and the
// driver stays available. Finding no driver is an outcome, not an error.
func (s *Service) RequestRide(ctx context.Context, passengerIndex int) (models.RideOutcome, error) {
	s.mu.Lock()
	out, eff, err := s.requestLocked(passengerIndex)
	s.mu.Unlock()
	if err != nil {
		return models.RideOutcome{}, err
	}
	s.emit(ctx, eff)
	return out, nil
}

func (s *Service) requestLocked(pi int) (models.RideOutcome, effects, error) {
	if s.reg.DriverCount() == 0 || s.reg.PassengerCount() == 0 {
		return models.RideOutcome{}, effects{}, ErrNoDriversOrPassengers
	}
	p, err := s.reg.Passenger(pi)
	if err != nil {
		return models.RideOutcome{}, effects{}, err
	}
	if _, busy := s.active[pi]; busy {
		return models.RideOutcome{}, effects{}, ErrRideInProgress
	}

	p.RideCancelled = false
	observability.RideRequests.Inc()

	rideID := s.newID()
	now := s.now()

	cand, ok := matcher.FindNearestDriver(s.reg.Drivers(), p.Pickup)
	if !ok {
		p.RideState = models.RideIdle
		observability.RideOutcomes.WithLabelValues(string(models.OutcomeNoDriver)).Inc()
		out := models.RideOutcome{Status: models.OutcomeNoDriver, PassengerIndex: pi, DriverIndex: -1}
		ev := models.RideEvent{RideID: rideID, Type: models.EventNoDriver, PassengerIndex: pi, DriverIndex: -1, At: now}
		return out, effects{event: &ev}, nil
	}

	d, err := s.reg.Driver(cand.DriverIndex)
	if err != nil {
		return models.RideOutcome{}, effects{}, err
	}
	observability.PickupDistance.Observe(cand.DistanceKm)

	out := models.RideOutcome{PassengerIndex: pi, DriverIndex: cand.DriverIndex, PickupDistanceKm: cand.DistanceKm}
	ride := &models.Ride{
		ID:               rideID,
		PassengerIndex:   pi,
		DriverIndex:      cand.DriverIndex,
		Pickup:           p.Pickup,
		Destination:      p.Destination,
		PickupDistanceKm: cand.DistanceKm,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	ev := models.RideEvent{RideID: rideID, PassengerIndex: pi, DriverIndex: cand.DriverIndex, PickupDistanceKm: cand.DistanceKm, At: now}

	if s.policy.ShouldCancelRide(d.Location, p.Pickup) {
		p.RideCancelled = true
		p.RideState = models.RideAutoCancelled
		out.Status = models.OutcomeAutoCancelled
		ride.Status = models.RideAutoCancelled
		ev.Type = models.EventAutoCancelled
		observability.RideOutcomes.WithLabelValues(string(models.OutcomeAutoCancelled)).Inc()
		return out, effects{save: ride, event: &ev}, nil
	}

	d.Available = false
	a := models.Assignment{
		RideID:           rideID,
		PassengerIndex:   pi,
		DriverIndex:      cand.DriverIndex,
		PickupDistanceKm: cand.DistanceKm,
		State:            models.RideAssigned,
		AssignedAt:       now,
	}
	s.active[pi] = a
	p.RideState = models.RideAssigned
	s.refreshGaugesLocked()
	observability.RideOutcomes.WithLabelValues(string(models.OutcomeAssigned)).Inc()

	out.Status = models.OutcomeAssigned
	out.Assignment = &a
	ride.Status = models.RideAssigned
	ev.Type = models.EventAssigned
	offer := models.MatchOffer{
		RideID:           rideID,
		DriverIndex:      cand.DriverIndex,
		PassengerName:    p.Name,
		Pickup:           p.Pickup,
		Destination:      p.Destination,
		PickupDistanceKm: cand.DistanceKm,
	}
	return out, effects{save: ride, event: &ev, offer: &offer}, nil
}

// CancelRide releases the passenger's driver and marks the passenger cancelled.
func (s *Service) CancelRide(ctx context.Context, passengerIndex int) (models.Assignment, error) {
	s.mu.Lock()
	p, err := s.reg.Passenger(passengerIndex)
	if err != nil {
		s.mu.Unlock()
		return models.Assignment{}, err
	}
	a, ok := s.active[passengerIndex]
	if !ok {
		s.mu.Unlock()
		return models.Assignment{}, ErrNoActiveRide
	}
	d, err := s.reg.Driver(a.DriverIndex)
	if err != nil {
		s.mu.Unlock()
		return models.Assignment{}, err
	}

	now := s.now()
	p.RideCancelled = true
	p.RideState = models.RideCancelled
	d.Available = true
	delete(s.active, passengerIndex)
	s.refreshGaugesLocked()
	a.State = models.RideCancelled

	ride := s.journalRecord(a, p, now)
	ev := models.RideEvent{RideID: a.RideID, Type: models.EventCancelled, PassengerIndex: passengerIndex, DriverIndex: a.DriverIndex, PickupDistanceKm: a.PickupDistanceKm, At: now}
	s.mu.Unlock()

	observability.RideOutcomes.WithLabelValues(string(models.RideCancelled)).Inc()
	s.emit(ctx, effects{update: ride, event: &ev})
	return a, nil
}

// CompleteRide finishes the passenger's ride, frees the driver and returns
// the trip distance and fare.
func (s *Service) CompleteRide(ctx context.Context, passengerIndex int) (models.Receipt, error) {
	s.mu.Lock()
	a, p, d, err := s.validRideLocked(passengerIndex)
	if err != nil {
		s.mu.Unlock()
		return models.Receipt{}, err
	}
	rc := s.receipt(a, p)

	now := s.now()
	d.Available = true
	p.RideState = models.RideCompleted
	delete(s.active, passengerIndex)
	s.refreshGaugesLocked()
	a.State = models.RideCompleted

	ride := s.journalRecord(a, p, now)
	ride.TripDistanceKm = rc.TripDistanceKm
	ride.Fare = rc.Fare
	ev := models.RideEvent{RideID: a.RideID, Type: models.EventCompleted, PassengerIndex: passengerIndex, DriverIndex: a.DriverIndex, PickupDistanceKm: a.PickupDistanceKm, TripDistanceKm: rc.TripDistanceKm, Fare: rc.Fare, At: now}
	s.mu.Unlock()

	observability.RideOutcomes.WithLabelValues(string(models.RideCompleted)).Inc()
	observability.FareAmount.Observe(rc.Fare)
	s.emit(ctx, effects{update: ride, event: &ev})
	return rc, nil
}

// ComputeFare quotes the active ride without changing any state.
func (s *Service) ComputeFare(passengerIndex int) (models.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, p, _, err := s.validRideLocked(passengerIndex)
	if err != nil {
		return models.Receipt{}, err
	}
	return s.receipt(a, p), nil
}

func (s *Service) validRideLocked(pi int) (models.Assignment, *models.Passenger, *models.Driver, error) {
	p, err := s.reg.Passenger(pi)
	if err != nil {
		return models.Assignment{}, nil, nil, err
	}
	a, ok := s.active[pi]
	if !ok || p.RideCancelled {
		return models.Assignment{}, nil, nil, ErrNoValidRide
	}
	d, err := s.reg.Driver(a.DriverIndex)
	if err != nil {
		return models.Assignment{}, nil, nil, err
	}
	return a, p, d, nil
}

func (s *Service) receipt(a models.Assignment, p *models.Passenger) models.Receipt {
	trip := geo.Distance(p.Pickup, p.Destination)
	return models.Receipt{
		RideID:         a.RideID,
		PassengerIndex: a.PassengerIndex,
		DriverIndex:    a.DriverIndex,
		TripDistanceKm: trip,
		Fare:           s.fares.Calculate(trip),
	}
}

func (s *Service) journalRecord(a models.Assignment, p *models.Passenger, now time.Time) *models.Ride {
	return &models.Ride{
		ID:               a.RideID,
		PassengerIndex:   a.PassengerIndex,
		DriverIndex:      a.DriverIndex,
		Pickup:           p.Pickup,
		Destination:      p.Destination,
		Status:           a.State,
		PickupDistanceKm: a.PickupDistanceKm,
		CreatedAt:        a.AssignedAt,
		UpdatedAt:        now,
	}
}

func (s *Service) refreshGaugesLocked() {
	observability.DriversAvailable.Set(float64(s.reg.AvailableDrivers()))
	observability.ActiveRides.Set(float64(len(s.active)))
}
