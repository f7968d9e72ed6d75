package ledger

import (
	"context"

	"github.com/example/ride-ledger/internal/models"
	"github.com/example/ride-ledger/internal/observability"
)

// effects are the outputs of a transition. They run after the lock is
// released and never roll the transition back.
type effects struct {
	save   *models.Ride
	update *models.Ride
	event  *models.RideEvent
	offer  *models.MatchOffer
}

func (s *Service) emit(ctx context.Context, eff effects) {
	if eff.event != nil {
		s.logger.Info("ride "+string(eff.event.Type),
			"ride_id", eff.event.RideID,
			"passenger", eff.event.PassengerIndex,
			"driver", eff.event.DriverIndex,
			"pickup_distance_km", eff.event.PickupDistanceKm,
			"trip_distance_km", eff.event.TripDistanceKm,
			"fare", eff.event.Fare,
		)
	}

	if s.store != nil {
		if eff.save != nil {
			if err := s.store.SaveRide(eff.save); err != nil {
				s.sinkFailed("journal", eff.save.ID, err)
			}
		}
		if eff.update != nil {
			if err := s.store.UpdateRide(eff.update); err != nil {
				s.sinkFailed("journal", eff.update.ID, err)
			}
		}
	}

	if s.events != nil && eff.event != nil {
		if err := s.events.PublishRideEvent(ctx, *eff.event); err != nil {
			s.sinkFailed("events", eff.event.RideID, err)
		}
	}

	if s.dispatch != nil && eff.offer != nil {
		if err := s.dispatch.Offer(eff.offer.RideID, *eff.offer); err != nil {
			s.sinkFailed("dispatch", eff.offer.RideID, err)
		}
	}
}

func (s *Service) sinkFailed(sink, rideID string, err error) {
	observability.SinkErrors.WithLabelValues(sink).Inc()
	s.logger.Warn("ride side effect failed", "sink", sink, "ride_id", rideID, "error", err)
}
