package dispatch

import (
	"errors"
	"log/slog"

	"github.com/example/ride-ledger/internal/models"
)

// Dispatcher notifies a driver that a ride was assigned to them.
type Dispatcher interface {
	Offer(rideID string, offer models.MatchOffer) error
}

// LogDispatcher only records the offer. Used when no driver app is connected.
type LogDispatcher struct {
	Logger *slog.Logger
}

func (d *LogDispatcher) Offer(rideID string, offer models.MatchOffer) error {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("dispatch offer", "ride_id", rideID, "driver", offer.DriverIndex, "passenger", offer.PassengerName, "pickup_distance_km", offer.PickupDistanceKm)
	return nil
}

// FallbackDispatcher tries the driver's websocket first and falls back to
// the secondary dispatcher when the driver has no open session.
type FallbackDispatcher struct {
	WS       *WSRegistry
	Fallback Dispatcher
}

func (f *FallbackDispatcher) Offer(rideID string, offer models.MatchOffer) error {
	if f.WS != nil {
		err := f.WS.Offer(rideID, offer)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrNoSession) {
			return err
		}
	}
	if f.Fallback == nil {
		return ErrNoSession
	}
	return f.Fallback.Offer(rideID, offer)
}
