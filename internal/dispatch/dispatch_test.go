package dispatch

import (
	"errors"
	"testing"

	"github.com/example/ride-ledger/internal/models"
)

type fakeConn struct {
	sent   []interface{}
	err    error
	closed bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, v)
	return nil
}

func (f *fakeConn) Close() error { f.closed = true; return nil }

type recordingDispatcher struct{ offers []models.MatchOffer }

func (r *recordingDispatcher) Offer(rideID string, offer models.MatchOffer) error {
	r.offers = append(r.offers, offer)
	return nil
}

func TestWSRegistryOfferToSession(t *testing.T) {
	reg := NewWSRegistry()
	c := &fakeConn{}
	reg.add(2, c)
	if err := reg.Offer("r1", models.MatchOffer{RideID: "r1", DriverIndex: 2}); err != nil {
		t.Fatalf("offer: %v", err)
	}
	if len(c.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(c.sent))
	}
}

func TestWSRegistryNoSession(t *testing.T) {
	reg := NewWSRegistry()
	if err := reg.Offer("r1", models.MatchOffer{DriverIndex: 7}); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestWSRegistryDropsBrokenSession(t *testing.T) {
	reg := NewWSRegistry()
	c := &fakeConn{err: errors.New("broken pipe")}
	reg.add(1, c)
	if err := reg.Offer("r1", models.MatchOffer{DriverIndex: 1}); err == nil {
		t.Fatal("expected send error")
	}
	if !c.closed {
		t.Fatal("expected broken session closed")
	}
	if err := reg.Offer("r2", models.MatchOffer{DriverIndex: 1}); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected session removed, got %v", err)
	}
}

func TestFallbackDispatcher(t *testing.T) {
	reg := NewWSRegistry()
	c := &fakeConn{}
	reg.add(0, c)
	rec := &recordingDispatcher{}
	d := &FallbackDispatcher{WS: reg, Fallback: rec}

	if err := d.Offer("r1", models.MatchOffer{DriverIndex: 0}); err != nil {
		t.Fatalf("offer ws: %v", err)
	}
	if err := d.Offer("r2", models.MatchOffer{DriverIndex: 5}); err != nil {
		t.Fatalf("offer fallback: %v", err)
	}
	if len(c.sent) != 1 || len(rec.offers) != 1 || rec.offers[0].DriverIndex != 5 {
		t.Fatalf("unexpected routing ws=%d fallback=%+v", len(c.sent), rec.offers)
	}
}
