package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/example/ride-ledger/internal/models"
)

func TestMemoryStoreSaveUpdate(t *testing.T) {
	m := NewMemoryStore()
	r := &models.Ride{ID: "r1", Status: models.RideAssigned, CreatedAt: time.Now()}
	if err := m.SaveRide(r); err != nil {
		t.Fatalf("save: %v", err)
	}
	r.Status = models.RideCompleted
	r.Fare = 15
	if err := m.UpdateRide(r); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, ok := m.Get("r1")
	if !ok || got.Status != models.RideCompleted || got.Fare != 15 {
		t.Fatalf("unexpected stored ride %+v ok=%v", got, ok)
	}
}

func TestMemoryStoreCopiesOnSave(t *testing.T) {
	m := NewMemoryStore()
	r := &models.Ride{ID: "r1", Status: models.RideAssigned}
	_ = m.SaveRide(r)
	r.Status = models.RideCancelled
	got, _ := m.Get("r1")
	if got.Status != models.RideAssigned {
		t.Fatalf("journal entry changed without UpdateRide: %s", got.Status)
	}
}

func TestMemoryStoreUpdateUnknown(t *testing.T) {
	m := NewMemoryStore()
	if err := m.UpdateRide(&models.Ride{ID: "nope"}); !errors.Is(err, ErrRideNotFound) {
		t.Fatalf("expected ErrRideNotFound, got %v", err)
	}
}

func TestMemoryStoreListOrdered(t *testing.T) {
	m := NewMemoryStore()
	now := time.Now()
	_ = m.SaveRide(&models.Ride{ID: "b", CreatedAt: now.Add(time.Second)})
	_ = m.SaveRide(&models.Ride{ID: "a", CreatedAt: now})
	list := m.List()
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" {
		t.Fatalf("unexpected order %+v", list)
	}
}
