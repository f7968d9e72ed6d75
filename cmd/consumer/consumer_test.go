package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/ride-ledger/internal/models"
)

// fakeUpdater implements RedisUpdater for tests
type fakeUpdater struct {
	failH  int // number of HSet calls to fail before succeeding
	hCalls int
	hashes map[string]map[string]interface{}
}

func (f *fakeUpdater) HSet(ctx context.Context, key string, values map[string]interface{}) error {
	f.hCalls++
	if f.hCalls <= f.failH {
		return errors.New("hset fail")
	}
	if f.hashes == nil {
		f.hashes = make(map[string]map[string]interface{})
	}
	f.hashes[key] = values
	return nil
}

func TestProjectWithRetry_SucceedsAfterRetries(t *testing.T) {
	f := &fakeUpdater{failH: 1}
	ev := models.RideEvent{RideID: "r1", Type: models.EventAssigned, PassengerIndex: 0, DriverIndex: 2, At: time.Now()}
	start := time.Now()
	if err := projectWithRetry(context.Background(), f, ev, 3, 10*time.Millisecond); err != nil {
		t.Fatalf("expected success, got err=%v", err)
	}
	if f.hCalls < 3 {
		t.Fatalf("expected retries, got h=%d", f.hCalls)
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Fatalf("expected at least one backoff")
	}
	if f.hashes["driver:state:2"]["available"] != "false" {
		t.Fatalf("expected driver 2 marked unavailable, got %v", f.hashes["driver:state:2"])
	}
}

func TestProjectWithRetry_FailsWhenExhausted(t *testing.T) {
	f := &fakeUpdater{failH: 5}
	ev := models.RideEvent{RideID: "r1", Type: models.EventNoDriver, DriverIndex: -1}
	if err := projectWithRetry(context.Background(), f, ev, 3, 5*time.Millisecond); err == nil {
		t.Fatalf("expected error after retries")
	}
}

func TestProjectWithRetry_StopsOnCancel(t *testing.T) {
	f := &fakeUpdater{failH: 100}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := projectWithRetry(ctx, f, models.RideEvent{RideID: "r1", Type: models.EventNoDriver}, 5, time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestProjection(t *testing.T) {
	done := projection(models.RideEvent{RideID: "r9", Type: models.EventCompleted, DriverIndex: 1, TripDistanceKm: 5, Fare: 15})
	if done["ride:r9"]["fare"] != 15.0 || done["ride:r9"]["status"] != "completed" {
		t.Fatalf("unexpected ride hash %v", done["ride:r9"])
	}
	if done["driver:state:1"]["available"] != "true" {
		t.Fatalf("expected driver released, got %v", done["driver:state:1"])
	}

	auto := projection(models.RideEvent{RideID: "r2", Type: models.EventAutoCancelled, DriverIndex: 0})
	if _, ok := auto["driver:state:0"]; ok {
		t.Fatalf("auto-cancel must not touch driver availability")
	}
}

func TestSleepCtxReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	if err := sleepCtx(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("sleep ignored cancellation")
	}
}

func TestSleepCtxWaits(t *testing.T) {
	if err := sleepCtx(context.Background(), 10*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
