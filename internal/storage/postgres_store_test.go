package storage

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/example/ride-ledger/internal/models"
)

type fakeResult struct{ rows int64 }

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, nil }

type recordingExecer struct {
	query string
	args  []any
	rows  int64
}

func (e *recordingExecer) Exec(query string, args ...any) (sql.Result, error) {
	e.query = query
	e.args = args
	return fakeResult{rows: e.rows}, nil
}

func TestPostgresUpdateRideUsesRideTimestamp(t *testing.T) {
	ex := &recordingExecer{rows: 1}
	p := &PostgresStore{ex: ex}
	updated := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	r := &models.Ride{ID: "r1", Status: models.RideCompleted, TripDistanceKm: 5, Fare: 15, UpdatedAt: updated}
	if err := p.UpdateRide(r); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(ex.args) != 5 {
		t.Fatalf("expected 5 args, got %d", len(ex.args))
	}
	if got, ok := ex.args[3].(time.Time); !ok || !got.Equal(updated) {
		t.Fatalf("expected updated_at %v, got %v", updated, ex.args[3])
	}
	if ex.args[4] != "r1" {
		t.Fatalf("expected id r1, got %v", ex.args[4])
	}
}

func TestPostgresUpdateRideNotFound(t *testing.T) {
	p := &PostgresStore{ex: &recordingExecer{rows: 0}}
	if err := p.UpdateRide(&models.Ride{ID: "missing"}); !errors.Is(err, ErrRideNotFound) {
		t.Fatalf("expected ErrRideNotFound, got %v", err)
	}
}
