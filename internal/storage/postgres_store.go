package storage

import (
	"database/sql"
	"errors"

	_ "github.com/lib/pq"

	"github.com/example/ride-ledger/internal/models"
)

var ErrRideNotFound = errors.New("ride not found")

// execer is the part of *sql.DB the journal writes go through.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

type PostgresStore struct {
	db *sql.DB
	ex execer
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	// quick ping
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{db: db, ex: db}, nil
}

// Migrate applies a schema script, typically migrations/001_create_rides.sql.
func (p *PostgresStore) Migrate(script string) error {
	_, err := p.ex.Exec(script)
	return err
}

func (p *PostgresStore) SaveRide(r *models.Ride) error {
	_, err := p.ex.Exec(`INSERT INTO rides(id, passenger_index, driver_index, pickup_x, pickup_y, dest_x, dest_y, status, pickup_distance_km, trip_distance_km, fare, created_at, updated_at) VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		r.ID, r.PassengerIndex, r.DriverIndex, r.Pickup.X, r.Pickup.Y, r.Destination.X, r.Destination.Y, string(r.Status), r.PickupDistanceKm, r.TripDistanceKm, r.Fare, r.CreatedAt, r.UpdatedAt)
	return err
}

func (p *PostgresStore) UpdateRide(r *models.Ride) error {
	res, err := p.ex.Exec(`UPDATE rides SET status=$1, trip_distance_km=$2, fare=$3, updated_at=$4 WHERE id=$5`, string(r.Status), r.TripDistanceKm, r.Fare, r.UpdatedAt, r.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRideNotFound
	}
	return nil
}

func (p *PostgresStore) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}
