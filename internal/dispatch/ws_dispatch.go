package dispatch

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/example/ride-ledger/internal/models"
)

var ErrNoSession = errors.New("no ws session")

// conn is the part of *websocket.Conn the registry needs.
type conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// WSSession represents a connected driver app.
type WSSession struct {
	conn conn
	mu   sync.Mutex
}

func (s *WSSession) Send(offer models.MatchOffer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(offer)
}

// WSRegistry holds driver sessions keyed by driver index.
type WSRegistry struct {
	mu       sync.RWMutex
	sessions map[int]*WSSession
}

func NewWSRegistry() *WSRegistry { return &WSRegistry{sessions: make(map[int]*WSSession)} }

func (r *WSRegistry) Add(driverIndex int, c *websocket.Conn) {
	r.add(driverIndex, c)
}

func (r *WSRegistry) add(driverIndex int, c conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.sessions[driverIndex]; ok {
		_ = old.conn.Close()
	}
	r.sessions[driverIndex] = &WSSession{conn: c}
}

func (r *WSRegistry) Remove(driverIndex int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[driverIndex]; ok {
		_ = s.conn.Close()
		delete(r.sessions, driverIndex)
	}
}

// Connected reports whether the driver has an open session.
func (r *WSRegistry) Connected(driverIndex int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[driverIndex]
	return ok
}

func (r *WSRegistry) Offer(rideID string, offer models.MatchOffer) error {
	r.mu.RLock()
	s, ok := r.sessions[offer.DriverIndex]
	r.mu.RUnlock()
	if !ok {
		return ErrNoSession
	}
	if err := s.Send(offer); err != nil {
		// the driver app went away; drop the session
		r.Remove(offer.DriverIndex)
		return err
	}
	return nil
}
