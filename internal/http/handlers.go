package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/ride-ledger/internal/config"
	"github.com/example/ride-ledger/internal/dispatch"
	"github.com/example/ride-ledger/internal/events"
	"github.com/example/ride-ledger/internal/fare"
	"github.com/example/ride-ledger/internal/ledger"
	"github.com/example/ride-ledger/internal/models"
	"github.com/example/ride-ledger/internal/policy"
	"github.com/example/ride-ledger/internal/storage"
)

type Server struct {
	Ledger *ledger.Service
	WSReg  *dispatch.WSRegistry

	nearbyLimit int
	logger      *slog.Logger
	mux         *mux.Router
	closers     []func() error
}

// NewServer wires handlers around an existing ledger.
func NewServer(l *ledger.Service, ws *dispatch.WSRegistry, logger *slog.Logger, nearbyLimit int) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if ws == nil {
		ws = dispatch.NewWSRegistry()
	}
	if nearbyLimit <= 0 {
		nearbyLimit = 8
	}
	s := &Server{Ledger: l, WSReg: ws, nearbyLimit: nearbyLimit, logger: logger, mux: mux.NewRouter()}
	s.registerMiddleware()
	s.routes()
	return s
}

// NewServerFromConfig builds the ledger and its sinks from configuration,
// falling back to in-memory parts when a backend is not configured.
func NewServerFromConfig(cfg config.ServerConfig, logger *slog.Logger) (*Server, error) {
	var closers []func() error

	var store storage.TripStore
	if cfg.PGDSN != "" {
		ps, err := storage.NewPostgresStore(cfg.PGDSN)
		if err != nil {
			return nil, err
		}
		if cfg.RunMigrations {
			if err := migrate(ps, logger); err != nil {
				_ = ps.Close()
				return nil, err
			}
		}
		store = ps
		closers = append(closers, ps.Close)
	} else {
		store = storage.NewMemoryStore()
	}

	var pub ledger.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		pub = kp
		closers = append(closers, kp.Close)
	}

	wsreg := dispatch.NewWSRegistry()
	l := ledger.New(ledger.Options{
		Policy:   policy.Policy{MaxPickupDistanceKm: cfg.Ledger.MaxPickupDistanceKm},
		Fare:     &fare.Calculator{BaseFare: cfg.Ledger.BaseFare, PerKm: cfg.Ledger.FarePerKm},
		Store:    store,
		Events:   pub,
		Dispatch: &dispatch.FallbackDispatcher{WS: wsreg, Fallback: &dispatch.LogDispatcher{Logger: logger}},
		Logger:   logger,
	})
	s := NewServer(l, wsreg, logger, cfg.NearbyLimit)
	s.closers = closers
	return s, nil
}

func migrate(ps *storage.PostgresStore, logger *slog.Logger) error {
	b, err := os.ReadFile("migrations/001_create_rides.sql")
	if err != nil {
		return err
	}
	if err := ps.Migrate(string(b)); err != nil {
		return err
	}
	logger.Info("migration applied", "file", "001_create_rides.sql")
	return nil
}

// Close releases the sinks opened by NewServerFromConfig.
func (s *Server) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Server) routes() {
	api := s.mux.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/drivers", s.handleAddDriver).Methods(http.MethodPost)
	api.HandleFunc("/drivers", s.handleListDrivers).Methods(http.MethodGet)
	api.HandleFunc("/drivers/nearby", s.handleNearby).Methods(http.MethodGet)
	api.HandleFunc("/passengers", s.handleAddPassenger).Methods(http.MethodPost)
	api.HandleFunc("/passengers", s.handleListPassengers).Methods(http.MethodGet)
	api.HandleFunc("/passengers/{index:[0-9]+}/ride", s.handleRequestRide).Methods(http.MethodPost)
	api.HandleFunc("/passengers/{index:[0-9]+}/ride", s.handleCancelRide).Methods(http.MethodDelete)
	api.HandleFunc("/passengers/{index:[0-9]+}/ride/complete", s.handleCompleteRide).Methods(http.MethodPost)
	api.HandleFunc("/passengers/{index:[0-9]+}/ride/fare", s.handleComputeFare).Methods(http.MethodGet)
	api.HandleFunc("/rides", s.handleActiveRides).Methods(http.MethodGet)

	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) }).Methods(http.MethodGet)
	s.mux.Handle("/metrics", promhttp.Handler())
	s.mux.HandleFunc("/ws/drivers/{index:[0-9]+}", s.handleWS)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

type addDriverRequest struct {
	Name       string          `json:"name"`
	CarDetails string          `json:"car_details"`
	Location   models.Location `json:"location"`
}

type addPassengerRequest struct {
	Name        string          `json:"name"`
	Pickup      models.Location `json:"pickup"`
	Destination models.Location `json:"destination"`
}

func (s *Server) handleAddDriver(w http.ResponseWriter, r *http.Request) {
	var req addDriverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	idx := s.Ledger.AddDriver(req.Name, req.CarDetails, req.Location)
	writeJSON(w, http.StatusCreated, map[string]int{"index": idx})
}

func (s *Server) handleListDrivers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Ledger.ListDrivers())
}

func (s *Server) handleNearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		writeError(w, http.StatusBadRequest, "x and y must be numbers")
		return
	}
	limit := s.nearbyLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if n < limit {
			limit = n
		}
	}
	writeJSON(w, http.StatusOK, s.Ledger.Nearby(models.Location{X: x, Y: y}, limit))
}

func (s *Server) handleAddPassenger(w http.ResponseWriter, r *http.Request) {
	var req addPassengerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	idx := s.Ledger.AddPassenger(req.Name, req.Pickup, req.Destination)
	writeJSON(w, http.StatusCreated, map[string]int{"index": idx})
}

func (s *Server) handleListPassengers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Ledger.ListPassengers())
}

func (s *Server) handleRequestRide(w http.ResponseWriter, r *http.Request) {
	idx, ok := pathIndex(w, r)
	if !ok {
		return
	}
	out, err := s.Ledger.RequestRide(r.Context(), idx)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCancelRide(w http.ResponseWriter, r *http.Request) {
	idx, ok := pathIndex(w, r)
	if !ok {
		return
	}
	a, err := s.Ledger.CancelRide(r.Context(), idx)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleCompleteRide(w http.ResponseWriter, r *http.Request) {
	idx, ok := pathIndex(w, r)
	if !ok {
		return
	}
	rc, err := s.Ledger.CompleteRide(r.Context(), idx)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rc)
}

func (s *Server) handleComputeFare(w http.ResponseWriter, r *http.Request) {
	idx, ok := pathIndex(w, r)
	if !ok {
		return
	}
	rc, err := s.Ledger.ComputeFare(idx)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rc)
}

func (s *Server) handleActiveRides(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Ledger.ActiveRides())
}

var upgrader = websocket.Upgrader{}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	idx, ok := pathIndex(w, r)
	if !ok {
		return
	}
	if idx >= len(s.Ledger.ListDrivers()) {
		writeError(w, http.StatusNotFound, ledger.ErrInvalidIndex.Error())
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client
		s.logger.Warn("ws upgrade failed", "driver", idx, "error", err)
		return
	}
	s.WSReg.Add(idx, conn)
	s.logger.Info("driver connected", "driver", idx)
	go func() {
		// drain until the app disconnects
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.WSReg.Remove(idx)
				s.logger.Info("driver disconnected", "driver", idx)
				return
			}
		}
	}()
}

func pathIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	idx, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid index")
		return 0, false
	}
	return idx, true
}

func writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidIndex):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrNoDriversOrPassengers),
		errors.Is(err, ledger.ErrNoActiveRide),
		errors.Is(err, ledger.ErrNoValidRide),
		errors.Is(err, ledger.ErrRideInProgress):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
