// Package api provides the HTTP surface of the flight routes service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"flight_routes/internal/routes"
	"flight_routes/internal/storage"
)

// apiKeyHeader is the request header carrying the shared admin secret.
const apiKeyHeader = "api_key"

// RouteServer serves route lookups and the authenticated admin surface.
type RouteServer struct {
	resolver       *routes.Resolver
	port           int
	apiKey         string
	planeLimit     int
	allowedOrigins map[string]bool
}

// Config holds configuration for the route API server.
type Config struct {
	Port           int
	APIKey         string // Shared secret for the admin endpoints.
	PlaneLimit     int    // Maximum planes per routeset request.
	AllowedOrigins []string
}

// NewRouteServer creates a new route API server.
func NewRouteServer(resolver *routes.Resolver, cfg Config) *RouteServer {
	origins := make(map[string]bool)
	for _, o := range cfg.AllowedOrigins {
		if o != "" {
			origins[o] = true
		}
	}

	return &RouteServer{
		resolver:       resolver,
		port:           cfg.Port,
		apiKey:         cfg.APIKey,
		planeLimit:     cfg.PlaneLimit,
		allowedOrigins: origins,
	}
}

// Run starts the HTTP server and shuts it down when ctx is cancelled.
func (s *RouteServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(s.port),
		Handler: s.router(),
	}

	log.Printf("Flight routes API starting at http://localhost%s", srv.Addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Router returns the configured chi router for embedding in tests or
// other servers.
func (s *RouteServer) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(s.corsMiddleware)

	r.Get("/api/health", s.handleHealth)
	r.Post("/api/routeset", s.handleRouteSet)

	// Admin surface: every endpoint behind the shared secret.
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/api/all_callsigns", s.handleAllCallsigns)
		r.Get("/api/plausible_callsigns", s.handlePlausibleCallsigns)
		r.Get("/api/unplausible_callsigns", s.handleUnplausibleCallsigns)
		r.Get("/api/route/{callsign}", s.handleGetRoute)
		r.Post("/api/set_route", s.handleSetRoute)
	})

	return r
}

func (s *RouteServer) router() chi.Router {
	r := chi.NewRouter()

	// Standard middleware.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Mount("/", s.Router())

	return r
}

// corsMiddleware adds CORS headers for the configured origins and answers
// OPTIONS pre-flight requests with an empty 200, before any auth check.
func (s *RouteServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if s.allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "access-control-allow-origin,content-type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// authMiddleware validates the shared admin secret. Missing and wrong
// credentials are both 403 and disclose nothing about stored routes.
func (s *RouteServer) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" || r.Header.Get(apiKeyHeader) != s.apiKey {
			writeError(w, http.StatusForbidden, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *RouteServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// PlaneList is the request body for routeset lookups.
type PlaneList struct {
	Planes []routes.PlaneInstance `json:"planes"`
}

func (s *RouteServer) handleRouteSet(w http.ResponseWriter, r *http.Request) {
	var req PlaneList
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid JSON: "+err.Error())
		return
	}

	records, err := s.resolver.ResolveBatch(r.Context(), req.Planes, s.planeLimit)
	if err != nil {
		if errors.Is(err, routes.ErrTooManyPlanes) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("The number of planes exceeds the limit of %d.", s.planeLimit))
			return
		}
		writeError(w, storeStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, records)
}

func (s *RouteServer) handleAllCallsigns(w http.ResponseWriter, r *http.Request) {
	callsigns, err := s.resolver.AllCallsigns(r.Context())
	if err != nil {
		writeError(w, storeStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, callsigns)
}

func (s *RouteServer) handlePlausibleCallsigns(w http.ResponseWriter, r *http.Request) {
	s.listByPlausibility(w, r, 1)
}

func (s *RouteServer) handleUnplausibleCallsigns(w http.ResponseWriter, r *http.Request) {
	s.listByPlausibility(w, r, 0)
}

func (s *RouteServer) listByPlausibility(w http.ResponseWriter, r *http.Request, plausible int) {
	callsigns, err := s.resolver.CallsignsByPlausibility(r.Context(), plausible)
	if err != nil {
		writeError(w, storeStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, callsigns)
}

func (s *RouteServer) handleGetRoute(w http.ResponseWriter, r *http.Request) {
	callsign := chi.URLParam(r, "callsign")
	if callsign == "" {
		writeError(w, http.StatusUnprocessableEntity, "callsign is required")
		return
	}

	rec, err := s.resolver.Resolve(r.Context(), callsign)
	if err != nil {
		writeError(w, storeStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func (s *RouteServer) handleSetRoute(w http.ResponseWriter, r *http.Request) {
	var rec routes.RouteRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid JSON: "+err.Error())
		return
	}
	if rec.Callsign == "" {
		writeError(w, http.StatusUnprocessableEntity, "callsign is required")
		return
	}

	if err := s.resolver.SetRoute(r.Context(), rec); err != nil {
		writeError(w, storeStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": fmt.Sprintf("Route set for %s.", rec.Callsign),
	})
}

// storeStatus maps store and data faults to HTTP status codes. An
// unreachable store is 503; a record that cannot be parsed is a 500,
// surfacing the upstream data defect instead of masking it.
func storeStatus(err error) int {
	if errors.Is(err, storage.ErrUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Helper functions.

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
