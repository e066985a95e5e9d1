package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dfagundes/huddle/pkg/middleware"
)

// Router handles HTTP routing
type Router struct {
	meetingHandler *MeetingHandler
	healthHandler  *HealthHandler
	corsConfig     middleware.CORSConfig
}

// NewRouter creates a new router
func NewRouter(
	meetingHandler *MeetingHandler,
	healthHandler *HealthHandler,
	corsConfig middleware.CORSConfig,
) *Router {
	return &Router{
		meetingHandler: meetingHandler,
		healthHandler:  healthHandler,
		corsConfig:     corsConfig,
	}
}

// Handler returns the configured HTTP handler with middleware
func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health and metrics endpoints (no middleware)
	mux.HandleFunc("/health", rt.healthHandler.Health)
	mux.HandleFunc("/ready", rt.healthHandler.Ready)
	mux.Handle("/metrics", promhttp.Handler())

	// Meeting endpoints
	mux.HandleFunc("/users/me/meetings", rt.handleMeetings)
	mux.HandleFunc("/meetings/", rt.handleMeetingByID)

	// Apply middleware (CORS first to handle preflight requests)
	handler := middleware.CORS(rt.corsConfig)(mux)
	handler = middleware.Recovery(handler)
	handler = middleware.Logging(handler)
	handler = middleware.CorrelationID(handler)

	return handler
}

// handleMeetings routes the aggregated collection endpoints
func (rt *Router) handleMeetings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rt.meetingHandler.List(w, r)
	case http.MethodPost:
		rt.meetingHandler.Create(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleMeetingByID routes the single-meeting endpoints
func (rt *Router) handleMeetingByID(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rt.meetingHandler.Get(w, r)
	case http.MethodPatch:
		rt.meetingHandler.Update(w, r)
	case http.MethodDelete:
		rt.meetingHandler.Delete(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
