// Package server exposes the gateway over HTTP: the interception surface
// that every page request flows through, and the control endpoints the
// hosting pages use to talk to the background context.
package server

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/arcbank/offlinegate/internal/app"
	"github.com/arcbank/offlinegate/internal/bridge"
	"github.com/arcbank/offlinegate/internal/domain"
	"github.com/arcbank/offlinegate/internal/ports"
)

// Server wires the dispatcher, coordinator, and bridge into an HTTP surface.
type Server struct {
	dispatcher *app.Dispatcher
	coord      *app.Coordinator
	hub        *bridge.Hub
	cache      ports.CacheStore
	upstream   ports.Upstream
	logger     ports.Logger

	// skipWaiting applies a staged cache version immediately.
	skipWaiting func() error
}

// New creates the HTTP server facade.
func New(
	dispatcher *app.Dispatcher,
	coord *app.Coordinator,
	hub *bridge.Hub,
	cache ports.CacheStore,
	upstream ports.Upstream,
	skipWaiting func() error,
	logger ports.Logger,
) *Server {
	return &Server{
		dispatcher:  dispatcher,
		coord:       coord,
		hub:         hub,
		cache:       cache,
		upstream:    upstream,
		skipWaiting: skipWaiting,
		logger:      logger,
	}
}

// Routes builds the router. Control endpoints are mounted before the
// catch-all interception handler so they are never classified as page
// traffic.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)

	r.Route("/offlinegate/control", func(r chi.Router) {
		r.Post("/skip-waiting", s.handleSkipWaiting)
		r.Get("/cache-status", s.handleCacheStatus)
		r.Post("/sync", s.handleSync)
		r.Get("/events", s.handleEvents)
	})

	r.HandleFunc("/*", s.intercept)

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// intercept mediates every outgoing request from the hosting pages.
// GET and POST go through the strategy dispatcher; every other method
// passes through to the upstream unintercepted.
func (s *Server) intercept(w http.ResponseWriter, r *http.Request) {
	url := r.URL.RequestURI()
	headers := domain.HeadersFrom(r.Header)

	var body []byte
	if r.Body != nil {
		var err error
		body, err = io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "read request body", http.StatusBadRequest)
			return
		}
	}

	var (
		resp *domain.Response
		err  error
	)
	switch r.Method {
	case http.MethodGet, http.MethodPost:
		resp, err = s.dispatcher.Handle(r.Context(), r.Method, url, r.URL.Path, headers, body)
	default:
		resp, err = s.upstream.Forward(r.Context(), r.Method, url, headers, body)
	}
	if err != nil {
		// No fallback existed; surface the raw network failure.
		s.logger.Warn("request failed with no fallback",
			ports.String("method", r.Method),
			ports.String("url", url),
			ports.Err(err),
		)
		http.Error(w, "upstream unreachable: "+err.Error(), http.StatusBadGateway)
		return
	}

	writeResponse(w, resp)
}

func writeResponse(w http.ResponseWriter, resp *domain.Response) {
	for _, h := range resp.Headers {
		w.Header().Add(h.Name, h.Value)
	}
	w.WriteHeader(resp.Status)
	if len(resp.Body) > 0 {
		_, _ = w.Write(resp.Body)
	}
}
