package web

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/saltyorg/foodquery/internal/config"
	"github.com/saltyorg/foodquery/internal/web/handlers"
	"github.com/saltyorg/foodquery/internal/web/middleware"
)

// Server represents the web server
type Server struct {
	port       int
	bind       string
	allowedNet *net.IPNet
	timeouts   *config.TimeoutConfig
	router     *chi.Mux
	handlers   *handlers.Handlers
}

// Options configures the listener of a Server
type Options struct {
	Port       int
	Bind       string
	AllowedNet *net.IPNet
	Timeouts   *config.TimeoutConfig
}

// NewServer creates a new web server. store is opened once by the caller and
// shared by every request for the life of the process.
func NewServer(store handlers.Store, health handlers.HealthReporter, opts Options) *Server {
	timeouts := opts.Timeouts
	if timeouts == nil {
		timeouts = config.DefaultTimeoutConfig()
	}

	s := &Server{
		port:       opts.Port,
		bind:       opts.Bind,
		allowedNet: opts.AllowedNet,
		timeouts:   timeouts,
		router:     chi.NewRouter(),
		handlers:   handlers.New(store, health),
	}

	s.setupRoutes()
	return s
}

// Handlers returns the route handlers
func (s *Server) Handlers() *handlers.Handlers {
	return s.handlers
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	r := s.router
	h := s.handlers

	r.Use(chimiddleware.RequestID)
	// AllowSubnet must come BEFORE RealIP so we check the actual connection source
	r.Use(middleware.AllowSubnet(s.allowedNet))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", h.Health)

	r.Route("/restaurants", func(r chi.Router) {
		r.Get("/", h.ListRestaurants)
		r.Get("/details/{id}", h.RestaurantDetails)
		r.Get("/cuisine/{cuisine}", h.RestaurantsByCuisine)
		r.Get("/filter", h.RestaurantsByFilter)
		r.Get("/sort-by-rating", h.RestaurantsSortByRating)
	})

	r.Route("/dishes", func(r chi.Router) {
		r.Get("/", h.ListDishes)
		r.Get("/details/{id}", h.DishDetails)
		r.Get("/filter", h.DishesByFilter)
		r.Get("/sort-by-price", h.DishesSortByPrice)
	})

	r.NotFound(middleware.JSONNotFound)
	r.MethodNotAllowed(middleware.JSONMethodNotAllowed)
}

// Start starts the web server and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	var addr string
	if s.bind != "" {
		addr = fmt.Sprintf("%s:%d", s.bind, s.port)
	} else {
		addr = fmt.Sprintf(":%d", s.port)
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: s.timeouts.ReadHeader,
		IdleTimeout:       s.timeouts.Idle,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeouts.Shutdown)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}
